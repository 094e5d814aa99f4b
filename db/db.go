package db

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/google/uuid"
	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/generator"
	"github.com/jsphweid/pianogram/model"
	"github.com/pkg/errors"
)

// MaxBatch is the most keys a single BatchGetItem accepts.
const MaxBatch = 100

type runItem struct {
	PK      string         `dynamodbav:"PK"`
	Order   int            `dynamodbav:"Order"`
	Misses  int            `dynamodbav:"Misses"`
	Symbols []model.Symbol `dynamodbav:"Symbols"`
}

func toItem(run *generator.Run) (map[string]*dynamodb.AttributeValue, error) {
	return dynamodbattribute.MarshalMap(runItem{
		PK:      run.ID.String(),
		Order:   run.Order,
		Misses:  run.Misses,
		Symbols: run.Symbols,
	})
}

func fromItem(item map[string]*dynamodb.AttributeValue) (*generator.Run, error) {
	var ri runItem
	if err := dynamodbattribute.UnmarshalMap(item, &ri); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(ri.PK)
	if err != nil {
		return nil, errors.Wrapf(err, "bad run id %q", ri.PK)
	}
	return &generator.Run{ID: id, Order: ri.Order, Misses: ri.Misses, Symbols: ri.Symbols}, nil
}

func newClient() (*dynamodb.DynamoDB, error) {
	cfg := &aws.Config{
		Region: aws.String(constants.GetAWSRegion()),
	}
	if endpoint := constants.GetAWSEndpoint(); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return dynamodb.New(sess), nil
}

func PutRun(table string, run *generator.Run) error {
	item, err := toItem(run)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return &model.IOError{Op: "put", Path: table, Err: err}
	}
	_, err = client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return &model.IOError{Op: "put", Path: table, Err: err}
	}
	return nil
}

// GetRuns looks up recorded runs by id. Ids that are not found are left
// out of the result.
func GetRuns(table string, ids []uuid.UUID) (map[uuid.UUID]*generator.Run, error) {
	if len(ids) > MaxBatch {
		return nil, errors.Errorf("at most %d runs can be fetched at once, got %d", MaxBatch, len(ids))
	}
	res := make(map[uuid.UUID]*generator.Run)
	if len(ids) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id.String())},
		})
	}

	client, err := newClient()
	if err != nil {
		return nil, &model.IOError{Op: "get", Path: table, Err: err}
	}
	out, err := client.BatchGetItem(&dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, &model.IOError{Op: "get", Path: table, Err: err}
	}

	for _, item := range out.Responses[table] {
		run, err := fromItem(item)
		if err != nil {
			return nil, err
		}
		res[run.ID] = run
	}
	return res, nil
}
