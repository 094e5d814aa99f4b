package store

import (
	"bytes"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/model"
	"github.com/pkg/errors"
)

const scheme = "s3://"

func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, scheme)
}

// ParseURI splits s3://bucket/some/key into its bucket and key.
func ParseURI(uri string) (bucket string, key string, err error) {
	if !IsRemote(uri) {
		return "", "", errors.Errorf("not an s3 uri: %q", uri)
	}
	rest := strings.TrimPrefix(uri, scheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("s3 uri needs a bucket and a key: %q", uri)
	}
	return parts[0], parts[1], nil
}

func newClient() (*s3.S3, error) {
	cfg := &aws.Config{
		Region: aws.String(constants.GetAWSRegion()),
	}
	if endpoint := constants.GetAWSEndpoint(); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new AWS session")
	}
	return s3.New(sess), nil
}

func Put(uri string, data []byte) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return &model.IOError{Op: "put", Path: uri, Err: err}
	}
	_, err = client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return &model.IOError{Op: "put", Path: uri, Err: err}
	}
	return nil
}

func Get(uri string) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := newClient()
	if err != nil {
		return nil, &model.IOError{Op: "get", Path: uri, Err: err}
	}
	out, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &model.IOError{Op: "get", Path: uri, Err: err}
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &model.IOError{Op: "get", Path: uri, Err: err}
	}
	return b, nil
}
