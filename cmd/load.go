package cmd

import (
	"context"

	"github.com/jsphweid/pianogram/corpus"
	"github.com/jsphweid/pianogram/lm"
	"github.com/jsphweid/pianogram/ngram"
	log "github.com/sirupsen/logrus"
)

// Models is everything built from one corpus: the raw table for each
// order and its context order, and a smoothed model per requested order.
type Models struct {
	Corpus *corpus.Corpus
	Tables map[int]*ngram.Table
	LMs    map[int]*lm.Model
}

// BuildModels counts the corpus at every order and its context order and
// smooths each requested order.
func BuildModels(ctx context.Context, c *corpus.Corpus, orders []int) (*Models, error) {
	needed := make(map[int]bool)
	for _, n := range orders {
		needed[n] = true
		if n > 1 {
			needed[n-1] = true
		}
	}
	var all []int
	for n := range needed {
		all = append(all, n)
	}

	tables, err := ngram.BuildAll(ctx, c.View(), all)
	if err != nil {
		return nil, err
	}
	m := &Models{Corpus: c, Tables: tables, LMs: make(map[int]*lm.Model)}
	for _, n := range orders {
		if n < 2 {
			continue
		}
		sm, err := lm.New(tables[n], tables[n-1], c.VocabSize())
		if err != nil {
			return nil, err
		}
		m.LMs[n] = sm
		log.WithFields(log.Fields{"order": n, "ngrams": sm.Len()}).Info("Built model")
	}
	return m, nil
}

func loadModels(ctx context.Context, orders []int) (*Models, error) {
	c, err := corpus.Load(cachePath)
	if err != nil {
		return nil, err
	}
	return BuildModels(ctx, c, orders)
}
