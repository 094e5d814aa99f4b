package lm

import (
	"math"

	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/ngram"
	"gonum.org/v1/gonum/floats"
)

// Perplexity scores seq against raw order-n counts:
//
//	exp(-(1/L) * sum(log(count_i)))
//
// with L = len(seq). The counts are used as the probabilities and are not
// normalized; this matches how corpora have always been scored here, see
// SmoothedPerplexity for a proper distribution.
func Perplexity(seq []model.Symbol, n int, raw *ngram.Table) (float64, error) {
	if raw.Order() != n {
		return 0, model.ConfigurationError("table has order %d, want %d", raw.Order(), n)
	}
	if n < 1 || len(seq) < n {
		return 0, model.ConfigurationError("sequence of %d symbols is too short for order %d", len(seq), n)
	}

	logs := make([]float64, 0, len(seq)-n+1)
	for i := 0; i+n <= len(seq); i++ {
		gram := seq[i : i+n]
		count, ok := raw.CountKey(ngram.KeyOf(gram))
		if !ok || count == 0 {
			return 0, &model.UnseenGramError{Gram: append([]model.Symbol(nil), gram...)}
		}
		logs = append(logs, math.Log(float64(count)))
	}
	return math.Exp(-floats.Sum(logs) / float64(len(seq))), nil
}

// SmoothedPerplexity scores seq with full add-one smoothing: unseen
// targets get 1/(count(context)+V) and unseen contexts 1/V. It is
// normalized by the number of scored n-grams.
func SmoothedPerplexity(seq []model.Symbol, m *Model, lo *ngram.Table) (float64, error) {
	n := m.Order()
	if lo.Order() != n-1 {
		return 0, model.ConfigurationError("context table has order %d, want %d", lo.Order(), n-1)
	}
	if len(seq) < n {
		return 0, model.ConfigurationError("sequence of %d symbols is too short for order %d", len(seq), n)
	}

	logs := make([]float64, 0, len(seq)-n+1)
	for i := 0; i+n <= len(seq); i++ {
		gram := seq[i : i+n]
		p, ok := m.Prob(gram)
		if !ok {
			ctxCount, _ := lo.CountKey(ngram.KeyOf(gram[:n-1]))
			p = 1 / float64(ctxCount+m.VocabSize())
		}
		logs = append(logs, math.Log(p))
	}
	return math.Exp(-floats.Sum(logs) / float64(len(logs))), nil
}
