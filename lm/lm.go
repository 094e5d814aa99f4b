package lm

import (
	"sort"

	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/ngram"
)

type Candidate struct {
	Target model.Symbol
	Prob   float64
}

// Model holds add-one smoothed P(target | context) for the n-grams that
// occur in the corpus. Unseen n-grams have no entry at all.
type Model struct {
	order     int
	vocabSize int
	probs     map[ngram.Key]float64
	index     map[ngram.Key][]Candidate
	contexts  []ngram.Key
}

// New smooths the order-n table hi against its order n-1 table lo:
//
//	P(gram) = (count(gram) + 1) / (count(context(gram)) + v)
func New(hi, lo *ngram.Table, v int) (*Model, error) {
	if hi.Order() < 2 {
		return nil, model.ConfigurationError("model order must be at least 2, got %d", hi.Order())
	}
	if lo.Order() != hi.Order()-1 {
		return nil, model.ConfigurationError("context table has order %d, want %d", lo.Order(), hi.Order()-1)
	}
	if v < 1 {
		return nil, model.ConfigurationError("vocabulary size must be at least 1, got %d", v)
	}
	if hi.Len() == 0 {
		return nil, model.ConfigurationError("corpus too short for order %d", hi.Order())
	}

	m := &Model{
		order:     hi.Order(),
		vocabSize: v,
		probs:     make(map[ngram.Key]float64, hi.Len()),
		index:     make(map[ngram.Key][]Candidate),
		contexts:  lo.Keys(),
	}
	hi.Each(func(k ngram.Key, count int) {
		gram := k.Symbols()
		ctx := ngram.KeyOf(gram[:len(gram)-1])
		ctxCount, _ := lo.CountKey(ctx)
		p := float64(count+1) / float64(ctxCount+v)
		m.probs[k] = p
		m.index[ctx] = append(m.index[ctx], Candidate{Target: gram[len(gram)-1], Prob: p})
	})
	// stable: equal probabilities keep table order, first inserted wins
	for _, cands := range m.index {
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].Prob > cands[j].Prob
		})
	}
	return m, nil
}

func (m *Model) Order() int {
	return m.order
}

func (m *Model) VocabSize() int {
	return m.vocabSize
}

// Len is the number of scored n-grams.
func (m *Model) Len() int {
	return len(m.probs)
}

func (m *Model) Prob(gram []model.Symbol) (float64, bool) {
	p, ok := m.probs[ngram.KeyOf(gram)]
	return p, ok
}

// Candidates lists the observed continuations of context, most probable
// first.
func (m *Model) Candidates(context []model.Symbol) []Candidate {
	return append([]Candidate(nil), m.index[ngram.KeyOf(context)]...)
}

// Contexts returns every observed order n-1 window in first-seen order.
func (m *Model) Contexts() [][]model.Symbol {
	res := make([][]model.Symbol, len(m.contexts))
	for i, k := range m.contexts {
		res[i] = k.Symbols()
	}
	return res
}

func (m *Model) ContextLen() int {
	return m.order - 1
}

func (m *Model) Predict(window []model.Symbol) (model.Symbol, bool) {
	cands := m.index[ngram.KeyOf(window)]
	if len(cands) == 0 {
		return "", false
	}
	return cands[0].Target, true
}
