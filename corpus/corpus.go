package corpus

import (
	"github.com/jsphweid/pianogram/midi"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/symbol"
	log "github.com/sirupsen/logrus"
)

// Corpus is the ordered symbol sequence of every performance. It is never
// modified after construction.
type Corpus struct {
	symbols []model.Symbol
	vocab   []model.Symbol
}

func New(symbols []model.Symbol) *Corpus {
	c := &Corpus{symbols: append([]model.Symbol(nil), symbols...)}
	seen := make(map[model.Symbol]bool)
	for _, s := range c.symbols {
		if !seen[s] {
			seen[s] = true
			c.vocab = append(c.vocab, s)
		}
	}
	return c
}

func (c *Corpus) Len() int {
	return len(c.symbols)
}

func (c *Corpus) At(i int) model.Symbol {
	return c.symbols[i]
}

// Symbols returns a copy of the sequence.
func (c *Corpus) Symbols() []model.Symbol {
	return append([]model.Symbol(nil), c.symbols...)
}

// View returns the sequence without copying; callers must not write to it.
func (c *Corpus) View() []model.Symbol {
	return c.symbols
}

// Vocabulary lists distinct symbols in first-seen order.
func (c *Corpus) Vocabulary() []model.Symbol {
	return append([]model.Symbol(nil), c.vocab...)
}

func (c *Corpus) VocabSize() int {
	return len(c.vocab)
}

// Extract parses each file in order and concatenates their symbols. The
// first file that cannot be read fails the whole extraction.
func Extract(paths []string) (*Corpus, error) {
	logger := log.WithFields(log.Fields{
		"function": "corpus.Extract",
	})
	var all []model.Symbol
	for i, path := range paths {
		logger.Infof("Processing %v of %v midi files", i+1, len(paths))
		parsed, err := midi.ReadMidiFile(path)
		if err != nil {
			return nil, err
		}
		symbols := symbol.FromSMF(parsed)
		logger.WithFields(log.Fields{"path": path, "symbols": len(symbols)}).Debug("extracted")
		all = append(all, symbols...)
	}
	return New(all), nil
}
