package ngram

import (
	"context"
	"sort"
	"strings"

	"github.com/jsphweid/pianogram/model"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const sep = "\x00"

// Key identifies a window of symbols.
type Key string

func KeyOf(gram []model.Symbol) Key {
	return Key(strings.Join(gram, sep))
}

func (k Key) Symbols() []model.Symbol {
	return strings.Split(string(k), sep)
}

type Entry struct {
	Gram  []model.Symbol
	Count int
}

// Table counts every stride-one window of a fixed length. Keys remember
// the order they were first seen in so iteration is reproducible.
type Table struct {
	order  int
	counts map[Key]int
	keys   []Key
	total  int
}

// Build slides a window of n over symbols. Windows running past the end
// are not counted, so a sequence shorter than n gives an empty table.
func Build(symbols []model.Symbol, n int) (*Table, error) {
	if n < 1 {
		return nil, model.ConfigurationError("n-gram order must be at least 1, got %d", n)
	}
	t := &Table{order: n, counts: make(map[Key]int)}
	for i := 0; i+n <= len(symbols); i++ {
		k := KeyOf(symbols[i : i+n])
		if _, ok := t.counts[k]; !ok {
			t.keys = append(t.keys, k)
		}
		t.counts[k]++
		t.total++
	}
	return t, nil
}

// BuildAll builds one table per order. Orders share nothing but the
// read-only input, so they are counted in parallel.
func BuildAll(ctx context.Context, symbols []model.Symbol, orders []int) (map[int]*Table, error) {
	tables := make([]*Table, len(orders))
	g, ctx := errgroup.WithContext(ctx)
	for i, n := range orders {
		i, n := i, n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := Build(symbols, n)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"order": n, "distinct": t.Len()}).Debug("built frequency table")
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make(map[int]*Table, len(orders))
	for i, n := range orders {
		res[n] = tables[i]
	}
	return res, nil
}

func (t *Table) Order() int {
	return t.order
}

// Len is the number of distinct n-grams.
func (t *Table) Len() int {
	return len(t.keys)
}

// Total is the number of windows counted.
func (t *Table) Total() int {
	return t.total
}

func (t *Table) Count(gram []model.Symbol) int {
	return t.counts[KeyOf(gram)]
}

func (t *Table) CountKey(k Key) (int, bool) {
	c, ok := t.counts[k]
	return c, ok
}

// Keys returns the distinct n-grams in first-seen order.
func (t *Table) Keys() []Key {
	return append([]Key(nil), t.keys...)
}

func (t *Table) Each(fn func(k Key, count int)) {
	for _, k := range t.keys {
		fn(k, t.counts[k])
	}
}

// Top returns the k most frequent n-grams, ties broken by the larger key.
func (t *Table) Top(k int) []Entry {
	keys := t.Keys()
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := t.counts[keys[i]], t.counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] > keys[j]
	})
	if k >= 0 && k < len(keys) {
		keys = keys[:k]
	}
	res := make([]Entry, len(keys))
	for i, key := range keys {
		res[i] = Entry{Gram: key.Symbols(), Count: t.counts[key]}
	}
	return res
}
