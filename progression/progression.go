package progression

import (
	"context"
	"sort"
	"strings"

	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/ngram"
	"github.com/jsphweid/pianogram/util"
)

// Chords keeps the symbols of two or more pitch classes, in order. A bare
// pitch class like "0" is a doubled single note and is dropped.
func Chords(seq []model.Symbol) []model.Symbol {
	return util.Filter(seq, func(s model.Symbol) bool {
		return strings.Contains(s, model.ChordDelimiter)
	})
}

// Tables maps a progression length to its frequency table.
type Tables map[int]*ngram.Table

// Reference counts chord progressions of each length over the chord-only
// view of seq.
func Reference(ctx context.Context, seq []model.Symbol, orders []int) (Tables, error) {
	return ngram.BuildAll(ctx, Chords(seq), orders)
}

type Shared struct {
	Gram      []model.Symbol
	Generated int
	Reference int
}

type Comparison struct {
	Order             int
	GeneratedDistinct int
	ReferenceDistinct int
	Shared            []Shared
}

// Overlap is the fraction of distinct generated progressions that also
// occur in the reference.
func (c Comparison) Overlap() float64 {
	if c.GeneratedDistinct == 0 {
		return 0
	}
	return float64(len(c.Shared)) / float64(c.GeneratedDistinct)
}

// Compare reports, per length, which progressions in generated also occur
// in reference. Shared progressions are listed in the order the generated
// table first saw them. Lengths missing from reference are skipped.
func Compare(generated, reference Tables) []Comparison {
	var res []Comparison
	for _, n := range util.GetKeysSorted(generated) {
		gen := generated[n]
		ref, ok := reference[n]
		if !ok {
			continue
		}
		c := Comparison{Order: n, GeneratedDistinct: gen.Len(), ReferenceDistinct: ref.Len()}
		gen.Each(func(k ngram.Key, count int) {
			if refCount, ok := ref.CountKey(k); ok {
				c.Shared = append(c.Shared, Shared{Gram: k.Symbols(), Generated: count, Reference: refCount})
			}
		})
		res = append(res, c)
	}
	return res
}

// MostShared returns the k shared progressions the reference uses most.
func (c Comparison) MostShared(k int) []Shared {
	res := append([]Shared(nil), c.Shared...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Reference > res[j].Reference
	})
	return res[:util.Min(k, len(res))]
}

// SharedOccurrences counts how many generated progressions, repeats
// included, also occur in the reference.
func (c Comparison) SharedOccurrences() uint64 {
	counts := make([]int, len(c.Shared))
	for i, sh := range c.Shared {
		counts[i] = sh.Generated
	}
	return util.Sum(counts)
}
