package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/corpus"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/ngram"
	"github.com/jsphweid/pianogram/progression"
	"github.com/jsphweid/pianogram/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Creates a corpus report",
	Long: `Prints corpus statistics: size, vocabulary, the most frequent symbols,
notes and chords, and how many chord progressions of each length occur.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := corpus.Load(cachePath)
		if err != nil {
			return err
		}
		r, err := Report(context.Background(), c)
		if err != nil {
			return err
		}
		r.Print()
		return nil
	},
}

type CorpusReport struct {
	Length       int
	VocabSize    int
	NumNotes     int
	NumChords    int
	TopSymbols   []ngram.Entry
	TopNotes     []ngram.Entry
	TopChords    []ngram.Entry
	TopTriads    []ngram.Entry
	Progressions map[int]int
}

func Report(ctx context.Context, c *corpus.Corpus) (*CorpusReport, error) {
	symbols := c.View()
	chords := progression.Chords(symbols)
	notes := util.Filter(symbols, func(s model.Symbol) bool {
		return !strings.Contains(s, model.ChordDelimiter)
	})
	triads := util.Filter(chords, func(s model.Symbol) bool {
		return strings.Count(s, model.ChordDelimiter) >= 2
	})

	r := &CorpusReport{
		Length:       c.Len(),
		VocabSize:    c.VocabSize(),
		NumNotes:     len(notes),
		NumChords:    len(chords),
		Progressions: make(map[int]int),
	}
	for _, v := range []struct {
		from []model.Symbol
		to   *[]ngram.Entry
	}{
		{symbols, &r.TopSymbols},
		{notes, &r.TopNotes},
		{chords, &r.TopChords},
		{triads, &r.TopTriads},
	} {
		t, err := ngram.Build(v.from, 1)
		if err != nil {
			return nil, err
		}
		*v.to = t.Top(constants.TopSymbols)
	}

	ref, err := progression.Reference(ctx, symbols, constants.ProgressionOrders)
	if err != nil {
		return nil, err
	}
	for n, t := range ref {
		r.Progressions[n] = t.Len()
	}
	return r, nil
}

func (r *CorpusReport) Print() {
	fmt.Printf("symbols: %v\n", r.Length)
	fmt.Printf("vocabulary: %v\n", r.VocabSize)
	fmt.Printf("notes: %v chords: %v\n", r.NumNotes, r.NumChords)
	for _, section := range []struct {
		title   string
		entries []ngram.Entry
	}{
		{"top symbols", r.TopSymbols},
		{"top notes", r.TopNotes},
		{"top chords", r.TopChords},
		{"top chords of three or more pitch classes", r.TopTriads},
	} {
		fmt.Printf("\n%v:\n", section.title)
		for _, e := range section.entries {
			fmt.Printf("  %v\t%v\n", e.Gram[0], e.Count)
		}
	}
	fmt.Println()
	for _, n := range util.GetKeysSorted(r.Progressions) {
		fmt.Printf("distinct %v chord progressions: %v\n", n, r.Progressions[n])
	}
}
