package cmd

import (
	"context"
	"fmt"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/corpus"
	"github.com/jsphweid/pianogram/lm"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/util"
	"github.com/spf13/cobra"
)

var (
	ppOrders   []int
	ppSmoothed bool
	ppInput    string
)

func init() {
	f := perplexityCmd.Flags()
	f.IntSliceVarP(&ppOrders, "order", "n", constants.DefaultOrders, "model orders to score with")
	f.BoolVar(&ppSmoothed, "smoothed", false, "score with smoothed probabilities instead of raw counts")
	f.StringVar(&ppInput, "input", "", "MIDI file or folder to score (default: the corpus itself)")
	rootCmd.AddCommand(perplexityCmd)
}

var perplexityCmd = &cobra.Command{
	Use:   "perplexity",
	Short: "Scores a sequence",
	Long: `Computes the perplexity of a sequence under each order. By default the
sequence is scored against its raw n-gram counts, so any n-gram the corpus
never contained is an error. --smoothed uses the smoothed model instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModels(context.Background(), ppOrders)
		if err != nil {
			return err
		}
		seq := m.Corpus.View()
		if ppInput != "" {
			paths, err := util.GatherAllMidiPaths(ppInput, 0)
			if err != nil {
				return err
			}
			c, err := corpus.Extract(paths)
			if err != nil {
				return err
			}
			seq = c.View()
		}
		for _, n := range ppOrders {
			pp, err := Perplexity(m, seq, n, ppSmoothed)
			if err != nil {
				return err
			}
			fmt.Printf("%v-gram\t%v\n", n, pp)
		}
		return nil
	},
}

func Perplexity(m *Models, seq []model.Symbol, n int, smoothed bool) (float64, error) {
	if smoothed {
		sm, ok := m.LMs[n]
		if !ok {
			return 0, model.ConfigurationError("no model for order %d", n)
		}
		return lm.SmoothedPerplexity(seq, sm, m.Tables[n-1])
	}
	raw, ok := m.Tables[n]
	if !ok {
		return 0, model.ConfigurationError("no table for order %d", n)
	}
	return lm.Perplexity(seq, n, raw)
}
