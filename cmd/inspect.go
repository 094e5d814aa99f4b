package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/ngram"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	inspectOrder int
	inspectTop   int
	inspectCtx   string
)

func init() {
	inspectCmd.Flags().IntVarP(&inspectOrder, "order", "n", 2, "n-gram order")
	inspectCmd.Flags().IntVar(&inspectTop, "top", constants.TopSymbols, "how many n-grams to list")
	inspectCmd.Flags().StringVar(&inspectCtx, "context", "", "space separated context to list the continuations of")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspects an n-gram model",
	Long: `Lists the most frequent n-grams of an order, or with --context the
smoothed continuations of one context, most probable first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModels(context.Background(), []int{inspectOrder})
		if err != nil {
			return err
		}
		if inspectCtx != "" {
			sm, ok := m.LMs[inspectOrder]
			if !ok {
				return errors.Errorf("order %d has no smoothed model", inspectOrder)
			}
			for _, c := range sm.Candidates(strings.Fields(inspectCtx)) {
				fmt.Printf("%v\t%.6f\n", c.Target, c.Prob)
			}
			return nil
		}
		printTop(m.Tables[inspectOrder], inspectTop)
		return nil
	},
}

func printTop(t *ngram.Table, k int) {
	for _, e := range t.Top(k) {
		fmt.Printf("%v\t%v\n", e.Count, strings.Join(e.Gram, " "))
	}
}
