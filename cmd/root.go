package cmd

import (
	"github.com/jsphweid/pianogram/constants"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cachePath string

var rootCmd = &cobra.Command{
	Use:   "pianogram",
	Short: "N-gram models of piano performances",
	Long: `Extracts note and chord symbols from a folder of piano MIDI files,
builds n-gram models over them, generates new sequences and scores them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		constants.LoadEnv()
		level, err := log.ParseLevel(constants.GetLogLevel())
		if err != nil {
			return err
		}
		log.SetLevel(level)
		if cachePath == "" {
			cachePath = constants.GetCorpusCache()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "corpus cache, a local path or s3://bucket/key (default $CORPUS_CACHE)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
