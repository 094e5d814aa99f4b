package cmd

import (
	"strconv"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/corpus"
	"github.com/jsphweid/pianogram/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mediaDir string

func init() {
	extractCmd.Flags().StringVar(&mediaDir, "media", "", "folder of MIDI files (default $MEDIA_PATH)")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [max files]",
	Short: "Extracts the symbol corpus",
	Long: `Reads every MIDI file under the media folder in path order, turns it into
note and chord symbols and writes the concatenated corpus to the cache.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			arg1, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			maxNum = arg1
		}
		dir := mediaDir
		if dir == "" {
			dir = constants.GetMediaDir()
		}
		_, err := Extract(dir, maxNum, cachePath)
		return err
	},
}

// Extract builds the corpus from dir and replaces the cache at uri with it.
func Extract(dir string, maxNum int, uri string) (*corpus.Corpus, error) {
	paths, err := util.GatherAllMidiPaths(dir, maxNum)
	if err != nil {
		return nil, err
	}
	c, err := corpus.Extract(paths)
	if err != nil {
		return nil, err
	}
	if err := corpus.Save(uri, c); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"files":   len(paths),
		"symbols": c.Len(),
		"vocab":   c.VocabSize(),
		"cache":   uri,
	}).Info("Saved corpus")
	return c, nil
}
