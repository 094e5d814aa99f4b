package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/pianogram/chord"
	"github.com/jsphweid/pianogram/generator"
	"github.com/jsphweid/pianogram/model"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	listenOrder  int
	listenPort   int
	listenWindow time.Duration
)

func init() {
	f := listenCmd.Flags()
	f.IntVarP(&listenOrder, "order", "n", 3, "model order to suggest with")
	f.IntVar(&listenPort, "port", 0, "MIDI input port number")
	f.DurationVar(&listenWindow, "window", 60*time.Millisecond, "keys struck within this window form one chord")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Suggests the next symbol while you play",
	Long: `Listens on a MIDI input port, groups the keys struck together into
symbols and prints the model's most likely continuation after each one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModels(context.Background(), []int{listenOrder})
		if err != nil {
			return err
		}
		sm, ok := m.LMs[listenOrder]
		if !ok {
			return model.ConfigurationError("no model for order %d", listenOrder)
		}
		return listen(sm)
	},
}

// Suggest commits what the tracker has collected and predicts from the
// most recent symbols. The prediction is empty when the window is too
// short or was never seen.
func Suggest(t *chord.Tracker, p generator.Predictor) (played, next model.Symbol, ok bool) {
	played, ok = t.Commit()
	if !ok {
		return "", "", false
	}
	window := t.Last(p.ContextLen())
	if len(window) < p.ContextLen() {
		return played, "", true
	}
	next, _ = p.Predict(window)
	return played, next, true
}

func listen(p generator.Predictor) error {
	defer midi.CloseDriver()
	in, err := midi.InPort(listenPort)
	if err != nil {
		return err
	}

	tracker := chord.NewTracker(p.ContextLen())
	debounced := debounce.New(listenWindow)
	commit := func() {
		played, next, ok := Suggest(tracker, p)
		if !ok {
			return
		}
		if next == "" {
			fmt.Printf("%v\n", played)
			return
		}
		fmt.Printf("%v\t-> %v\n", played, next)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			tracker.Press(key)
			debounced(commit)
		case msg.GetNoteEnd(&ch, &key):
			tracker.Release(key)
		}
	})
	if err != nil {
		return err
	}
	defer stop()

	log.WithFields(log.Fields{"port": in.String(), "order": listenOrder}).Info("Listening")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return nil
}
