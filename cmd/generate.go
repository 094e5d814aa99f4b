package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/db"
	"github.com/jsphweid/pianogram/generator"
	"github.com/jsphweid/pianogram/midi"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/neural"
	"github.com/jsphweid/pianogram/pitchtrace"
	"github.com/jsphweid/pianogram/progression"
	"github.com/jsphweid/pianogram/render"
	"github.com/jsphweid/pianogram/sample"
	"github.com/jsphweid/pianogram/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type GenerateOptions struct {
	Orders   []int
	Length   int
	Runs     int
	Seed     int64
	Neural   bool
	Render   render.Options
	OutDir   string
	WAV      bool
	Preview  int
	RunTable string
}

var genOpts = GenerateOptions{Render: render.DefaultOptions}
var noChords bool

func init() {
	f := generateCmd.Flags()
	f.IntSliceVarP(&genOpts.Orders, "order", "n", constants.DefaultOrders, "model orders to generate with")
	f.IntVar(&genOpts.Length, "length", constants.GenerationLength, "symbols per run")
	f.IntVar(&genOpts.Runs, "runs", 1, "runs per order")
	f.Int64Var(&genOpts.Seed, "seed", 0, "random seed (default: current time)")
	f.BoolVar(&genOpts.Neural, "neural", false, "also train and generate with the recurrent model")
	f.BoolVar(&noChords, "no-chords", false, "leave chord symbols out of the rendered output")
	f.StringVar(&genOpts.OutDir, "out", "", "output folder (default $OUT_PATH)")
	f.BoolVar(&genOpts.WAV, "wav", true, "write a sine preview WAV next to each MIDI file")
	f.IntVar(&genOpts.Preview, "preview", 0, "also write a MIDI excerpt of this many notes")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates sequences",
	Long: `Generates sequences greedily from the n-gram models of the cached corpus,
renders each to MIDI and audio, and reports its pitch line and the chord
progressions it shares with the corpus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genOpts.Seed == 0 {
			genOpts.Seed = time.Now().UnixNano()
		}
		if genOpts.OutDir == "" {
			genOpts.OutDir = constants.GetOutDir()
		}
		genOpts.Render.IncludeChords = !noChords
		genOpts.RunTable = constants.GetRunsTable()

		ctx := context.Background()
		m, err := loadModels(ctx, genOpts.Orders)
		if err != nil {
			return err
		}
		runs, err := Generate(ctx, m, genOpts)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%v\t%v-gram\t%v misses\n", r.ID, r.Order, r.Misses)
		}
		return nil
	},
}

// Generate runs every requested model and writes the results under
// opts.OutDir.
func Generate(ctx context.Context, m *Models, opts GenerateOptions) ([]*generator.Run, error) {
	if opts.Length < 0 || opts.Length > constants.MaxGenerationLength {
		return nil, model.ConfigurationError("length must be between 0 and %d, got %d", constants.MaxGenerationLength, opts.Length)
	}
	if err := util.EnsureDir(opts.OutDir); err != nil {
		return nil, &model.IOError{Op: "mkdir", Path: opts.OutDir, Err: err}
	}
	ref, err := progression.Reference(ctx, m.Corpus.View(), constants.ProgressionOrders)
	if err != nil {
		return nil, err
	}

	var all []*generator.Run
	for _, n := range opts.Orders {
		lm, ok := m.LMs[n]
		if !ok {
			return nil, model.ConfigurationError("no model for order %d", n)
		}
		runs, err := generator.GenerateMany(ctx, lm, lm.Contexts(), opts.Runs, opts.Length, opts.Seed)
		if err != nil {
			return nil, err
		}
		all = append(all, runs...)
	}
	if opts.Neural {
		p, err := neural.Train(m.Corpus.View(), neural.DefaultConfig)
		if err != nil {
			return nil, err
		}
		runs, err := generator.GenerateMany(ctx, p, p.Seeds(), opts.Runs, opts.Length, opts.Seed)
		if err != nil {
			return nil, err
		}
		all = append(all, runs...)
	}

	for _, r := range all {
		if err := writeRun(r, ref, opts); err != nil {
			return nil, err
		}
		if opts.RunTable != "" {
			if err := db.PutRun(opts.RunTable, r); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

func writeRun(r *generator.Run, ref progression.Tables, opts GenerateOptions) error {
	logger := log.WithFields(log.Fields{
		"function": "cmd.writeRun",
		"run":      r.ID,
		"order":    r.Order,
	})
	notes, err := render.Notes(r.Symbols, opts.Render)
	if err != nil {
		return err
	}
	base := filepath.Join(opts.OutDir, fmt.Sprintf("%d-gram-%s", r.Order, r.ID))

	s := render.SMF(notes)
	if err := midi.WriteMidiFile(base+".mid", s); err != nil {
		return err
	}
	if opts.Preview > 0 {
		if err := midi.WriteMidiFile(base+"-preview.mid", sample.Excerpt(s, 0, opts.Preview)); err != nil {
			return err
		}
	}
	if opts.WAV {
		f, err := os.Create(base + ".wav")
		if err != nil {
			return &model.IOError{Op: "create", Path: base + ".wav", Err: err}
		}
		err = render.WriteWAV(f, notes, constants.SampleRate)
		f.Close()
		if err != nil {
			return &model.IOError{Op: "write", Path: base + ".wav", Err: err}
		}

		// trace what was actually rendered, not the note list
		heard, err := traceWAV(base + ".wav")
		if err != nil {
			return err
		}
		if err := writeTrace(base+"-audio.csv", heard); err != nil {
			return err
		}
		logSummary(logger, heard.Summary).Info("Rendered pitch line")
	}

	trace := pitchtrace.FromNotes(notes)
	if err := writeTrace(base+".csv", trace); err != nil {
		return err
	}
	logSummary(logger, trace.Summary).Info("Pitch line")

	gen, err := progression.Reference(context.Background(), r.Symbols, constants.ProgressionOrders)
	if err != nil {
		return err
	}
	for _, c := range progression.Compare(gen, ref) {
		logger.WithFields(log.Fields{
			"length":   c.Order,
			"distinct": c.GeneratedDistinct,
			"shared":   len(c.Shared),
			"reused":   c.SharedOccurrences(),
		}).Info("Chord progressions")
		for _, sh := range c.MostShared(constants.TopSymbols) {
			logger.Debugf("%v\t%v\t%v", strings.Join(sh.Gram, " "), sh.Generated, sh.Reference)
		}
	}
	return nil
}

func traceWAV(path string) (*pitchtrace.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	return pitchtrace.FromWAV(f)
}

func writeTrace(path string, trace *pitchtrace.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return &model.IOError{Op: "create", Path: path, Err: err}
	}
	err = pitchtrace.WriteCSV(f, trace)
	f.Close()
	if err != nil {
		return &model.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func logSummary(logger *log.Entry, s pitchtrace.Summary) *log.Entry {
	return logger.WithFields(log.Fields{
		"mean":      s.Mean,
		"stddev":    s.StdDev,
		"mean_jump": s.MeanJump,
		"breaks":    s.Breaks,
	})
}
