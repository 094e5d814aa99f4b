package generator

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Predictor proposes the next symbol for a window of ContextLen symbols.
// ok is false when the window was never observed.
type Predictor interface {
	ContextLen() int
	Predict(window []model.Symbol) (next model.Symbol, ok bool)
}

// maxPrealloc caps the capacity reserved up front; longer runs grow by append.
const maxPrealloc = 4096

type Run struct {
	ID      uuid.UUID
	Order   int
	Symbols []model.Symbol
	Misses  int
}

type Generator struct {
	p     Predictor
	seeds [][]model.Symbol
	rng   *rand.Rand
}

// New checks the seeds up front so a generator can never spin on a model
// with nothing to restart from.
func New(p Predictor, seeds [][]model.Symbol, rng *rand.Rand) (*Generator, error) {
	if len(seeds) == 0 {
		return nil, model.ConfigurationError("no observed contexts to seed from")
	}
	for _, s := range seeds {
		if len(s) != p.ContextLen() {
			return nil, model.ConfigurationError("seed has %d symbols, want %d", len(s), p.ContextLen())
		}
	}
	if rng == nil {
		return nil, model.ConfigurationError("generator needs a random source")
	}
	return &Generator{p: p, seeds: seeds, rng: rng}, nil
}

func (g *Generator) seed() []model.Symbol {
	s := g.seeds[g.rng.Intn(len(g.seeds))]
	return append([]model.Symbol(nil), s...)
}

// Generate emits exactly length symbols. Each step takes the most likely
// continuation of the window. When the window was never seen a fresh seed
// is drawn, its last symbol is emitted and the window restarts from it.
func (g *Generator) Generate(length int) (*Run, error) {
	if length < 0 {
		return nil, model.ConfigurationError("length must not be negative, got %d", length)
	}
	run := &Run{
		ID:      uuid.New(),
		Order:   g.p.ContextLen() + 1,
		Symbols: make([]model.Symbol, 0, util.Min(length, maxPrealloc)),
	}
	logger := log.WithFields(log.Fields{
		"function": "generator.Generate",
		"run":      run.ID,
		"order":    run.Order,
	})

	window := g.seed()
	for step := 0; step < length; step++ {
		next, ok := g.p.Predict(window)
		if !ok {
			run.Misses++
			window = g.seed()
			if len(window) == 0 {
				// order 1 models have empty contexts
				next, ok = g.p.Predict(window)
				if !ok {
					return nil, model.ConfigurationError("model has no continuation for the empty context")
				}
			} else {
				next = window[len(window)-1]
			}
			logger.WithFields(log.Fields{"step": step, "misses": run.Misses}).Debug("context miss, reseeded")
		}
		run.Symbols = append(run.Symbols, next)
		if len(window) > 0 {
			window = append(window[1:], next)
		}
	}
	logger.WithFields(log.Fields{"misses": run.Misses}).Infof("Generated %v symbols", len(run.Symbols))
	return run, nil
}

// GenerateMany produces n independent runs concurrently. Run i draws from
// its own source seeded with seed+i, so results do not depend on
// scheduling.
func GenerateMany(ctx context.Context, p Predictor, seeds [][]model.Symbol, n, length int, seed int64) ([]*Run, error) {
	runs := make([]*Run, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gen, err := New(p, seeds, rand.New(rand.NewSource(seed+int64(i))))
			if err != nil {
				return err
			}
			run, err := gen.Generate(length)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}
