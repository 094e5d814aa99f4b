package neural

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/jsphweid/pianogram/generator"
	"github.com/jsphweid/pianogram/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	return Config{SequenceLength: 4, Hidden: 8, Epochs: 2, LearningRate: 0.01, Dropout: 0.3, Seed: 3}
}

func TestTrainRejectsShortCorpus(t *testing.T) {
	_, err := Train([]string{"A", "B", "C"}, smallConfig())
	assert.True(t, errors.Is(err, model.ErrConfiguration))

	cfg := smallConfig()
	cfg.Dropout = 1
	_, err = Train([]string{"A", "B", "C", "D", "E", "F"}, cfg)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestPredictorDrivesGenerator(t *testing.T) {
	corpus := []string{"C4", "E4", "G4", "0.4.7", "C4", "E4", "G4", "0.4.7", "C4", "E4", "G4", "0.4.7"}
	p, err := Train(corpus, smallConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"0.4.7", "C4", "E4", "G4"}, p.Vocabulary())
	assert.Len(t, p.Seeds(), len(corpus)-4)
	assert.Equal(t, 4, p.ContextLen())

	gen, err := generator.New(p, p.Seeds(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	run, err := gen.Generate(20)
	require.NoError(t, err)
	assert.Len(t, run.Symbols, 20)
	assert.Equal(t, 0, run.Misses)
}

func TestDropout(t *testing.T) {
	in := []float32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	out := dropout(in, 0.5, rand.New(rand.NewSource(1)))
	for _, x := range out {
		assert.Contains(t, []float32{0, 2}, x)
	}
	assert.Equal(t, in, dropout(in, 0, nil))
}
