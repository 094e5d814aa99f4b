package neural

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/model"
	"github.com/openfluke/loom/nn"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	SequenceLength int
	Hidden         int
	Epochs         int
	LearningRate   float32
	// Dropout is the fraction of input positions zeroed each epoch.
	Dropout float64
	Seed    int64
}

var DefaultConfig = Config{
	SequenceLength: constants.SequenceLength,
	Hidden:         64,
	Epochs:         20,
	LearningRate:   0.01,
	Dropout:        0.3,
	Seed:           1,
}

// Predictor is a recurrent next-symbol classifier. It always has an
// answer, so generation with it never takes the reseed path.
type Predictor struct {
	cfg   Config
	vocab []model.Symbol
	ids   map[model.Symbol]int
	seeds [][]model.Symbol

	mu  sync.Mutex
	net *nn.Network
}

const numLayers = 5

func newNetwork(cfg Config, v int) *nn.Network {
	net := nn.NewNetwork(cfg.SequenceLength, 1, 1, numLayers)
	net.BatchSize = 1
	net.SetLayer(0, 0, 0, nn.InitLSTMLayer(cfg.SequenceLength, cfg.Hidden, 1, 1))
	net.SetLayer(0, 0, 1, nn.InitLSTMLayer(cfg.Hidden, cfg.Hidden, 1, 1))
	net.SetLayer(0, 0, 2, nn.InitDenseLayer(cfg.Hidden, cfg.Hidden, nn.ActivationLeakyReLU))
	net.SetLayer(0, 0, 3, nn.InitDenseLayer(cfg.Hidden, v, nn.ActivationLeakyReLU))
	net.SetLayer(0, 0, 4, nn.LayerConfig{Type: nn.LayerSoftmax, SoftmaxVariant: nn.SoftmaxStandard, Temperature: 1.0})
	return net
}

// Train fits a predictor on every window of cfg.SequenceLength symbols
// followed by its next symbol.
func Train(symbols []model.Symbol, cfg Config) (*Predictor, error) {
	if cfg.SequenceLength < 1 || cfg.Hidden < 1 || cfg.Epochs < 1 {
		return nil, model.ConfigurationError("bad network configuration %+v", cfg)
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		return nil, model.ConfigurationError("dropout must be in [0, 1), got %v", cfg.Dropout)
	}
	if len(symbols) <= cfg.SequenceLength {
		return nil, model.ConfigurationError("corpus of %d symbols is too short for sequence length %d", len(symbols), cfg.SequenceLength)
	}

	p := &Predictor{cfg: cfg, ids: make(map[model.Symbol]int)}
	for _, s := range symbols {
		if _, ok := p.ids[s]; !ok {
			p.ids[s] = 0
			p.vocab = append(p.vocab, s)
		}
	}
	sort.Strings(p.vocab)
	for i, s := range p.vocab {
		p.ids[s] = i
	}
	v := len(p.vocab)

	var inputs, targets [][]float32
	for i := 0; i+cfg.SequenceLength < len(symbols); i++ {
		window := symbols[i : i+cfg.SequenceLength]
		p.seeds = append(p.seeds, window)
		inputs = append(inputs, p.encode(window))
		target := make([]float32, v)
		target[p.ids[symbols[i+cfg.SequenceLength]]] = 1
		targets = append(targets, target)
	}

	logger := log.WithFields(log.Fields{
		"function": "neural.Train",
		"vocab":    v,
		"windows":  len(inputs),
	})
	p.net = newNetwork(cfg, v)
	rng := rand.New(rand.NewSource(cfg.Seed))
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		batches := make([]nn.TrainingBatch, len(inputs))
		for i := range inputs {
			batches[i] = nn.TrainingBatch{Input: dropout(inputs[i], cfg.Dropout, rng), Target: targets[i]}
		}
		result, err := p.net.Train(batches, &nn.TrainingConfig{
			Epochs:       1,
			LearningRate: cfg.LearningRate,
			UseGPU:       false,
			GradientClip: 1.0,
			LossType:     "mse",
			Verbose:      false,
		})
		if err != nil {
			return nil, err
		}
		logger.WithFields(log.Fields{"epoch": epoch + 1, "loss": result.FinalLoss}).Debug("trained epoch")
	}
	logger.Infof("Trained network on %v windows", len(inputs))
	return p, nil
}

// dropout zeroes a random fraction of positions and rescales the rest.
func dropout(in []float32, rate float64, rng *rand.Rand) []float32 {
	out := make([]float32, len(in))
	if rate == 0 {
		copy(out, in)
		return out
	}
	scale := float32(1 / (1 - rate))
	for i, x := range in {
		if rng.Float64() >= rate {
			out[i] = x * scale
		}
	}
	return out
}

// encode maps symbols to id / V. Unknown symbols encode as 0.
func (p *Predictor) encode(window []model.Symbol) []float32 {
	v := float32(len(p.vocab))
	res := make([]float32, len(window))
	for i, s := range window {
		res[i] = float32(p.ids[s]) / v
	}
	return res
}

func (p *Predictor) ContextLen() int {
	return p.cfg.SequenceLength
}

func (p *Predictor) Predict(window []model.Symbol) (model.Symbol, bool) {
	in := p.encode(window)
	p.mu.Lock()
	out, _ := p.net.ForwardCPU(in)
	p.mu.Unlock()

	best := 0
	for i := range out {
		if i < len(p.vocab) && out[i] > out[best] {
			best = i
		}
	}
	return p.vocab[best], true
}

func (p *Predictor) Vocabulary() []model.Symbol {
	return append([]model.Symbol(nil), p.vocab...)
}

// Seeds are the training windows, usable as generator seeds.
func (p *Predictor) Seeds() [][]model.Symbol {
	return append([][]model.Symbol(nil), p.seeds...)
}
