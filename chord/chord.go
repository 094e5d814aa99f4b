package chord

import (
	"sort"
	"sync"

	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/symbol"
)

type OnNotes = map[uint8]bool

// Tracker follows the keys held on a live input. Notes struck together
// are read back as a single symbol.
type Tracker struct {
	mu      sync.Mutex
	on      OnNotes
	struck  OnNotes
	history []model.Symbol
	keep    int
}

// NewTracker remembers at most keep committed symbols, at least one.
func NewTracker(keep int) *Tracker {
	if keep < 1 {
		keep = 1
	}
	return &Tracker{on: make(OnNotes), struck: make(OnNotes), keep: keep}
}

func (t *Tracker) Press(key uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.on[key] = true
	t.struck[key] = true
}

func (t *Tracker) Release(key uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.on, key)
}

func (t *Tracker) Held() []uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedKeys(t.on)
}

// Commit turns everything struck since the last commit into one symbol
// and appends it to the history, dropping the oldest symbol once keep is
// exceeded. ok is false when nothing was struck.
func (t *Tracker) Commit() (s model.Symbol, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.struck) == 0 {
		return "", false
	}
	s = Symbol(sortedKeys(t.struck))
	t.struck = make(OnNotes)
	t.history = append(t.history, s)
	if over := len(t.history) - t.keep; over > 0 {
		t.history = append(t.history[:0], t.history[over:]...)
	}
	return s, true
}

// Last returns up to n of the most recent committed symbols.
func (t *Tracker) Last(n int) []model.Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.history) {
		n = len(t.history)
	}
	return append([]model.Symbol(nil), t.history[len(t.history)-n:]...)
}

// Symbol names a set of keys the way corpus extraction does.
func Symbol(keys []uint8) model.Symbol {
	distinct := make(OnNotes)
	for _, k := range keys {
		distinct[k] = true
	}
	if len(distinct) == 1 {
		return symbol.PitchName(keys[0])
	}
	return symbol.ChordSymbol(keys)
}

func sortedKeys(m OnNotes) []uint8 {
	keys := make([]uint8, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}
