package symbol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/pianogram/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

var pitchNames = [12]string{"C", "C#", "D", "E-", "E", "F", "F#", "G", "G#", "A", "B-", "B"}

var letterClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// PitchName spells a MIDI key the way the corpus does: sharps for C, F, G
// and flats (written "-") for E, B, so 63 is "E-4".
func PitchName(key uint8) model.Symbol {
	return fmt.Sprintf("%s%d", pitchNames[key%12], int(key)/12-1)
}

// ParsePitch is the inverse of PitchName, also accepting spellings like
// "D#4", "B--3" or "C##2".
func ParsePitch(name string) (uint8, error) {
	if name == "" {
		return 0, fmt.Errorf("empty pitch name")
	}
	pc, ok := letterClasses[name[0]]
	if !ok {
		return 0, fmt.Errorf("bad pitch name %q", name)
	}
	i := 1
	for ; i < len(name); i++ {
		switch name[i] {
		case '#':
			pc++
			continue
		case '-':
			// a trailing "-N" could be a negative octave, only treat it as a
			// flat when more accidentals or an octave digit follow
			if i+1 < len(name) {
				pc--
				continue
			}
		}
		break
	}
	octave := 4
	if i < len(name) {
		o, err := strconv.Atoi(name[i:])
		if err != nil {
			return 0, fmt.Errorf("bad octave in pitch name %q", name)
		}
		octave = o
	}
	key := (octave+1)*12 + pc
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("pitch %q out of midi range", name)
	}
	return uint8(key), nil
}

// NormalOrder returns the pitch classes in their most compact rotation.
// Ties go to the rotation that packs tighter from the right, then to the
// lowest starting pitch class.
func NormalOrder(pcs []int) []int {
	set := make(map[int]bool)
	for _, pc := range pcs {
		set[((pc%12)+12)%12] = true
	}
	sorted := make([]int, 0, len(set))
	for pc := range set {
		sorted = append(sorted, pc)
	}
	sort.Ints(sorted)
	if len(sorted) < 2 {
		return sorted
	}

	n := len(sorted)
	var best []int
	for r := 0; r < n; r++ {
		rot := append(append([]int{}, sorted[r:]...), sorted[:r]...)
		if best == nil || tighter(rot, best) {
			best = rot
		}
	}
	return best
}

func span(rot []int, to int) int {
	return ((rot[to]-rot[0])%12 + 12) % 12
}

func tighter(a, b []int) bool {
	for to := len(a) - 1; to > 0; to-- {
		sa, sb := span(a, to), span(b, to)
		if sa != sb {
			return sa < sb
		}
	}
	return a[0] < b[0]
}

// ChordSymbol builds the symbol for keys sounding together.
func ChordSymbol(keys []uint8) model.Symbol {
	pcs := make([]int, len(keys))
	for i, k := range keys {
		pcs[i] = int(k % 12)
	}
	order := NormalOrder(pcs)
	parts := make([]string, len(order))
	for i, pc := range order {
		parts[i] = strconv.Itoa(pc)
	}
	return strings.Join(parts, model.ChordDelimiter)
}

func ParseChord(s model.Symbol) ([]int, error) {
	parts := strings.Split(s, model.ChordDelimiter)
	pcs := make([]int, 0, len(parts))
	for _, p := range parts {
		pc, err := strconv.Atoi(p)
		if err != nil || pc < 0 || pc > 11 {
			return nil, fmt.Errorf("bad chord symbol %q", s)
		}
		pcs = append(pcs, pc)
	}
	return pcs, nil
}

type onset struct {
	tick int64
	key  uint8
}

// FromSMF reads every note start across all tracks and groups the ones
// sharing a tick: one key becomes a pitch name, several become a chord.
func FromSMF(s *smf.SMF) []model.Symbol {
	var onsets []onset
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			if event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0 {
				onsets = append(onsets, onset{tick: absTicks, key: key})
			}
		}
	}

	sort.SliceStable(onsets, func(i, j int) bool {
		return onsets[i].tick < onsets[j].tick
	})

	var res []model.Symbol
	for i := 0; i < len(onsets); {
		j := i
		seen := make(map[uint8]bool)
		var keys []uint8
		for ; j < len(onsets) && onsets[j].tick == onsets[i].tick; j++ {
			if !seen[onsets[j].key] {
				seen[onsets[j].key] = true
				keys = append(keys, onsets[j].key)
			}
		}
		if len(keys) == 1 {
			res = append(res, PitchName(keys[0]))
		} else {
			res = append(res, ChordSymbol(keys))
		}
		i = j
	}
	return res
}
