package render

import (
	"strings"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/symbol"
)

type Options struct {
	// IncludeChords renders chord symbols. Without it chords are skipped
	// but still take up their step.
	IncludeChords bool
	Step          float64
	Duration      float64
}

var DefaultOptions = Options{
	IncludeChords: true,
	Step:          constants.NoteStep,
	Duration:      constants.NoteDuration,
}

// chordOctave is the MIDI key of pitch class 0 in a rendered chord (C4).
const chordOctave = 60

// Notes lays symbols out one step apart. Pitch names keep their octave,
// chord pitch classes are voiced from C4 up.
func Notes(seq []model.Symbol, opts Options) ([]model.TimedNote, error) {
	var res []model.TimedNote
	offset := 0.0
	for _, s := range seq {
		n := model.TimedNote{Offset: offset, Duration: opts.Duration, Symbol: s}
		offset += opts.Step
		if model.IsChord(s) {
			if !opts.IncludeChords {
				continue
			}
			pcs, err := symbol.ParseChord(s)
			if err != nil {
				return nil, err
			}
			for _, pc := range pcs {
				n.Keys = append(n.Keys, uint8(chordOctave+pc))
			}
		} else {
			key, err := symbol.ParsePitch(strings.TrimSpace(s))
			if err != nil {
				return nil, err
			}
			n.Keys = model.Notes{key}
		}
		res = append(res, n)
	}
	return res, nil
}
