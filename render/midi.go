package render

import (
	"io"
	"math"
	"sort"

	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/model"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const velocity = 90

type event struct {
	tick uint32
	on   bool
	key  uint8
}

// SMF builds a single piano track from the notes.
func SMF(notes []model.TimedNote) *smf.SMF {
	var events []event
	for _, n := range notes {
		start := toTicks(n.Offset)
		end := toTicks(n.Offset + n.Duration)
		for _, k := range n.Keys {
			events = append(events, event{tick: start, on: true, key: k}, event{tick: end, key: k})
		}
	}
	// note offs first so a repeated key is released before it is struck
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("piano"))
	tr.Add(0, smf.MetaTempo(constants.Tempo))
	tr.Add(0, midi.ProgramChange(0, 0))
	var last uint32
	for _, e := range events {
		delta := e.tick - last
		last = e.tick
		if e.on {
			tr.Add(delta, midi.NoteOn(0, e.key, velocity))
		} else {
			tr.Add(delta, midi.NoteOff(0, e.key))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.TicksPerQuarter)
	s.Add(tr)
	return s
}

func WriteMIDI(w io.Writer, notes []model.TimedNote) error {
	_, err := SMF(notes).WriteTo(w)
	return err
}

func toTicks(quarters float64) uint32 {
	return uint32(math.Round(quarters * constants.TicksPerQuarter))
}
