package pitchtrace

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/jsphweid/pianogram/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BreakSemitones is the jump above which two consecutive pitches count as
// a break in the line.
const BreakSemitones = 12

type Point struct {
	// Time is in quarter notes for rendered notes and seconds for audio.
	Time  float64
	Pitch float64
	// Freq is 0 for points that did not come from audio.
	Freq float64
}

type Summary struct {
	Mean     float64
	StdDev   float64
	MeanJump float64
	Breaks   int
}

type Trace struct {
	Points  []Point
	Summary Summary
}

// FromNotes traces rendered notes. A chord contributes its mean key.
func FromNotes(notes []model.TimedNote) *Trace {
	t := &Trace{}
	for _, n := range notes {
		if len(n.Keys) == 0 {
			continue
		}
		keys := make([]float64, len(n.Keys))
		for i, k := range n.Keys {
			keys[i] = float64(k)
		}
		t.Points = append(t.Points, Point{Time: n.Offset, Pitch: stat.Mean(keys, nil)})
	}
	t.Summary = Summarize(t.Points)
	return t
}

// Summarize ignores unvoiced points, those with a zero pitch.
func Summarize(points []Point) Summary {
	var pitches []float64
	for _, p := range points {
		if p.Pitch > 0 {
			pitches = append(pitches, p.Pitch)
		}
	}
	var s Summary
	if len(pitches) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(pitches, nil)
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	if len(pitches) < 2 {
		return s
	}
	jumps := make([]float64, len(pitches)-1)
	floats.SubTo(jumps, pitches[1:], pitches[:len(pitches)-1])
	for i, j := range jumps {
		jumps[i] = math.Abs(j)
		if jumps[i] > BreakSemitones {
			s.Breaks++
		}
	}
	s.MeanJump = stat.Mean(jumps, nil)
	return s
}

func WriteCSV(w io.Writer, t *Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "pitch", "freq"}); err != nil {
		return err
	}
	for _, p := range t.Points {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', 4, 64),
			strconv.FormatFloat(p.Pitch, 'f', 2, 64),
			strconv.FormatFloat(p.Freq, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FreqToPitch converts Hz to a fractional MIDI key, A4 = 440Hz = 69.
func FreqToPitch(freq float64) float64 {
	if freq <= 0 {
		return 0
	}
	return 69 + 12*math.Log2(freq/440)
}
