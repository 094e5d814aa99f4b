package render

import (
	"io"
	"math"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/model"
)

const amplitude = 0.3

type sliceStreamer struct {
	buf [][2]float64
	pos int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	n = copy(samples, s.buf[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error {
	return nil
}

func secondsPerQuarter() float64 {
	return 60.0 / constants.Tempo
}

// Synthesize renders each key as a sine with a short linear release.
func Synthesize(notes []model.TimedNote, sampleRate int) [][2]float64 {
	spq := secondsPerQuarter()
	end := 0.0
	for _, n := range notes {
		end = math.Max(end, n.Offset+n.Duration)
	}
	buf := make([][2]float64, int(end*spq*float64(sampleRate)))
	fade := sampleRate / 100

	for _, n := range notes {
		start := int(n.Offset * spq * float64(sampleRate))
		length := int(n.Duration * spq * float64(sampleRate))
		gain := amplitude / float64(len(n.Keys))
		for _, k := range n.Keys {
			freq := 440 * math.Pow(2, (float64(k)-69)/12)
			for i := 0; i < length && start+i < len(buf); i++ {
				env := 1.0
				if rem := length - i; rem < fade {
					env = float64(rem) / float64(fade)
				}
				v := gain * env * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
				buf[start+i][0] += v
				buf[start+i][1] += v
			}
		}
	}
	for i := range buf {
		buf[i][0] = math.Max(-1, math.Min(1, buf[i][0]))
		buf[i][1] = buf[i][0]
	}
	return buf
}

func WriteWAV(w io.WriteSeeker, notes []model.TimedNote, sampleRate int) error {
	streamer := &sliceStreamer{buf: Synthesize(notes, sampleRate)}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	return wav.Encode(w, streamer, format)
}
