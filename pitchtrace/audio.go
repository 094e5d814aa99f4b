package pitchtrace

import (
	"io"
	"math"
	"math/cmplx"

	"github.com/faiface/beep/wav"
	"github.com/jsphweid/pianogram/model"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	HopLength  = 512
	WindowSize = 2048

	// frames quieter than this RMS are reported as unvoiced
	silence = 1e-3
)

// FromWAV tracks the dominant frequency of a mono mixdown of the audio,
// one point per hop.
func FromWAV(r io.Reader) (*Trace, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, &model.IOError{Op: "decode", Path: "wav", Err: err}
	}
	defer streamer.Close()

	var mono []float64
	buf := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(buf)
		for _, s := range buf[:n] {
			mono = append(mono, (s[0]+s[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, &model.IOError{Op: "decode", Path: "wav", Err: err}
	}

	rate := float64(format.SampleRate)
	t := &Trace{}
	frame := make([]float64, WindowSize)
	for start := 0; start < len(mono); start += HopLength {
		for i := range frame {
			frame[i] = 0
			if start+i < len(mono) {
				frame[i] = mono[start+i]
			}
		}
		freq := dominant(frame, rate)
		t.Points = append(t.Points, Point{
			Time:  float64(start) / rate,
			Pitch: FreqToPitch(freq),
			Freq:  freq,
		})
	}
	t.Summary = Summarize(t.Points)
	return t, nil
}

func dominant(frame []float64, rate float64) float64 {
	energy := 0.0
	for _, v := range frame {
		energy += v * v
	}
	if math.Sqrt(energy/float64(len(frame))) < silence {
		return 0
	}

	x := append([]float64(nil), frame...)
	window.Apply(x, window.Hann)
	spectrum := fft.FFTReal(x)

	half := len(spectrum) / 2
	mags := make([]float64, half)
	peak := 1
	for i := 1; i < half; i++ {
		mags[i] = cmplx.Abs(spectrum[i])
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	// parabolic interpolation around the peak bin
	bin := float64(peak)
	if peak > 1 && peak < half-1 {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		if d := a - 2*b + c; d != 0 {
			bin += 0.5 * (a - c) / d
		}
	}
	return bin * rate / float64(len(frame))
}
