package pitchtrace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNotes(t *testing.T) {
	notes := []model.TimedNote{
		{Offset: 0, Keys: model.Notes{60}},
		{Offset: 0.5, Keys: model.Notes{64, 67, 71}},
		{Offset: 1, Keys: model.Notes{48}},
	}
	trace := FromNotes(notes)
	require.Len(t, trace.Points, 3)

	assert := assert.New(t)
	assert.Equal(67.0, trace.Points[1].Pitch)
	assert.InDelta((60+67+48)/3.0, trace.Summary.Mean, 1e-9)
	// jumps of 7 and 19
	assert.InDelta(13.0, trace.Summary.MeanJump, 1e-9)
	assert.Equal(1, trace.Summary.Breaks)
	assert.Greater(trace.Summary.StdDev, 0.0)
}

func TestSummarizeSkipsUnvoiced(t *testing.T) {
	s := Summarize([]Point{{Pitch: 60}, {Pitch: 0}, {Pitch: 62}})
	assert.InDelta(t, 61.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.MeanJump, 1e-9)
	assert.Equal(t, 0, s.Breaks)

	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, 0.0, Summarize([]Point{{Pitch: 60}}).StdDev)
}

func TestFreqToPitch(t *testing.T) {
	assert.InDelta(t, 69.0, FreqToPitch(440), 1e-9)
	assert.InDelta(t, 81.0, FreqToPitch(880), 1e-9)
	assert.Equal(t, 0.0, FreqToPitch(0))
}

func TestFromWAVFindsRenderedPitch(t *testing.T) {
	notes, err := render.Notes([]string{"A4", "A4", "A4", "A4"}, render.DefaultOptions)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "a4.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, render.WriteWAV(f, notes, 22050))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	trace, err := FromWAV(f)
	require.NoError(t, err)
	require.NotEmpty(t, trace.Points)

	// 2.5 quarter notes at 120bpm; frames running past the end are padded
	last := 1.25 - float64(WindowSize)/22050
	voiced := 0
	for _, p := range trace.Points {
		if p.Freq == 0 || p.Time > last {
			continue
		}
		voiced++
		assert.InDelta(t, 69.0, p.Pitch, 0.5)
	}
	assert.Greater(t, voiced, 10)
}

func TestFromWAVRejectsGarbage(t *testing.T) {
	_, err := FromWAV(strings.NewReader("not a wav"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	trace := &Trace{Points: []Point{{Time: 0.5, Pitch: 69, Freq: 440}}}
	require.NoError(t, WriteCSV(&buf, trace))
	assert.Equal(t, "time,pitch,freq\n0.5000,69.00,440.00\n", buf.String())
}
