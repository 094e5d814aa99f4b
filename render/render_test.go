package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/pianogram/midi"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotes(t *testing.T) {
	notes, err := Notes([]string{"C4", "4.7.11", "B-3"}, DefaultOptions)
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert := assert.New(t)
	assert.Equal(model.Notes{60}, notes[0].Keys)
	assert.Equal(0.0, notes[0].Offset)
	assert.Equal(1.0, notes[0].Duration)

	assert.Equal(model.Notes{64, 67, 71}, notes[1].Keys)
	assert.Equal(0.5, notes[1].Offset)
	assert.True(notes[1].IsChord())

	assert.Equal(model.Notes{58}, notes[2].Keys)
	assert.Equal(1.0, notes[2].Offset)
}

func TestNotesWithoutChordsKeepsTiming(t *testing.T) {
	opts := DefaultOptions
	opts.IncludeChords = false
	notes, err := Notes([]string{"C4", "0.4.7", "5", "D4"}, opts)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 0.0, notes[0].Offset)
	assert.Equal(t, 1.5, notes[1].Offset)
}

func TestNotesRejectsBadSymbol(t *testing.T) {
	_, err := Notes([]string{"C4", "Q9"}, DefaultOptions)
	assert.Error(t, err)
}

func TestMIDIRoundTrip(t *testing.T) {
	seq := []string{"C4", "E-4", "4.7.11", "G4"}
	notes, err := Notes(seq, DefaultOptions)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, notes))

	parsed, err := midi.ReadMidi(&buf)
	require.NoError(t, err)
	assert.Equal(t, seq, symbol.FromSMF(parsed))
}

func TestWriteWAV(t *testing.T) {
	notes, err := Notes([]string{"A4", "A4"}, DefaultOptions)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteWAV(f, notes, 8000))
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	// 1.5 quarter notes at 120bpm is 0.75s, 16 bit mono
	assert.Greater(t, info.Size(), int64(6000*2))
}

func TestSynthesizeClips(t *testing.T) {
	notes := []model.TimedNote{{Offset: 0, Duration: 1, Keys: model.Notes{60, 64, 67}}}
	for _, s := range Synthesize(notes, 8000) {
		assert.LessOrEqual(t, s[0], 1.0)
		assert.GreaterOrEqual(t, s[0], -1.0)
		assert.Equal(t, s[0], s[1])
	}
}
