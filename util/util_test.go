package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherAllMidiPathsIsSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0777))
	for _, name := range []string{"z.mid", "a.MIDI", "b/c.mid", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0666))
	}

	paths, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]string{
		filepath.Join(dir, "a.MIDI"),
		filepath.Join(dir, "b/c.mid"),
		filepath.Join(dir, "z.mid"),
	}, paths)

	limited, err := GatherAllMidiPaths(dir, 2)
	require.NoError(t, err)
	assert.Len(limited, 2)
}

func TestGatherAllMidiPathsMissingDir(t *testing.T) {
	_, err := GatherAllMidiPaths(filepath.Join(t.TempDir(), "nope"), 0)
	assert.Error(t, err)
}

func TestBinaryRoundTrip(t *testing.T) {
	in := []string{"C4", "4.7.11", "E-5"}
	b, err := EncodeBinary(in)
	require.NoError(t, err)

	out, err := DecodeBinary[[]string](b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHelpers(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"a", "b", "c"}, GetKeysSorted(map[string]int{"c": 1, "a": 2, "b": 3}))
	assert.Equal(uint64(6), Sum([]int{1, 2, 3}))
	assert.Equal(2, Min(2, 5))
	assert.Equal([]int{2, 4}, Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 }))
}
