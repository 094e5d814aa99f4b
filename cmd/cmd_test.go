package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/pianogram/chord"
	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/corpus"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/pitchtrace"
	"github.com/jsphweid/pianogram/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var song = []string{
	"C4", "E4", "G4", "0.4.7", "C4", "E4", "D4", "5.9.0", "7.11.2", "0.4.7",
	"C4", "E4", "G4", "0.4.7", "F4", "A4", "5.9.0", "7.11.2", "0.4.7", "C5",
}

func testModels(t *testing.T, orders []int) *Models {
	t.Helper()
	m, err := BuildModels(context.Background(), corpus.New(song), orders)
	require.NoError(t, err)
	return m
}

func TestBuildModels(t *testing.T) {
	m := testModels(t, []int{2, 3})
	assert.Len(t, m.LMs, 2)
	for _, n := range []int{1, 2, 3} {
		assert.Contains(t, m.Tables, n)
	}
	assert.Equal(t, 3, m.LMs[3].Order())
}

func TestBuildModelsTooShort(t *testing.T) {
	_, err := BuildModels(context.Background(), corpus.New(song), []int{50})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestPerplexityRawAndSmoothed(t *testing.T) {
	m := testModels(t, []int{2})

	pp, err := Perplexity(m, song, 2, false)
	require.NoError(t, err)
	assert.Greater(t, pp, 0.0)

	_, err = Perplexity(m, []string{"C4", "C5", "C4"}, 2, false)
	assert.ErrorIs(t, err, model.ErrUnseenGram)

	pp, err = Perplexity(m, []string{"C4", "C5", "C4"}, 2, true)
	require.NoError(t, err)
	assert.Greater(t, pp, 1.0)

	_, err = Perplexity(m, song, 4, true)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestReport(t *testing.T) {
	r, err := Report(context.Background(), corpus.New(song))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(len(song), r.Length)
	assert.Equal(10, r.VocabSize)
	assert.Equal(12, r.NumNotes)
	assert.Equal(8, r.NumChords)
	assert.Equal([]string{"0.4.7"}, r.TopSymbols[0].Gram)
	assert.Equal(4, r.TopSymbols[0].Count)
	// C4 and E4 tie, the larger symbol first
	assert.Equal([]string{"E4"}, r.TopSymbols[1].Gram)
	assert.Equal([]string{"E4"}, r.TopNotes[0].Gram)
	assert.Equal([]string{"0.4.7"}, r.TopChords[0].Gram)
	assert.Len(r.TopTriads, 3)
	assert.Equal(4, r.Progressions[3])
}

func TestReportCountsBarePitchClassesAsNotes(t *testing.T) {
	r, err := Report(context.Background(), corpus.New([]string{"C4", "0", "4.7", "11", "0.4.7"}))
	require.NoError(t, err)
	assert.Equal(t, 3, r.NumNotes)
	assert.Equal(t, 2, r.NumChords)
	for _, e := range r.TopChords {
		assert.Contains(t, e.Gram[0], model.ChordDelimiter)
	}
}

func TestGenerateWritesOutputs(t *testing.T) {
	m := testModels(t, []int{2, 3})
	dir := t.TempDir()
	runs, err := Generate(context.Background(), m, GenerateOptions{
		Orders:  []int{2, 3},
		Length:  40,
		Runs:    2,
		Seed:    5,
		Render:  render.DefaultOptions,
		OutDir:  dir,
		WAV:     true,
		Preview: 4,
	})
	require.NoError(t, err)
	require.Len(t, runs, 4)

	for _, r := range runs {
		assert.Len(t, r.Symbols, 40)
		for _, ext := range []string{".mid", "-preview.mid", ".wav", ".csv", "-audio.csv"} {
			matches, err := filepath.Glob(filepath.Join(dir, "*"+r.ID.String()+ext))
			require.NoError(t, err)
			assert.Len(t, matches, 1, ext)
		}
	}
}

func TestGenerateTracesRenderedAudio(t *testing.T) {
	m := testModels(t, []int{2})
	dir := t.TempDir()
	runs, err := Generate(context.Background(), m, GenerateOptions{
		Orders: []int{2},
		Length: 20,
		Runs:   1,
		Seed:   3,
		Render: render.DefaultOptions,
		OutDir: dir,
		WAV:    true,
	})
	require.NoError(t, err)
	base := filepath.Join(dir, fmt.Sprintf("2-gram-%s", runs[0].ID))

	f, err := os.Open(base + ".wav")
	require.NoError(t, err)
	defer f.Close()
	want, err := pitchtrace.FromWAV(f)
	require.NoError(t, err)
	require.NotEmpty(t, want.Points)

	written, err := os.ReadFile(base + "-audio.csv")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, pitchtrace.WriteCSV(&buf, want))
	assert.Equal(t, buf.String(), string(written))
}

func TestGenerateWithoutWAVSkipsAudioTrace(t *testing.T) {
	m := testModels(t, []int{2})
	dir := t.TempDir()
	_, err := Generate(context.Background(), m, GenerateOptions{
		Orders: []int{2}, Length: 10, Runs: 1, Seed: 3, Render: render.DefaultOptions, OutDir: dir,
	})
	require.NoError(t, err)
	matches, err := filepath.Glob(filepath.Join(dir, "*-audio.csv"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGenerateRejectsOversizedLength(t *testing.T) {
	m := testModels(t, []int{2})
	_, err := Generate(context.Background(), m, GenerateOptions{
		Orders: []int{2}, Length: constants.MaxGenerationLength + 1, Runs: 1, OutDir: t.TempDir(),
	})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestGenerateUnknownOrder(t *testing.T) {
	m := testModels(t, []int{2})
	_, err := Generate(context.Background(), m, GenerateOptions{Orders: []int{5}, Runs: 1, OutDir: t.TempDir()})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestExtract(t *testing.T) {
	media := t.TempDir()
	notes, err := render.Notes([]string{"C4", "0.4.7", "E4"}, render.DefaultOptions)
	require.NoError(t, err)
	f, err := os.Create(filepath.Join(media, "a.mid"))
	require.NoError(t, err)
	require.NoError(t, render.WriteMIDI(f, notes))
	require.NoError(t, f.Close())

	cache := filepath.Join(t.TempDir(), "notes.gob")
	c, err := Extract(media, 0, cache)
	require.NoError(t, err)
	assert.Equal(t, []string{"C4", "0.4.7", "E4"}, c.Symbols())

	loaded, err := corpus.Load(cache)
	require.NoError(t, err)
	assert.Equal(t, c.Symbols(), loaded.Symbols())
}

func TestSuggest(t *testing.T) {
	m := testModels(t, []int{2})
	tr := chord.NewTracker(m.LMs[2].ContextLen())

	_, _, ok := Suggest(tr, m.LMs[2])
	assert.False(t, ok)

	tr.Press(60)
	tr.Press(64)
	tr.Press(67)
	played, next, ok := Suggest(tr, m.LMs[2])
	assert.True(t, ok)
	assert.Equal(t, "0.4.7", played)
	assert.Equal(t, "C4", next)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlers(t *testing.T) {
	t.Setenv("RUNS_TABLE", "")
	h := Router(testModels(t, []int{2, 3}))

	w := do(t, h, http.MethodPost, "/generate", model.GenerateRequestBody{Order: 3, Length: 30, Seed: 9})
	require.Equal(t, http.StatusOK, w.Code)
	var gen model.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gen))
	assert.Len(t, gen.Symbols, 30)
	assert.Equal(t, 3, gen.Order)

	w = do(t, h, http.MethodPost, "/generate", model.GenerateRequestBody{Order: 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/perplexity", model.PerplexityRequestBody{Order: 2, Symbols: []string{"C4", "E4", "G4"}})
	require.Equal(t, http.StatusOK, w.Code)
	var pp model.PerplexityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pp))
	assert.Greater(t, pp.Perplexity, 0.0)

	w = do(t, h, http.MethodPost, "/perplexity", model.PerplexityRequestBody{Order: 2, Symbols: []string{"C5", "C5"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, model.StatsResponse{CorpusLength: 20, VocabSize: 10, Orders: []int{2, 3}, Notes: 12, Chords: 8}, stats)

	w = do(t, h, http.MethodGet, "/runs/"+gen.RunId, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateHandlerRejectsOversizedLength(t *testing.T) {
	t.Setenv("RUNS_TABLE", "")
	h := Router(testModels(t, []int{2}))

	for _, length := range []int{constants.MaxGenerationLength + 1, 1000000000, -5} {
		w := do(t, h, http.MethodPost, "/generate", model.GenerateRequestBody{Order: 2, Length: length, Seed: 1})
		assert.Equal(t, http.StatusBadRequest, w.Code, length)
	}

	w := do(t, h, http.MethodPost, "/generate", model.GenerateRequestBody{Order: 2, Length: constants.MaxGenerationLength, Seed: 1})
	require.Equal(t, http.StatusOK, w.Code)
	var gen model.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gen))
	assert.Len(t, gen.Symbols, constants.MaxGenerationLength)
}

func TestRoutersServeTheirOwnModels(t *testing.T) {
	small := Router(testModels(t, []int{2}))
	both := Router(testModels(t, []int{2, 3}))

	var stats model.StatsResponse
	w := do(t, small, http.MethodGet, "/stats", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, []int{2}, stats.Orders)

	w = do(t, both, http.MethodGet, "/stats", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, []int{2, 3}, stats.Orders)
}
