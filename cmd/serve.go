package cmd

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/pianogram/constants"
	"github.com/jsphweid/pianogram/db"
	"github.com/jsphweid/pianogram/generator"
	"github.com/jsphweid/pianogram/model"
	"github.com/jsphweid/pianogram/progression"
	"github.com/jsphweid/pianogram/util"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the models over HTTP",
	Long:  `Loads the cached corpus, builds every default order and serves generation and scoring.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := LoadServeFiles()
		if err != nil {
			return err
		}
		return serve(m)
	},
}

// LoadServeFiles builds the models the handlers answer from.
func LoadServeFiles() (*Models, error) {
	return loadModels(context.Background(), constants.DefaultOrders)
}

// Server answers requests from one set of models. The models are never
// written after construction.
type Server struct {
	models *Models
}

func NewServer(m *Models) *Server {
	return &Server{models: m}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnseenGram):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func readBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return model.ConfigurationError("could not unmarshal request body: %v", err)
	}
	return nil
}

func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var input model.GenerateRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if input.Length == 0 {
		input.Length = constants.GenerationLength
	}
	if input.Length < 0 || input.Length > constants.MaxGenerationLength {
		writeError(w, model.ConfigurationError("length must be between 1 and %d, got %d", constants.MaxGenerationLength, input.Length))
		return
	}
	if input.Seed == 0 {
		input.Seed = time.Now().UnixNano()
	}
	lm, ok := s.models.LMs[input.Order]
	if !ok {
		writeError(w, model.ConfigurationError("no model for order %d", input.Order))
		return
	}
	gen, err := generator.New(lm, lm.Contexts(), rand.New(rand.NewSource(input.Seed)))
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := gen.Generate(input.Length)
	if err != nil {
		writeError(w, err)
		return
	}
	if table := constants.GetRunsTable(); table != "" {
		if err := db.PutRun(table, run); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, model.GenerateResponse{
		RunId:   run.ID.String(),
		Order:   run.Order,
		Symbols: run.Symbols,
		Misses:  run.Misses,
	})
}

func (s *Server) HandlePerplexity(w http.ResponseWriter, r *http.Request) {
	var input model.PerplexityRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, err)
		return
	}
	pp, err := Perplexity(s.models, input.Symbols, input.Order, input.Smoothed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.PerplexityResponse{Order: input.Order, Perplexity: pp})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	symbols := s.models.Corpus.View()
	chords := len(progression.Chords(symbols))
	writeJSON(w, http.StatusOK, model.StatsResponse{
		CorpusLength: s.models.Corpus.Len(),
		VocabSize:    s.models.Corpus.VocabSize(),
		Orders:       util.GetKeysSorted(s.models.LMs),
		Notes:        len(symbols) - chords,
		Chords:       chords,
	})
}

func (s *Server) HandleRun(w http.ResponseWriter, r *http.Request) {
	table := constants.GetRunsTable()
	if table == "" {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "runs are not recorded"})
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, model.ConfigurationError("bad run id: %v", err))
		return
	}
	runs, err := db.GetRuns(table, []uuid.UUID{id})
	if err != nil {
		writeError(w, err)
		return
	}
	run, ok := runs[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "no such run"})
		return
	}
	writeJSON(w, http.StatusOK, model.GenerateResponse{
		RunId:   run.ID.String(),
		Order:   run.Order,
		Symbols: run.Symbols,
		Misses:  run.Misses,
	})
}

func Router(m *Models) http.Handler {
	s := NewServer(m)
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/generate", s.HandleGenerate).Methods("POST")
	router.HandleFunc("/perplexity", s.HandlePerplexity).Methods("POST")
	router.HandleFunc("/stats", s.HandleStats).Methods("GET")
	router.HandleFunc("/runs/{id}", s.HandleRun).Methods("GET")
	return cors.Default().Handler(router)
}

func serve(m *Models) error {
	log.WithFields(log.Fields{"addr": serveAddr}).Info("Serving")
	return http.ListenAndServe(serveAddr, Router(m))
}
