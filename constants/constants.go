package constants

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory if there is one.
func LoadEnv() {
	_ = godotenv.Load()
}

func GetOutDir() string {
	return getEnv("OUT_PATH", "./out")
}

func GetMediaDir() string {
	path := os.Getenv("MEDIA_PATH")
	if path != "" {
		return path
	}

	panic("MEDIA_PATH environment variable is not set!")
}

// GetCorpusCache is either a local path or an s3://bucket/key URI.
func GetCorpusCache() string {
	return getEnv("CORPUS_CACHE", filepath.Join(GetOutDir(), "notes.gob"))
}

func GetAWSRegion() string {
	return getEnv("AWS_REGION", "us-east-1")
}

// GetAWSEndpoint is empty unless pointing at a local object store.
func GetAWSEndpoint() string {
	return os.Getenv("AWS_ENDPOINT")
}

// GetRunsTable names the DynamoDB table generation runs are recorded in.
// Recording is off when it is unset.
func GetRunsTable() string {
	return os.Getenv("RUNS_TABLE")
}

func GetLogLevel() string {
	return getEnv("LOG_LEVEL", "info")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

var DefaultOrders = []int{2, 3, 50, 100}

const GenerationLength = 500

// MaxGenerationLength bounds the length a caller may ask for.
const MaxGenerationLength = 100000

// NoteStep is the offset, in quarter notes, between rendered symbols.
const NoteStep = 0.5

const NoteDuration = 1.0

const SequenceLength = 100

var ProgressionOrders = []int{3, 4}

const TopSymbols = 20

const TicksPerQuarter = 960

const Tempo = 120

const SampleRate = 22050
