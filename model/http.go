package model

type GenerateRequestBody struct {
	Order  int   `json:"order"`
	Length int   `json:"length"`
	Seed   int64 `json:"seed"`
}

type GenerateResponse struct {
	RunId   string   `json:"run_id"`
	Order   int      `json:"order"`
	Symbols []Symbol `json:"symbols"`
	Misses  int      `json:"misses"`
}

type PerplexityRequestBody struct {
	Order    int      `json:"order"`
	Symbols  []Symbol `json:"symbols"`
	Smoothed bool     `json:"smoothed"`
}

type PerplexityResponse struct {
	Order      int     `json:"order"`
	Perplexity float64 `json:"perplexity"`
}

type StatsResponse struct {
	CorpusLength int   `json:"corpus_length"`
	VocabSize    int   `json:"vocab_size"`
	Orders       []int `json:"orders"`
	Notes        int   `json:"notes"`
	Chords       int   `json:"chords"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
