package model

// TimedNote is a rendered note. Offset and Duration are in quarter notes.
type TimedNote struct {
	Offset   float64
	Duration float64
	Keys     Notes
	Symbol   Symbol
}

func (n TimedNote) IsChord() bool {
	return len(n.Keys) > 1 || IsChord(n.Symbol)
}
