package model

import "strings"

// ChordDelimiter joins the pitch classes of a chord symbol.
const ChordDelimiter = "."

// Symbol is a single pitch name ("C4", "E-5") or a chord of pitch
// classes in normal order ("4.7.11").
type Symbol = string

type Notes = []uint8

func IsChord(s Symbol) bool {
	if strings.Contains(s, ChordDelimiter) {
		return true
	}
	return isDigits(s)
}

func IsNote(s Symbol) bool {
	return s != "" && !IsChord(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
