package domain

import "time"

// SentencePair is an example or idiom sentence together with its translation.
type SentencePair struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
}

// Word is a dictionary entry shared by every user learning the same
// translation pair. It is keyed by (TranslationCode, Original); two users
// adding the same word concurrently converge to a single row (upsert).
type Word struct {
	ID              int64
	TranslationCode string
	Original        string
	Transcriptions  []string
	Translations    []string
	PastIndefinite  []string
	PastParticiple  []string
	NounPlural      []string
	Examples        []SentencePair
	Idioms          []SentencePair
	AudioID         string // opaque audio handle from the chat transport, empty when synthesis failed
	AddedAt         time.Time
}

// HasVerbForms reports whether both irregular verb rows are known.
func (w *Word) HasVerbForms() bool {
	return len(w.PastIndefinite) > 0 && len(w.PastParticiple) > 0
}
