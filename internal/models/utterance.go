package models

import "time"

// Origin tags where an utterance came from
type Origin string

const (
	OriginTyped  Origin = "typed"
	OriginSpeech Origin = "speech"
)

// Utterance is a single unit of input text, immutable once created
type Utterance struct {
	Text   string
	Origin Origin
	At     time.Time
}

// NewUtterance creates an utterance stamped with the current time
func NewUtterance(text string, origin Origin) Utterance {
	return Utterance{
		Text:   text,
		Origin: origin,
		At:     time.Now(),
	}
}
