// Package transcription turns a speaker's audio reference into a transcript plus translations
// and appends the result to the live session feed.
package transcription

import (
	"context"
)

// Request is one audio segment to transcribe.
type Request struct {
	AudioURL        string
	SourceLanguage  string   // base language spoken, e.g. "en"
	TargetLanguages []string // base languages, e.g. ["pl", "en"]
}

// Result is the transcript and its translations keyed by base language.
type Result struct {
	Transcription string
	Translations  map[string]string
}

// Transcriber is the speech-to-text and translation port.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
