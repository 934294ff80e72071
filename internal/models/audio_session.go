package models

import (
	"time"

	"github.com/google/uuid"
)

// AudioSession is an immutable snapshot of one speaker segment's transcript and translations.
type AudioSession struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	SpeakerName   string    `json:"speaker_name"`
	AudioURL      string    `json:"audio_url"`
	Transcription string    `json:"transcription"`
	TranslationPL string    `json:"translation_pl"`
	TranslationEN string    `json:"translation_en"`
	StartedAt     time.Time `json:"started_at"`
}

// QuestionStats counts an event's questions per status.
type QuestionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Declined int `json:"declined"`
	Answered int `json:"answered"`
}

// EventStats summarises one event for the organizer dashboard.
type EventStats struct {
	EventID   uuid.UUID     `json:"event_id"`
	Questions QuestionStats `json:"questions"`
	Sessions  int           `json:"sessions"`
	Viewers   int           `json:"live_viewers"`
}

// RegistryStats counts events per status.
type RegistryStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Paused int `json:"paused"`
	Ended  int `json:"ended"`
}
