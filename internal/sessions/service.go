// Package sessions is the live session feed: an append-only log of speaker segments with
// their transcript and translations, polled by viewers for the latest entry.
package sessions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/realtime"
)

// User-facing messages.
const (
	MsgMissingFields   = "Missing required fields"
	MsgEventIDRequired = "Event ID is required"
	MsgInvalidEventID  = "Invalid event ID"
	MsgEventNotFound   = "Event not found"
)

// Store is the persistence port for sessions.
type Store interface {
	Create(ctx context.Context, a *models.AudioSession) error
	ListByEvent(ctx context.Context, eventID uuid.UUID, limit int) ([]models.AudioSession, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error)
}

// RecordInput is one speaker segment to append to the feed.
type RecordInput struct {
	EventID       string `json:"event_id"`
	SpeakerName   string `json:"speaker_name"`
	AudioURL      string `json:"audio_url"`
	Transcription string `json:"transcription"`
	TranslationPL string `json:"translation_pl"`
	TranslationEN string `json:"translation_en"`
}

// Service records and serves session snapshots.
type Service struct {
	store Store
	pub   realtime.Publisher
	now   func() time.Time
}

// NewService creates the session feed. pub may be nil.
func NewService(store Store, pub realtime.Publisher) *Service {
	return &Service{store: store, pub: realtime.OrDiscard(pub), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record validates in and appends an immutable, timestamped snapshot.
func (s *Service) Record(ctx context.Context, in RecordInput) (*models.AudioSession, error) {
	rawEventID := strings.TrimSpace(in.EventID)
	speaker := strings.TrimSpace(in.SpeakerName)
	if rawEventID == "" || speaker == "" {
		return nil, apperr.InvalidInput(MsgMissingFields)
	}
	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		return nil, apperr.NotFound(MsgEventNotFound)
	}

	a := &models.AudioSession{
		ID:            uuid.New(),
		EventID:       eventID,
		SpeakerName:   speaker,
		AudioURL:      in.AudioURL,
		Transcription: in.Transcription,
		TranslationPL: in.TranslationPL,
		TranslationEN: in.TranslationEN,
		StartedAt:     s.now(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound(MsgEventNotFound)
		}
		return nil, apperr.Internal("create audio session", err)
	}
	s.pub.Publish(a.EventID, realtime.SessionRecorded, a)
	return a, nil
}

// List returns the event's sessions newest first; with latestOnly at most one.
func (s *Service) List(ctx context.Context, eventID string, latestOnly bool) ([]models.AudioSession, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, apperr.InvalidInput(MsgEventIDRequired)
	}
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperr.InvalidInput(MsgInvalidEventID)
	}
	limit := 0
	if latestOnly {
		limit = 1
	}
	list, err := s.store.ListByEvent(ctx, id, limit)
	if err != nil {
		return nil, apperr.Internal("list audio sessions", err)
	}
	return list, nil
}

// Latest returns the most recent session of an event, or nil when none exist.
func (s *Service) Latest(ctx context.Context, eventID uuid.UUID) (*models.AudioSession, error) {
	list, err := s.List(ctx, eventID.String(), true)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

// Count returns how many sessions an event has.
func (s *Service) Count(ctx context.Context, eventID uuid.UUID) (int, error) {
	n, err := s.store.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, apperr.Internal("count audio sessions", err)
	}
	return n, nil
}
