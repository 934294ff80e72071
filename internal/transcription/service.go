package transcription

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/lang"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/sessions"
	"github.com/aura-webinar/liveqa/pkg/queue"
)

// User-facing messages.
const (
	MsgMissingFields  = "Missing required fields: audio_url, event_id, speaker_name"
	MsgEventNotFound  = "Event not found"
	MsgInvalidTargets = "Invalid target language"
)

// DefaultTargetLanguages are used when a request names none.
var DefaultTargetLanguages = []string{"pl", "en"}

// EventLookup finds the event a segment belongs to.
type EventLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// SessionRecorder appends a snapshot to the live feed.
type SessionRecorder interface {
	Record(ctx context.Context, in sessions.RecordInput) (*models.AudioSession, error)
}

// ProcessInput is a request to transcribe one speaker segment.
type ProcessInput struct {
	AudioURL        string   `json:"audio_url"`
	EventID         string   `json:"event_id"`
	SpeakerName     string   `json:"speaker_name"`
	TargetLanguages []string `json:"target_languages"`
}

// Outcome is the recorded session plus the transcript and its translations.
type Outcome struct {
	Session       *models.AudioSession `json:"session"`
	Transcription string               `json:"transcription"`
	Translations  map[string]string    `json:"translations"`
}

// Service runs the transcriber and records the result in the session feed.
type Service struct {
	events      EventLookup
	sessions    SessionRecorder
	transcriber Transcriber
	targets     []string
	logger      *zap.Logger
}

// NewService wires the transcription pipeline. targets default to DefaultTargetLanguages.
func NewService(events EventLookup, sessions SessionRecorder, transcriber Transcriber, targets []string, logger *zap.Logger) *Service {
	if len(targets) == 0 {
		targets = DefaultTargetLanguages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{events: events, sessions: sessions, transcriber: transcriber, targets: targets, logger: logger}
}

// validated is a checked ProcessInput.
type validated struct {
	eventID uuid.UUID
	speaker string
	audio   string
	targets []string
}

func (s *Service) validate(in ProcessInput) (*validated, error) {
	audio := strings.TrimSpace(in.AudioURL)
	rawEventID := strings.TrimSpace(in.EventID)
	speaker := strings.TrimSpace(in.SpeakerName)
	if audio == "" || rawEventID == "" || speaker == "" {
		return nil, apperr.InvalidInput(MsgMissingFields)
	}
	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		return nil, apperr.NotFound(MsgEventNotFound)
	}
	requested := in.TargetLanguages
	if len(requested) == 0 {
		requested = s.targets
	}
	targets := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, t := range requested {
		norm, ok := lang.Normalize(t)
		if !ok || strings.TrimSpace(t) == "" {
			return nil, apperr.InvalidInput(MsgInvalidTargets)
		}
		base := lang.Base(norm)
		if !seen[base] {
			seen[base] = true
			targets = append(targets, base)
		}
	}
	return &validated{eventID: eventID, speaker: speaker, audio: audio, targets: targets}, nil
}

// Process transcribes in.AudioURL, translates it and appends a session snapshot.
func (s *Service) Process(ctx context.Context, in ProcessInput) (*Outcome, error) {
	v, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	event, err := s.events.Get(ctx, v.eventID)
	if err != nil {
		return nil, err
	}

	res, err := s.transcriber.Transcribe(ctx, Request{
		AudioURL:        v.audio,
		SourceLanguage:  lang.Source(event.Language),
		TargetLanguages: v.targets,
	})
	if err != nil {
		return nil, apperr.Internal("transcribe audio", err)
	}

	session, err := s.sessions.Record(ctx, sessions.RecordInput{
		EventID:       v.eventID.String(),
		SpeakerName:   v.speaker,
		AudioURL:      v.audio,
		Transcription: res.Transcription,
		TranslationPL: res.Translations["pl"],
		TranslationEN: res.Translations["en"],
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transcription recorded",
		zap.String("event_id", v.eventID.String()),
		zap.String("session_id", session.ID.String()),
		zap.Strings("targets", v.targets))
	return &Outcome{Session: session, Transcription: res.Transcription, Translations: res.Translations}, nil
}

// Job validates in and converts it to a queue payload for asynchronous processing.
func (s *Service) Job(ctx context.Context, in ProcessInput) (queue.TranscriptionPayload, error) {
	v, err := s.validate(in)
	if err != nil {
		return queue.TranscriptionPayload{}, err
	}
	if _, err := s.events.Get(ctx, v.eventID); err != nil {
		return queue.TranscriptionPayload{}, err
	}
	return queue.TranscriptionPayload{
		EventID:         v.eventID,
		SpeakerName:     v.speaker,
		AudioURL:        v.audio,
		TargetLanguages: v.targets,
	}, nil
}

// ProcessJob runs a dequeued transcription payload.
func (s *Service) ProcessJob(ctx context.Context, p queue.TranscriptionPayload) (*Outcome, error) {
	return s.Process(ctx, ProcessInput{
		AudioURL:        p.AudioURL,
		EventID:         p.EventID.String(),
		SpeakerName:     p.SpeakerName,
		TargetLanguages: p.TargetLanguages,
	})
}
