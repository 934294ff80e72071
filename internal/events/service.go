package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/lang"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/realtime"
	"github.com/aura-webinar/liveqa/pkg/utils"
)

// DefaultMaxParticipants applies when an event is created without a limit.
const DefaultMaxParticipants = 100

const newCodeAttempts = 5

// User-facing messages.
const (
	MsgMissingFields = "Missing required fields"
	MsgNotFound      = "Event not found"
	MsgCodeExists    = "Event code already exists"
	MsgNoFields      = "No fields to update"
)

// Store is the persistence port for events. Implementations return apperr.ErrNotFound and
// apperr.ErrConflict for missing rows and duplicate codes.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, f models.EventFilter) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, p models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CountByStatus(ctx context.Context) (map[models.EventStatus]int, error)
}

// CreateInput is the organizer's request to open an event.
type CreateInput struct {
	Code            string `json:"code"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	OrganizerName   string `json:"organizer_name"`
	OrganizerEmail  string `json:"organizer_email"`
	Language        string `json:"language"`
	MaxParticipants *int   `json:"max_participants"`
}

// Service is the event registry.
type Service struct {
	store Store
	pub   realtime.Publisher
	now   func() time.Time
}

// NewService creates an event registry over store. pub may be nil.
func NewService(store Store, pub realtime.Publisher) *Service {
	return &Service{store: store, pub: realtime.OrDiscard(pub), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates in and persists a new active event.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Event, error) {
	code := utils.NormalizeJoinCode(in.Code)
	title := strings.TrimSpace(in.Title)
	organizer := strings.TrimSpace(in.OrganizerName)
	email := strings.TrimSpace(in.OrganizerEmail)
	if code == "" || title == "" || organizer == "" || email == "" {
		return nil, apperr.InvalidInput(MsgMissingFields)
	}
	maxParticipants := DefaultMaxParticipants
	if in.MaxParticipants != nil {
		if *in.MaxParticipants <= 0 {
			return nil, apperr.InvalidInput("max_participants must be positive")
		}
		maxParticipants = *in.MaxParticipants
	}

	exists, err := s.store.CodeExists(ctx, code)
	if err != nil {
		return nil, apperr.Internal("check event code", err)
	}
	if exists {
		return nil, apperr.Conflict(MsgCodeExists)
	}

	now := s.now()
	e := &models.Event{
		ID:              uuid.New(),
		Code:            code,
		Title:           title,
		Description:     in.Description,
		OrganizerName:   organizer,
		OrganizerEmail:  email,
		Language:        lang.OrDefault(in.Language),
		MaxParticipants: maxParticipants,
		Status:          models.EventActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, e); err != nil {
		// lost a race with a concurrent create of the same code
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict(MsgCodeExists)
		}
		return nil, apperr.Internal("create event", err)
	}
	return e, nil
}

// Get returns one event.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("get event", err)
	}
	return e, nil
}

// Exists reports apperr NotFound when id is not a known event.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) error {
	_, err := s.Get(ctx, id)
	return err
}

// List returns events matching f, newest first. No match is an empty slice.
func (s *Service) List(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	f.Code = utils.NormalizeJoinCode(f.Code)
	list, err := s.store.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list events", err)
	}
	return list, nil
}

// Update applies the allow-listed fields of p and stamps updated_at.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p models.EventPatch) (*models.Event, error) {
	if p.Empty() {
		return nil, apperr.InvalidInput(MsgNoFields)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, apperr.InvalidInput("title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return nil, apperr.InvalidInput("Invalid status")
	}
	if p.Language != nil {
		language := lang.OrDefault(*p.Language)
		p.Language = &language
	}
	if p.MaxParticipants != nil && *p.MaxParticipants <= 0 {
		return nil, apperr.InvalidInput("max_participants must be positive")
	}
	p.UpdatedAt = s.now()

	e, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, notFoundOrInternal("update event", err)
	}
	s.pub.Publish(e.ID, realtime.EventUpdated, e)
	return e, nil
}

// Delete removes an event and returns the deleted snapshot.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("delete event", err)
	}
	s.pub.Publish(e.ID, realtime.EventDeleted, map[string]uuid.UUID{"id": e.ID})
	return e, nil
}

// NewCode returns a generated join code no event uses yet.
func (s *Service) NewCode(ctx context.Context) (string, error) {
	for i := 0; i < newCodeAttempts; i++ {
		code, err := utils.NewJoinCode()
		if err != nil {
			return "", apperr.Internal("generate join code", err)
		}
		exists, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return "", apperr.Internal("check event code", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperr.Internal("generate join code", errors.New("no free code after retries"))
}

// Stats counts events per status.
func (s *Service) Stats(ctx context.Context) (*models.RegistryStats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Internal("count events", err)
	}
	st := &models.RegistryStats{
		Active: counts[models.EventActive],
		Paused: counts[models.EventPaused],
		Ended:  counts[models.EventEnded],
	}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

func notFoundOrInternal(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound(MsgNotFound)
	}
	return apperr.Internal(op, err)
}
