package questions

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
)

// User-facing messages.
const (
	MsgMissingFields   = "Missing required fields"
	MsgEventIDRequired = "Event ID is required"
	MsgInvalidEventID  = "Invalid event ID"
	MsgEventNotFound   = "Event not found"
	MsgNotFound        = "Question not found"
	MsgNoFields        = "No fields to update"
	MsgInvalidStatus   = "Invalid status"
)

// Store is the persistence port for questions. Create assigns the queue position atomically
// and returns apperr.ErrNotFound when the event does not exist.
type Store interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, statuses []models.QuestionStatus) ([]models.Question, error)
	Update(ctx context.Context, id uuid.UUID, p models.QuestionPatch) (*models.Question, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Question, error)
	CountByStatus(ctx context.Context, eventID uuid.UUID) (map[models.QuestionStatus]int, error)
}

// SubmitInput is an attendee's question.
type SubmitInput struct {
	EventID          string  `json:"event_id"`
	ParticipantName  string  `json:"participant_name"`
	ParticipantEmail *string `json:"participant_email"`
	QuestionText     string  `json:"question_text"`
	QuestionAudioURL *string `json:"question_audio_url"`
	Language         string  `json:"language"`
}

// Service is the question queue manager.
type Service struct {
	store  Store
	pub    realtime.Publisher
	strict bool
	now    func() time.Time
}

// NewService creates a queue manager. With strict set, statuses outside the four moderation
// states are rejected.
func NewService(store Store, pub realtime.Publisher, strict bool) *Service {
	return &Service{
		store:  store,
		pub:    realtime.OrDiscard(pub),
		strict: strict,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates in, assigns the next queue position and stores a pending question.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Question, error) {
	rawEventID := strings.TrimSpace(in.EventID)
	name := strings.TrimSpace(in.ParticipantName)
	text := strings.TrimSpace(in.QuestionText)
	if rawEventID == "" || name == "" || text == "" {
		return nil, apperr.InvalidInput(MsgMissingFields)
	}
	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		return nil, apperr.NotFound(MsgEventNotFound)
	}

	q := &models.Question{
		ID:               uuid.New(),
		EventID:          eventID,
		ParticipantName:  name,
		ParticipantEmail: optional(in.ParticipantEmail),
		QuestionText:     text,
		QuestionAudioURL: optional(in.QuestionAudioURL),
		Language:         lang.OrDefault(in.Language),
		Status:           models.QuestionPending,
		SubmittedAt:      s.now(),
	}
	if err := s.store.Create(ctx, q); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound(MsgEventNotFound)
		}
		return nil, apperr.Internal("create question", err)
	}
	s.pub.Publish(q.EventID, realtime.QuestionSubmitted, q)
	return q, nil
}

// List returns an event's questions ordered by (queue_position, submitted_at). statusFilter
// is a comma-separated list of statuses; blank means all.
func (s *Service) List(ctx context.Context, eventID, statusFilter string) ([]models.Question, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, apperr.InvalidInput(MsgEventIDRequired)
	}
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, apperr.InvalidInput(MsgInvalidEventID)
	}
	statuses, err := parseStatusFilter(statusFilter, s.strict)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByEvent(ctx, id, statuses)
	if err != nil {
		return nil, apperr.Internal("list questions", err)
	}
	return list, nil
}

// Get returns one question.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("get question", err)
	}
	return q, nil
}

// Update applies a moderator patch. Entering "answered" stamps answered_at.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p models.QuestionPatch) (*models.Question, error) {
	p.AnsweredAt = nil
	if p.Empty() {
		return nil, apperr.InvalidInput(MsgNoFields)
	}
	if err := enterStatus(&p, s.now(), s.strict); err != nil {
		return nil, err
	}
	q, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, notFoundOrInternal("update question", err)
	}
	s.pub.Publish(q.EventID, realtime.QuestionUpdated, q)
	return q, nil
}

// Moderate moves a question to the status named by a moderation verb.
func (s *Service) Moderate(ctx context.Context, id uuid.UUID, verb string) (*models.Question, error) {
	status, ok := StatusForAction(verb)
	if !ok {
		return nil, apperr.InvalidInput("Unknown moderation action")
	}
	return s.Update(ctx, id, models.QuestionPatch{Status: &status})
}

// Delete removes a question and returns the deleted snapshot.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	q, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal("delete question", err)
	}
	s.pub.Publish(q.EventID, realtime.QuestionDeleted, map[string]uuid.UUID{"id": q.ID})
	return q, nil
}

// Stats counts an event's questions per status.
func (s *Service) Stats(ctx context.Context, eventID uuid.UUID) (models.QuestionStats, error) {
	counts, err := s.store.CountByStatus(ctx, eventID)
	if err != nil {
		return models.QuestionStats{}, apperr.Internal("count questions", err)
	}
	st := models.QuestionStats{
		Pending:  counts[models.QuestionPending],
		Approved: counts[models.QuestionApproved],
		Declined: counts[models.QuestionDeclined],
		Answered: counts[models.QuestionAnswered],
	}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func notFoundOrInternal(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound(MsgNotFound)
	}
	return apperr.Internal(op, err)
}
