package analytics

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/pkg/response"
)

// EventChecker reports apperr NotFound for unknown events.
type EventChecker interface {
	Exists(ctx context.Context, id uuid.UUID) error
}

// QuestionCounter counts an event's questions per status.
type QuestionCounter interface {
	Stats(ctx context.Context, eventID uuid.UUID) (models.QuestionStats, error)
}

// SessionCounter counts an event's recorded sessions.
type SessionCounter interface {
	Count(ctx context.Context, eventID uuid.UUID) (int, error)
}

// ViewerCounter reports connected WebSocket viewers for an event.
type ViewerCounter interface {
	ViewerCount(eventID uuid.UUID) int
}

// Handler handles GET /events/:id/stats.
type Handler struct {
	events    EventChecker
	questions QuestionCounter
	sessions  SessionCounter
	viewers   ViewerCounter
	logger    *zap.Logger
}

// NewHandler creates an event stats handler. viewers may be nil.
func NewHandler(events EventChecker, questions QuestionCounter, sessions SessionCounter, viewers ViewerCounter, logger *zap.Logger) *Handler {
	return &Handler{events: events, questions: questions, sessions: sessions, viewers: viewers, logger: logger}
}

// GetByEvent handles GET /events/:id/stats for the organizer dashboard.
func (h *Handler) GetByEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Event not found")
		return
	}
	ctx := c.Request.Context()

	if err := h.events.Exists(ctx, id); err != nil {
		response.Error(c, h.logger, "event stats", err, "Failed to fetch stats")
		return
	}
	qs, err := h.questions.Stats(ctx, id)
	if err != nil {
		response.Error(c, h.logger, "question stats", err, "Failed to fetch stats")
		return
	}
	sessions, err := h.sessions.Count(ctx, id)
	if err != nil {
		response.Error(c, h.logger, "session stats", err, "Failed to fetch stats")
		return
	}

	st := models.EventStats{EventID: id, Questions: qs, Sessions: sessions}
	if h.viewers != nil {
		st.Viewers = h.viewers.ViewerCount(id)
	}
	response.OK(c, st)
}
