package questions

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/pkg/response"
)

// Handler handles question queue HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a questions handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /questions?eventId=&status=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("eventId"), c.Query("status"))
	if err != nil {
		response.Error(c, h.logger, "list questions", err, "Failed to fetch questions")
		return
	}
	response.OK(c, list)
}

// Create handles POST /questions (attendee submits a question).
func (h *Handler) Create(c *gin.Context) {
	var req SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, MsgMissingFields)
		return
	}
	q, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, "create question", err, "Failed to create question")
		return
	}
	h.logger.Debug("question submitted",
		zap.String("event_id", q.EventID.String()),
		zap.String("question_id", q.ID.String()),
		zap.Int("queue_position", q.QueuePosition))
	response.Created(c, q)
}

// GetByID handles GET /questions/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	q, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, "get question", err, "Failed to fetch question")
		return
	}
	response.OK(c, q)
}

// Update handles PUT /questions/:id (approve, decline, answer, reorder).
func (h *Handler) Update(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	var patch models.QuestionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	q, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, h.logger, "update question", err, "Failed to update question")
		return
	}
	response.OK(c, q)
}

// Delete handles DELETE /questions/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	if _, err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, h.logger, "delete question", err, "Failed to delete question")
		return
	}
	response.Message(c, "Question deleted successfully")
}

func questionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, MsgNotFound)
		return uuid.Nil, false
	}
	return id, true
}
