package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/pkg/response"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /events?status=&code=.
func (h *Handler) List(c *gin.Context) {
	f := models.EventFilter{
		Status: models.EventStatus(c.Query("status")),
		Code:   c.Query("code"),
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, h.logger, "list events", err, "Failed to fetch events")
		return
	}
	response.OK(c, list)
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, MsgMissingFields)
		return
	}
	e, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, "create event", err, "Failed to create event")
		return
	}
	h.logger.Info("event created", zap.String("event_id", e.ID.String()), zap.String("code", e.Code))
	response.Created(c, e)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, "get event", err, "Failed to fetch event")
		return
	}
	response.OK(c, e)
}

// Update handles PUT /events/:id (title, description, status, language, max_participants).
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}
	var patch models.EventPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, h.logger, "update event", err, "Failed to update event")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}
	e, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.logger, "delete event", err, "Failed to delete event")
		return
	}
	h.logger.Info("event deleted", zap.String("event_id", e.ID.String()))
	response.Message(c, "Event deleted successfully")
}

// NewCode handles GET /event-codes (a free join code for the create form).
func (h *Handler) NewCode(c *gin.Context) {
	code, err := h.svc.NewCode(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, "new event code", err, "Failed to generate event code")
		return
	}
	response.OK(c, gin.H{"code": code})
}

// Stats handles GET /stats (events per status).
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, "event stats", err, "Failed to fetch stats")
		return
	}
	response.OK(c, st)
}

// eventID parses the :id param. Ids that cannot exist are reported as not found.
func (h *Handler) eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, MsgNotFound)
		return uuid.Nil, false
	}
	return id, true
}
