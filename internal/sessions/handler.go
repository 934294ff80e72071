package sessions

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/pkg/response"
)

// Handler handles the session feed endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a session feed handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /audio-sessions?eventId=&latest=true. GET /transcription is an alias.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("eventId"), c.Query("latest") == "true")
	if err != nil {
		response.Error(c, h.logger, "list audio sessions", err, "Failed to fetch audio sessions")
		return
	}
	response.OK(c, list)
}

// Create handles POST /audio-sessions.
func (h *Handler) Create(c *gin.Context) {
	var req RecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, MsgMissingFields)
		return
	}
	a, err := h.svc.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, "create audio session", err, "Failed to create audio session")
		return
	}
	response.Created(c, a)
}
