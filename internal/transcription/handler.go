package transcription

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/pkg/queue"
	"github.com/aura-webinar/liveqa/pkg/response"
)

// JobQueue accepts transcription jobs for the worker.
type JobQueue interface {
	EnqueueTranscription(ctx context.Context, payload queue.TranscriptionPayload) (string, error)
}

// Handler handles the transcription endpoints.
type Handler struct {
	svc    *Service
	jobs   JobQueue
	logger *zap.Logger
}

// NewHandler creates a transcription handler. jobs may be nil when Redis is not configured.
func NewHandler(svc *Service, jobs JobQueue, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, jobs: jobs, logger: logger}
}

// Process handles POST /transcription: transcribe synchronously and append a session.
func (h *Handler) Process(c *gin.Context) {
	var req ProcessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, MsgMissingFields)
		return
	}
	out, err := h.svc.Process(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, "process transcription", err, "Failed to process transcription")
		return
	}
	response.Created(c, out)
}

// Enqueue handles POST /transcription/jobs: validate and hand the segment to the worker.
func (h *Handler) Enqueue(c *gin.Context) {
	if h.jobs == nil {
		response.ServiceUnavailable(c, "Transcription jobs are not enabled")
		return
	}
	var req ProcessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, MsgMissingFields)
		return
	}
	payload, err := h.svc.Job(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.logger, "validate transcription job", err, "Failed to enqueue transcription")
		return
	}
	jobID, err := h.jobs.EnqueueTranscription(c.Request.Context(), payload)
	if err != nil {
		h.logger.Error("enqueue transcription", zap.Error(err))
		response.Internal(c, "Failed to enqueue transcription")
		return
	}
	response.Accepted(c, gin.H{"job_id": jobID, "status": "queued"})
}
