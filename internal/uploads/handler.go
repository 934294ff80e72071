// Package uploads hands out pre-signed S3 URLs so speakers and attendees can upload audio
// directly to the bucket before asking for a transcription.
package uploads

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/pkg/response"
	"github.com/aura-webinar/liveqa/pkg/storage"
)

// Bucket is the audio bucket: signed direct uploads and downloads, and server-side uploads.
type Bucket interface {
	GeneratePresignedUploadURL(ctx context.Context, bucket, key, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error)
	AudioBucket() string
	PresignExpire() time.Duration
}

// EventChecker reports apperr NotFound for unknown events.
type EventChecker func(ctx context.Context, id uuid.UUID) error

// Request is the body of POST /audio-uploads.
type Request struct {
	EventID     string `json:"event_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Ticket is a signed upload slot.
type Ticket struct {
	UploadURL   string `json:"upload_url"`
	AudioURL    string `json:"audio_url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Handler issues audio upload tickets.
type Handler struct {
	s3     Bucket
	check  EventChecker
	logger *zap.Logger
}

// NewHandler creates an upload handler.
func NewHandler(s3 Bucket, check EventChecker, logger *zap.Logger) *Handler {
	return &Handler{s3: s3, check: check, logger: logger}
}

// Create handles POST /audio-uploads.
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.EventID) == "" || strings.TrimSpace(req.Filename) == "" {
		response.BadRequest(c, "Missing required fields: event_id, filename")
		return
	}
	eventID, err := uuid.Parse(strings.TrimSpace(req.EventID))
	if err != nil {
		response.NotFound(c, "Event not found")
		return
	}
	if !storage.ValidateAudioFileType(req.ContentType, req.Filename) {
		response.BadRequest(c, "Unsupported audio type")
		return
	}
	if h.check != nil {
		if err := h.check(c.Request.Context(), eventID); err != nil {
			response.Error(c, h.logger, "check event", err, "Failed to create upload")
			return
		}
	}

	contentType := strings.ToLower(req.ContentType)
	if _, ok := storage.AllowedAudioTypes[contentType]; !ok {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}
	key := storage.AudioKey(eventID.String(), uuid.NewString(), req.Filename)
	expires := h.s3.PresignExpire()
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), h.s3.AudioBucket(), key, contentType, expires)
	if err != nil {
		h.logger.Error("presign audio upload", zap.Error(err))
		response.Internal(c, "Failed to create upload")
		return
	}
	response.Created(c, Ticket{
		UploadURL:   url,
		AudioURL:    storage.ObjectRef(h.s3.AudioBucket(), key),
		Key:         key,
		ContentType: contentType,
		ExpiresIn:   int(expires.Seconds()),
	})
}

// Uploaded describes audio stored through the server.
type Uploaded struct {
	AudioURL    string `json:"audio_url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadFile handles POST /audio-uploads/file (multipart: event_id, file) for clients that
// cannot PUT to the bucket directly.
func (h *Handler) UploadFile(c *gin.Context) {
	eventIDStr := strings.TrimSpace(c.PostForm("event_id"))
	file, err := c.FormFile("file")
	if eventIDStr == "" || err != nil {
		response.BadRequest(c, "Missing required fields: event_id, file")
		return
	}
	eventID, err := uuid.Parse(eventIDStr)
	if err != nil {
		response.NotFound(c, "Event not found")
		return
	}
	if file.Size > storage.MaxAudioFileSize {
		response.BadRequest(c, "Audio file exceeds the 25MB limit")
		return
	}
	headerType := strings.ToLower(file.Header.Get("Content-Type"))
	if !storage.ValidateAudioFileType(headerType, file.Filename) {
		response.BadRequest(c, "Unsupported audio type")
		return
	}
	if h.check != nil {
		if err := h.check(c.Request.Context(), eventID); err != nil {
			response.Error(c, h.logger, "check event", err, "Failed to upload audio")
			return
		}
	}

	contentType := headerType
	if _, ok := storage.AllowedAudioTypes[contentType]; !ok {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}
	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Unreadable upload")
		return
	}
	defer src.Close()

	key := storage.AudioKey(eventID.String(), uuid.NewString(), file.Filename)
	ref, err := h.s3.Upload(c.Request.Context(), key, contentType, src, file.Size)
	if err != nil {
		h.logger.Error("upload audio", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Failed to upload audio")
		return
	}
	h.logger.Info("audio uploaded", zap.String("event_id", eventID.String()), zap.String("key", key), zap.Int64("size", file.Size))
	response.Created(c, Uploaded{AudioURL: ref, Key: key, ContentType: contentType, Size: file.Size})
}

// DownloadURL handles GET /audio-uploads/download-url?ref=s3://... so players can fetch a
// session's original audio.
func (h *Handler) DownloadURL(c *gin.Context) {
	bucket, key, ok := storage.ParseObjectRef(c.Query("ref"))
	if !ok || bucket != h.s3.AudioBucket() {
		response.BadRequest(c, "ref must be an s3:// reference in the audio bucket")
		return
	}
	expires := h.s3.PresignExpire()
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), bucket, key, expires)
	if err != nil {
		h.logger.Error("presign audio download", zap.Error(err))
		response.Internal(c, "Failed to create download URL")
		return
	}
	response.OK(c, gin.H{"download_url": url, "expires_in": int(expires.Seconds())})
}
