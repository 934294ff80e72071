// Package server assembles the HTTP API: services over the configured stores, the
// realtime hub and the gin router with its middleware.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/analytics"
	"github.com/aura-webinar/liveqa/internal/events"
	"github.com/aura-webinar/liveqa/internal/middleware"
	"github.com/aura-webinar/liveqa/internal/questions"
	"github.com/aura-webinar/liveqa/internal/realtime"
	"github.com/aura-webinar/liveqa/internal/sessions"
	"github.com/aura-webinar/liveqa/internal/transcription"
	"github.com/aura-webinar/liveqa/internal/uploads"
	"github.com/aura-webinar/liveqa/pkg/response"
)

// Deps are the collaborators the router is built from. Jobs and Uploads are optional and
// must be left nil (not a typed nil pointer) when the backing service is not configured.
type Deps struct {
	Events      events.Store
	Questions   questions.Store
	Sessions    sessions.Store
	Transcriber transcription.Transcriber
	Jobs        transcription.JobQueue
	Uploads     uploads.Bucket
	DeadLetters DeadLetterCounter
	Hub         *realtime.Hub
	Publisher   realtime.Publisher // overrides Hub for processes without sockets
	Logger      *zap.Logger

	TargetLanguages    []string
	StrictStatus       bool
	SubmitRatePerMin   int
	CORSAllowedOrigins string
}

// DeadLetterCounter reports transcription jobs that exhausted their retries.
type DeadLetterCounter interface {
	DeadLetters(ctx context.Context) (int64, error)
}

// Services are the domain services behind the router, exposed for the in-process worker.
type Services struct {
	Events        *events.Service
	Questions     *questions.Service
	Sessions      *sessions.Service
	Transcription *transcription.Service
}

// NewServices wires the services over d's stores, publishing to d.Hub.
func NewServices(d Deps) *Services {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pub := d.Publisher
	if pub == nil && d.Hub != nil {
		pub = d.Hub
	}
	eventSvc := events.NewService(d.Events, pub)
	sessionSvc := sessions.NewService(d.Sessions, pub)
	return &Services{
		Events:        eventSvc,
		Questions:     questions.NewService(d.Questions, pub, d.StrictStatus),
		Sessions:      sessionSvc,
		Transcription: transcription.NewService(eventSvc, sessionSvc, d.Transcriber, d.TargetLanguages, logger),
	}
}

// NewRouter builds the gin engine serving the JSON API and the notification socket.
func NewRouter(d Deps, svc *Services) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hub := d.Hub
	if hub == nil {
		hub = realtime.NewHub(logger, nil, nil)
	}

	eventHandler := events.NewHandler(svc.Events, logger)
	questionHandler := questions.NewHandler(svc.Questions, logger)
	sessionHandler := sessions.NewHandler(svc.Sessions, logger)
	transcriptionHandler := transcription.NewHandler(svc.Transcription, d.Jobs, logger)
	statsHandler := analytics.NewHandler(svc.Events, svc.Questions, svc.Sessions, hub, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", health(d.DeadLetters, logger))

	// Event registry
	router.GET("/events", eventHandler.List)
	router.POST("/events", eventHandler.Create)
	router.GET("/events/:id", eventHandler.GetByID)
	router.PUT("/events/:id", eventHandler.Update)
	router.DELETE("/events/:id", eventHandler.Delete)
	router.GET("/events/:id/stats", statsHandler.GetByEvent)
	router.GET("/event-codes", eventHandler.NewCode)
	router.GET("/stats", eventHandler.Stats)

	// Question queue
	submit := []gin.HandlerFunc{questionHandler.Create}
	if d.SubmitRatePerMin > 0 {
		limiter := middleware.NewRateLimiter(d.SubmitRatePerMin, d.SubmitRatePerMin)
		submit = append([]gin.HandlerFunc{limiter.Handler()}, submit...)
	}
	router.GET("/questions", questionHandler.List)
	router.POST("/questions", submit...)
	router.GET("/questions/:id", questionHandler.GetByID)
	router.PUT("/questions/:id", questionHandler.Update)
	router.DELETE("/questions/:id", questionHandler.Delete)

	// Live session feed
	router.GET("/audio-sessions", sessionHandler.List)
	router.POST("/audio-sessions", sessionHandler.Create)
	router.GET("/transcription", sessionHandler.List)
	router.POST("/transcription", transcriptionHandler.Process)
	router.POST("/transcription/jobs", transcriptionHandler.Enqueue)

	if d.Uploads != nil {
		uploadHandler := uploads.NewHandler(d.Uploads, svc.Events.Exists, logger)
		router.POST("/audio-uploads", uploadHandler.Create)
		router.POST("/audio-uploads/file", uploadHandler.UploadFile)
		router.GET("/audio-uploads/download-url", uploadHandler.DownloadURL)
	}

	router.GET("/ws", realtime.ServeWs(hub, logger, svc.Events.Exists))

	return router
}

func health(dlq DeadLetterCounter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dlq == nil {
			response.OK(c, gin.H{"status": "ok"})
			return
		}
		n, err := dlq.DeadLetters(c.Request.Context())
		if err != nil {
			logger.Warn("health: job queue unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "job queue unreachable"})
			return
		}
		response.OK(c, gin.H{"status": "ok", "dead_letters": n})
	}
}
