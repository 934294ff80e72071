package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/config"
	"github.com/aura-webinar/liveqa/internal/events"
	"github.com/aura-webinar/liveqa/internal/questions"
	"github.com/aura-webinar/liveqa/internal/sessions"
	"github.com/aura-webinar/liveqa/internal/storage/sqlite"
	"github.com/aura-webinar/liveqa/internal/transcription"
	"github.com/aura-webinar/liveqa/pkg/database"
	"github.com/aura-webinar/liveqa/pkg/storage"
)

const audioFetchTimeout = 2 * time.Minute

// Stores are the persistence ports for one database.
type Stores struct {
	Events    events.Store
	Questions questions.Store
	Sessions  sessions.Store
	Close     func()
}

// OpenStores connects to the configured database, applies migrations and returns its stores.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		s := sqlite.New(db)
		return &Stores{Events: s.Events, Questions: s.Questions, Sessions: s.Sessions, Close: func() { _ = db.Close() }}, nil
	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
		if err := database.MigratePostgres(cfg.DSN(), logger); err != nil {
			pool.Close()
			return nil, err
		}
		return &Stores{
			Events:    events.NewRepository(pool),
			Questions: questions.NewRepository(pool),
			Sessions:  sessions.NewRepository(pool),
			Close:     pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewS3 returns the audio bucket client, or nil when AWS is not configured or unreachable.
func NewS3(ctx context.Context, cfg config.AWSConfig, logger *zap.Logger) *storage.S3 {
	if !cfg.Enabled() {
		return nil
	}
	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.Region,
		AccessKeyID:          cfg.AccessKeyID,
		SecretAccessKey:      cfg.SecretAccessKey,
		AudioBucket:          cfg.AudioBucket,
		PresignExpireMinutes: cfg.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Warn("s3 disabled", zap.Error(err))
		return nil
	}
	return s3Client
}

// NewTranscriber selects the speech-to-text implementation. s3Client may be nil.
func NewTranscriber(cfg config.TranscriptionConfig, s3Client *storage.S3, logger *zap.Logger) transcription.Transcriber {
	if cfg.Driver != config.TranscriberOpenAI {
		logger.Info("using canned transcriber", zap.Duration("delay", cfg.Delay))
		return transcription.NewCannedTranscriber(cfg.Delay)
	}
	var objects transcription.ObjectOpener
	if s3Client != nil {
		objects = s3Client
	}
	fetcher := transcription.NewFetcher(&http.Client{Timeout: audioFetchTimeout}, objects)
	logger.Info("using OpenAI transcriber", zap.String("whisper_model", cfg.WhisperModel), zap.String("chat_model", cfg.OpenAIModel))
	return transcription.NewOpenAITranscriber(transcription.OpenAIConfig{
		APIKey:       cfg.OpenAIAPIKey,
		WhisperModel: cfg.WhisperModel,
		ChatModel:    cfg.OpenAIModel,
	}, fetcher, logger)
}
