// Package main runs the standalone transcription worker: it drains the Redis job queue,
// transcribes each segment and records it in the event's session feed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/liveqa/config"
	"github.com/aura-webinar/liveqa/internal/realtime"
	"github.com/aura-webinar/liveqa/internal/server"
	"github.com/aura-webinar/liveqa/internal/worker"
	"github.com/aura-webinar/liveqa/pkg/queue"
	"github.com/aura-webinar/liveqa/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if !cfg.Redis.Enabled() {
		logger.Fatal("worker requires REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := server.OpenStores(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer stores.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client := server.NewS3(ctx, cfg.AWS, logger)
	// The worker has no sockets: notifications go straight to Redis for the API instances.
	services := server.NewServices(server.Deps{
		Events:          stores.Events,
		Questions:       stores.Questions,
		Sessions:        stores.Sessions,
		Transcriber:     server.NewTranscriber(cfg.Transcription, s3Client, logger),
		Logger:          logger,
		TargetLanguages: cfg.Transcription.TargetLanguages,
		StrictStatus:    cfg.Queue.StrictStatus,
		Publisher:       realtime.NewRedisPubSub(rdb.Client, logger),
	})

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewTranscriptionProcessor(jobQueue, services.Transcription, logger)
	logger.Info("transcription worker started", zap.String("queue", queue.QueueTranscriptions))
	processor.Run(ctx)
	logger.Info("transcription worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
