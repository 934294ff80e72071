// Package main runs the live Q&A HTTP server with WebSocket notifications and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	ctx := context.Background()
	stores, err := server.OpenStores(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer stores.Close()

	deps := server.Deps{
		Events:             stores.Events,
		Questions:          stores.Questions,
		Sessions:           stores.Sessions,
		Logger:             logger,
		TargetLanguages:    cfg.Transcription.TargetLanguages,
		StrictStatus:       cfg.Queue.StrictStatus,
		SubmitRatePerMin:   cfg.Server.SubmitRatePerMin,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}

	var jobQueue *queue.Queue
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
		deps.Hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
		jobQueue = queue.NewQueue(rdb.Client, logger)
		deps.Jobs = jobQueue
		deps.DeadLetters = jobQueue
	} else {
		logger.Info("redis not configured: single-instance notifications, transcription jobs disabled")
		deps.Hub = realtime.NewHub(logger, nil, nil)
	}

	s3Client := server.NewS3(ctx, cfg.AWS, logger)
	if s3Client != nil {
		deps.Uploads = s3Client
	}
	deps.Transcriber = server.NewTranscriber(cfg.Transcription, s3Client, logger)

	services := server.NewServices(deps)
	router := server.NewRouter(deps, services)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process worker so a single node also drains queued transcriptions
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if jobQueue != nil {
		processor := worker.NewTranscriptionProcessor(jobQueue, services.Transcription, logger)
		go processor.Run(workerCtx)
		logger.Info("transcription worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("db", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
