package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/transcription"
	"github.com/aura-webinar/liveqa/pkg/queue"
)

// JobSource is the job queue the worker drains.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// JobRunner executes one transcription payload.
type JobRunner interface {
	ProcessJob(ctx context.Context, p queue.TranscriptionPayload) (*transcription.Outcome, error)
}

// TranscriptionProcessor processes transcription jobs: transcribe, translate, record the session.
type TranscriptionProcessor struct {
	jobs    JobSource
	runner  JobRunner
	backoff time.Duration
	logger  *zap.Logger
}

// NewTranscriptionProcessor creates a transcription job processor.
func NewTranscriptionProcessor(jobs JobSource, runner JobRunner, logger *zap.Logger) *TranscriptionProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionProcessor{jobs: jobs, runner: runner, backoff: queue.RetryBackoff, logger: logger}
}

// WithBackoff overrides the pause after a failed job.
func (p *TranscriptionProcessor) WithBackoff(d time.Duration) *TranscriptionProcessor {
	p.backoff = d
	return p
}

// Process executes one job. Jobs that can never succeed (bad payload, unknown event) are
// dropped with a warning and report no error.
func (p *TranscriptionProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := job.Transcription()
	if err != nil {
		p.logger.Warn("dropping malformed job", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	out, err := p.runner.ProcessJob(ctx, payload)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindInvalidInput, apperr.KindNotFound:
			p.logger.Warn("dropping transcription job", zap.String("job_id", job.ID), zap.Error(err))
			return nil
		}
		return err
	}
	p.logger.Info("transcription job completed",
		zap.String("job_id", job.ID),
		zap.String("event_id", payload.EventID.String()),
		zap.String("session_id", out.Session.ID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *TranscriptionProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("transcription worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.jobs.Retry(context.WithoutCancel(ctx), job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *TranscriptionProcessor) sleep(ctx context.Context) {
	if p.backoff <= 0 {
		return
	}
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
