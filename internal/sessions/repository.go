package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
)

const pgForeignKeyViolation = "23503"

const sessionColumns = `id, event_id, speaker_name, audio_url, transcription, translation_pl, translation_en, started_at`

// Repository handles audio session persistence in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a session repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a session. A missing event yields apperr.ErrNotFound.
func (r *Repository) Create(ctx context.Context, a *models.AudioSession) error {
	const q = `INSERT INTO audio_sessions (` + sessionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, q, a.ID, a.EventID, a.SpeakerName, a.AudioURL,
		a.Transcription, a.TranslationPL, a.TranslationEN, a.StartedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert audio session: %w", err)
	}
	return nil
}

// ListByEvent returns the event's sessions, newest first. limit <= 0 means no limit.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID, limit int) ([]models.AudioSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM audio_sessions WHERE event_id = $1 ORDER BY started_at DESC, seq DESC`
	args := []any{eventID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.AudioSession, 0)
	for rows.Next() {
		var a models.AudioSession
		if err := rows.Scan(&a.ID, &a.EventID, &a.SpeakerName, &a.AudioURL, &a.Transcription,
			&a.TranslationPL, &a.TranslationEN, &a.StartedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CountByEvent returns the number of sessions recorded for an event.
func (r *Repository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audio_sessions WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}
