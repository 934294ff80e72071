package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
)

const sessionColumns = `id, event_id, speaker_name, audio_url, transcription, translation_pl, translation_en, started_at`

// SessionStore persists the append-only audio session log.
type SessionStore struct {
	db *sql.DB
}

func scanSession(row rowScanner) (*models.AudioSession, error) {
	var (
		a           models.AudioSession
		id, eventID string
		started     int64
	)
	err := row.Scan(&id, &eventID, &a.SpeakerName, &a.AudioURL, &a.Transcription, &a.TranslationPL, &a.TranslationEN, &started)
	if err != nil {
		return nil, notFound(err)
	}
	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	if a.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	a.StartedAt = fromNanos(started)
	return &a, nil
}

// Create inserts a session. A missing event yields apperr.ErrNotFound.
func (s *SessionStore) Create(ctx context.Context, a *models.AudioSession) error {
	const q = `INSERT INTO audio_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, a.ID.String(), a.EventID.String(), a.SpeakerName, a.AudioURL,
		a.Transcription, a.TranslationPL, a.TranslationEN, toNanos(a.StartedAt))
	if isForeignKeyViolation(err) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert audio session: %w", err)
	}
	return nil
}

// ListByEvent returns the event's sessions, newest first. limit <= 0 means no limit.
func (s *SessionStore) ListByEvent(ctx context.Context, eventID uuid.UUID, limit int) ([]models.AudioSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM audio_sessions
		WHERE event_id = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, q, eventID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.AudioSession, 0)
	for rows.Next() {
		a, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// CountByEvent returns the number of sessions recorded for an event.
func (s *SessionStore) CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audio_sessions WHERE event_id = ?`, eventID.String()).Scan(&n)
	return n, err
}
