package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
)

const eventColumns = `id, code, title, description, organizer_name, organizer_email, language, max_participants, status, created_at, updated_at`

// EventStore persists events.
type EventStore struct {
	db *sql.DB
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e                models.Event
		id, status       string
		created, updated int64
	)
	err := row.Scan(&id, &e.Code, &e.Title, &e.Description, &e.OrganizerName, &e.OrganizerEmail,
		&e.Language, &e.MaxParticipants, &status, &created, &updated)
	if err != nil {
		return nil, notFound(err)
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	e.Status = models.EventStatus(status)
	e.CreatedAt = fromNanos(created)
	e.UpdatedAt = fromNanos(updated)
	return &e, nil
}

// Create inserts e. A duplicate code yields apperr.ErrConflict.
func (s *EventStore) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, code, title, description, organizer_name, organizer_email, language, max_participants, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, e.ID.String(), e.Code, e.Title, e.Description, e.OrganizerName,
		e.OrganizerEmail, e.Language, e.MaxParticipants, string(e.Status), toNanos(e.CreatedAt), toNanos(e.UpdatedAt))
	if isUniqueViolation(err) {
		return apperr.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns an event by ID.
func (s *EventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id.String()))
}

// CodeExists reports whether an event already uses code.
func (s *EventStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE code = ?)`, code).Scan(&exists)
	return exists, err
}

// List returns events matching f, newest first.
func (s *EventStore) List(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE (?1 = '' OR status = ?1) AND (?2 = '' OR code = ?2)
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, string(f.Status), f.Code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update applies the allow-listed fields of p and returns the updated row.
func (s *EventStore) Update(ctx context.Context, id uuid.UUID, p models.EventPatch) (*models.Event, error) {
	const q = `UPDATE events SET
			title = COALESCE(?2, title),
			description = COALESCE(?3, description),
			status = COALESCE(?4, status),
			language = COALESCE(?5, language),
			max_participants = COALESCE(?6, max_participants),
			updated_at = ?7
		WHERE id = ?1
		RETURNING ` + eventColumns
	var status *string
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}
	return scanEvent(s.db.QueryRowContext(ctx, q, id.String(), p.Title, p.Description, status,
		p.Language, p.MaxParticipants, toNanos(p.UpdatedAt)))
}

// Delete removes an event (questions and sessions cascade) and returns the deleted row.
func (s *EventStore) Delete(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(s.db.QueryRowContext(ctx, `DELETE FROM events WHERE id = ? RETURNING `+eventColumns, id.String()))
}

// CountByStatus returns the number of events per status.
func (s *EventStore) CountByStatus(ctx context.Context) (map[models.EventStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM events GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[models.EventStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.EventStatus(status)] = n
	}
	return counts, rows.Err()
}
