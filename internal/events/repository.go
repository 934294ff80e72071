package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
)

const pgUniqueViolation = "23505"

const eventColumns = `id, code, title, description, organizer_name, organizer_email, language, max_participants, status, created_at, updated_at`

// Repository handles event persistence in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var status string
	err := row.Scan(&e.ID, &e.Code, &e.Title, &e.Description, &e.OrganizerName, &e.OrganizerEmail,
		&e.Language, &e.MaxParticipants, &status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Status = models.EventStatus(status)
	return &e, nil
}

// Create inserts a new event. A duplicate code yields apperr.ErrConflict.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, code, title, description, organizer_name, organizer_email, language, max_participants, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, q, e.ID, e.Code, e.Title, e.Description, e.OrganizerName, e.OrganizerEmail,
		e.Language, e.MaxParticipants, string(e.Status), e.CreatedAt, e.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// CodeExists reports whether an event already uses code.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// List returns events matching f, newest first.
func (r *Repository) List(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR code = $2)
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, string(f.Status), f.Code)
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
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p models.EventPatch) (*models.Event, error) {
	const q = `UPDATE events SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			language = COALESCE($5, language),
			max_participants = COALESCE($6, max_participants),
			updated_at = $7
		WHERE id = $1
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, id, p.Title, p.Description, statusArg(p.Status),
		p.Language, p.MaxParticipants, p.UpdatedAt))
}

// Delete removes an event (its questions and sessions cascade) and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `DELETE FROM events WHERE id = $1 RETURNING `+eventColumns, id))
}

// CountByStatus returns the number of events per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[models.EventStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM events GROUP BY status`)
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

func statusArg(s *models.EventStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
