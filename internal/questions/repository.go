package questions

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

const pgForeignKeyViolation = "23503"

const questionColumns = `id, event_id, participant_name, participant_email, question_text, question_audio_url, language, status, queue_position, submitted_at, answered_at`

// nextPositionSQL bumps the event's queue sequence past every active position and returns it.
// The row lock on the event serializes concurrent submissions.
const nextPositionSQL = `UPDATE events
	SET queue_seq = GREATEST(queue_seq, COALESCE((
		SELECT MAX(queue_position) FROM questions
		WHERE event_id = $1 AND status IN ('pending', 'approved')), 0)) + 1
	WHERE id = $1
	RETURNING queue_seq`

// Repository handles question persistence in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a questions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	var status string
	err := row.Scan(&q.ID, &q.EventID, &q.ParticipantName, &q.ParticipantEmail, &q.QuestionText,
		&q.QuestionAudioURL, &q.Language, &status, &q.QueuePosition, &q.SubmittedAt, &q.AnsweredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	q.Status = models.QuestionStatus(status)
	return &q, nil
}

// Create assigns q.QueuePosition and inserts q in one transaction. A missing event yields
// apperr.ErrNotFound.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	var pos int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, nextPositionSQL, q.EventID).Scan(&pos); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("next queue position: %w", err)
		}
		const insert = `INSERT INTO questions (` + questionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		_, err := tx.Exec(ctx, insert, q.ID, q.EventID, q.ParticipantName, q.ParticipantEmail, q.QuestionText,
			q.QuestionAudioURL, q.Language, string(q.Status), pos, q.SubmittedAt, q.AnsweredAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	q.QueuePosition = pos
	return nil
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// ListByEvent returns the event's questions in queue order. An empty statuses slice means all.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID, statuses []models.QuestionStatus) ([]models.Question, error) {
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}
	const q = `SELECT ` + questionColumns + ` FROM questions
		WHERE event_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY queue_position ASC, submitted_at ASC`
	rows, err := r.pool.Query(ctx, q, eventID, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Question, 0)
	for rows.Next() {
		item, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *item)
	}
	return list, rows.Err()
}

// Update applies the moderator patch and returns the updated row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p models.QuestionPatch) (*models.Question, error) {
	const q = `UPDATE questions SET
			status = COALESCE($2, status),
			queue_position = COALESCE($3, queue_position),
			answered_at = COALESCE($4, answered_at)
		WHERE id = $1
		RETURNING ` + questionColumns
	var status *string
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}
	return scanQuestion(r.pool.QueryRow(ctx, q, id, status, p.QueuePosition, p.AnsweredAt))
}

// Delete removes a question and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `DELETE FROM questions WHERE id = $1 RETURNING `+questionColumns, id))
}

// CountByStatus returns the number of the event's questions per status.
func (r *Repository) CountByStatus(ctx context.Context, eventID uuid.UUID) (map[models.QuestionStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM questions WHERE event_id = $1 GROUP BY status`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[models.QuestionStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.QuestionStatus(status)] = n
	}
	return counts, rows.Err()
}
