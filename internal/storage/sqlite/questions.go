package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
)

const questionColumns = `id, event_id, participant_name, participant_email, question_text, question_audio_url, language, status, queue_position, submitted_at, answered_at`

// nextPositionSQL bumps the event's queue sequence past every active position and returns it.
const nextPositionSQL = `UPDATE events
	SET queue_seq = MAX(queue_seq, COALESCE((
		SELECT MAX(queue_position) FROM questions
		WHERE event_id = ?1 AND status IN ('pending', 'approved')), 0)) + 1
	WHERE id = ?1
	RETURNING queue_seq`

// QuestionStore persists questions.
type QuestionStore struct {
	db *sql.DB
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var (
		q               models.Question
		id, eventID     string
		status          string
		email, audioURL sql.NullString
		submitted       int64
		answered        sql.NullInt64
	)
	err := row.Scan(&id, &eventID, &q.ParticipantName, &email, &q.QuestionText, &audioURL,
		&q.Language, &status, &q.QueuePosition, &submitted, &answered)
	if err != nil {
		return nil, notFound(err)
	}
	if q.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse question id: %w", err)
	}
	if q.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if email.Valid {
		q.ParticipantEmail = &email.String
	}
	if audioURL.Valid {
		q.QuestionAudioURL = &audioURL.String
	}
	q.Status = models.QuestionStatus(status)
	q.SubmittedAt = fromNanos(submitted)
	if answered.Valid {
		t := fromNanos(answered.Int64)
		q.AnsweredAt = &t
	}
	return &q, nil
}

// Create assigns q.QueuePosition and inserts q in one transaction. A missing event yields
// apperr.ErrNotFound.
func (s *QuestionStore) Create(ctx context.Context, q *models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pos int
	if err := tx.QueryRowContext(ctx, nextPositionSQL, q.EventID.String()).Scan(&pos); err != nil {
		return notFound(err)
	}

	const insert = `INSERT INTO questions (` + questionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insert, q.ID.String(), q.EventID.String(), q.ParticipantName, q.ParticipantEmail,
		q.QuestionText, q.QuestionAudioURL, q.Language, string(q.Status), pos, toNanos(q.SubmittedAt), nullNanos(q.AnsweredAt))
	if isForeignKeyViolation(err) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	q.QueuePosition = pos
	return nil
}

// GetByID returns a question by ID.
func (s *QuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id.String()))
}

// ListByEvent returns the event's questions in queue order. An empty statuses slice means all.
func (s *QuestionStore) ListByEvent(ctx context.Context, eventID uuid.UUID, statuses []models.QuestionStatus) ([]models.Question, error) {
	filter := make([]string, 0, len(statuses))
	for _, st := range statuses {
		filter = append(filter, string(st))
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + questionColumns + ` FROM questions
		WHERE event_id = ?1
		  AND (json_array_length(?2) = 0 OR status IN (SELECT value FROM json_each(?2)))
		ORDER BY queue_position ASC, submitted_at ASC`
	rows, err := s.db.QueryContext(ctx, q, eventID.String(), string(raw))
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
func (s *QuestionStore) Update(ctx context.Context, id uuid.UUID, p models.QuestionPatch) (*models.Question, error) {
	const q = `UPDATE questions SET
			status = COALESCE(?2, status),
			queue_position = COALESCE(?3, queue_position),
			answered_at = COALESCE(?4, answered_at)
		WHERE id = ?1
		RETURNING ` + questionColumns
	var status *string
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}
	return scanQuestion(s.db.QueryRowContext(ctx, q, id.String(), status, p.QueuePosition, nullNanos(p.AnsweredAt)))
}

// Delete removes a question and returns the deleted row.
func (s *QuestionStore) Delete(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return scanQuestion(s.db.QueryRowContext(ctx, `DELETE FROM questions WHERE id = ? RETURNING `+questionColumns, id.String()))
}

// CountByStatus returns the number of the event's questions per status.
func (s *QuestionStore) CountByStatus(ctx context.Context, eventID uuid.UUID) (map[models.QuestionStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM questions WHERE event_id = ? GROUP BY status`, eventID.String())
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
