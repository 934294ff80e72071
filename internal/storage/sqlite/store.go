// Package sqlite implements the event, question and session stores on an embedded
// modernc SQLite database. Timestamps are stored as UTC unix nanoseconds.
package sqlite

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aura-webinar/liveqa/internal/apperr"
)

const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintForeignKey = 787
)

// DB bundles the three stores over one handle.
type DB struct {
	Events    *EventStore
	Questions *QuestionStore
	Sessions  *SessionStore
}

// New wraps an open, migrated handle (see database.OpenSQLite).
func New(db *sql.DB) *DB {
	return &DB{
		Events:    &EventStore{db: db},
		Questions: &QuestionStore{db: db},
		Sessions:  &SessionStore{db: db},
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toNanos(*t), Valid: true}
}

func sqliteCode(err error) int {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		return coder.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return sqliteCode(err) == sqliteConstraintUnique || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return sqliteCode(err) == sqliteConstraintForeignKey || strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	return err
}
