// Package testsupport opens throwaway stores and deterministic clocks for package tests.
package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/storage/sqlite"
	"github.com/aura-webinar/liveqa/pkg/database"
)

// OpenDB returns stores over a fresh migrated in-memory database closed at test end.
func OpenDB(t testing.TB) *sqlite.DB {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), database.MemoryDSN, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.New(db)
}

// Clock is a fake time source that moves forward by Step on every call.
type Clock struct {
	mu   sync.Mutex
	t    time.Time
	Step time.Duration
}

// NewClock starts a clock at a fixed instant, stepping one millisecond per reading.
func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), Step: time.Millisecond}
}

// Now returns the current fake time and advances it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.Step)
	return now
}

// Advance moves the clock forward by d without reading it.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Published is one notification captured by Recorder.
type Published struct {
	EventID uuid.UUID
	Name    string
	Payload interface{}
}

// Recorder is a realtime publisher that keeps every notification.
type Recorder struct {
	mu   sync.Mutex
	msgs []Published
}

// Publish records the notification.
func (r *Recorder) Publish(eventID uuid.UUID, name string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Published{EventID: eventID, Name: name, Payload: payload})
}

// Names returns the recorded notification names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		names = append(names, m.Name)
	}
	return names
}
