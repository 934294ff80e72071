package testsupport

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/pkg/database"
	"github.com/aura-webinar/liveqa/pkg/utils"
)

// PostgresDSNEnv names the database the pgx repository tests run against.
const PostgresDSNEnv = "LIVEQA_TEST_POSTGRES_DSN"

// OpenPostgres migrates and connects to the database in PostgresDSNEnv, skipping the test when
// it is unset. Packages share the database, so tests scope their rows to their own events.
func OpenPostgres(t testing.TB) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}
	require.NoError(t, database.MigratePostgres(dsn, zap.NewNop()))
	pool, err := database.NewPostgresPool(context.Background(), dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// InsertEvent writes a bare active event with a fresh join code and returns its id.
func InsertEvent(t testing.TB, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	code, err := utils.NewJoinCode()
	require.NoError(t, err)
	id := uuid.New()
	now := time.Now().UTC()
	_, err = pool.Exec(context.Background(),
		`INSERT INTO events (id, code, title, organizer_name, organizer_email, created_at, updated_at)
		VALUES ($1, $2, 'Repository test', 'Ala', 'ala@example.com', $3, $3)`, id, "T"+code, now)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM events WHERE id = $1`, id)
	})
	return id
}
