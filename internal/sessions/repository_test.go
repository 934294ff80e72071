package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/testsupport"
)

func TestRepositoryLatestBreaksTiesByInsertion(t *testing.T) {
	pool := testsupport.OpenPostgres(t)
	repo := NewRepository(pool)
	ctx := context.Background()
	eventID := testsupport.InsertEvent(t, pool)

	at := time.Now().UTC().Truncate(time.Microsecond)
	record := func(speaker string, started time.Time) *models.AudioSession {
		a := &models.AudioSession{ID: uuid.New(), EventID: eventID, SpeakerName: speaker, StartedAt: started}
		require.NoError(t, repo.Create(ctx, a))
		return a
	}
	record("early", at.Add(-time.Minute))
	record("first", at)
	second := record("second", at)

	latest, err := repo.ListByEvent(ctx, eventID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, second.ID, latest[0].ID)

	all, err := repo.ListByEvent(ctx, eventID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"second", "first", "early"},
		[]string{all[0].SpeakerName, all[1].SpeakerName, all[2].SpeakerName})

	n, err := repo.CountByEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRepositoryCreateUnknownEvent(t *testing.T) {
	repo := NewRepository(testsupport.OpenPostgres(t))
	err := repo.Create(context.Background(), &models.AudioSession{
		ID: uuid.New(), EventID: uuid.New(), SpeakerName: "Anna", StartedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
