package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/realtime"
	"github.com/aura-webinar/liveqa/internal/testsupport"
)

func newTestService(t *testing.T) (*Service, *testsupport.Recorder) {
	t.Helper()
	rec := &testsupport.Recorder{}
	db := testsupport.OpenDB(t)
	return NewService(db.Events, rec).WithClock(testsupport.NewClock().Now), rec
}

func validInput(code string) CreateInput {
	return CreateInput{
		Code: code, Title: "Quarterly all-hands", OrganizerName: "Ala Nowak", OrganizerEmail: "ala@example.com",
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	e, err := svc.Create(context.Background(), validInput(" e1 "))
	require.NoError(t, err)

	assert.Equal(t, "E1", e.Code)
	assert.Equal(t, models.EventActive, e.Status)
	assert.Equal(t, "en", e.Language)
	assert.Equal(t, DefaultMaxParticipants, e.MaxParticipants)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestCreateKeepsLanguageLabel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	in := validInput("PL1")
	in.Language = "polish"
	e, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "polish", e.Language)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "polish", got.Language)

	english := "English"
	got, err = svc.Update(ctx, e.ID, models.EventPatch{Language: &english})
	require.NoError(t, err)
	assert.Equal(t, "English", got.Language)
}

func TestCreateDuplicateCodeConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validInput("E1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput("E1"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, MsgCodeExists, apperr.MessageOf(err, ""))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(in *CreateInput){
		"missing code":      func(in *CreateInput) { in.Code = "  " },
		"missing title":     func(in *CreateInput) { in.Title = "" },
		"missing organizer": func(in *CreateInput) { in.OrganizerName = "" },
		"missing email":     func(in *CreateInput) { in.OrganizerEmail = "" },
		"zero capacity": func(in *CreateInput) {
			zero := 0
			in.MaxParticipants = &zero
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput("OK1")
			mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.True(t, apperr.Is(err, apperr.KindInvalidInput), "got %v", err)
		})
	}
}

func TestListNewestFirstAndFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first, err := svc.Create(ctx, validInput("A1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validInput("B2"))
	require.NoError(t, err)

	list, err := svc.List(ctx, models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	byCode, err := svc.List(ctx, models.EventFilter{Code: "a1"})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, first.ID, byCode[0].ID)

	ended, err := svc.List(ctx, models.EventFilter{Status: models.EventEnded})
	require.NoError(t, err)
	assert.Empty(t, ended)
}

func TestUpdateStampsAndPublishes(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, validInput("E1"))
	require.NoError(t, err)

	paused := models.EventPaused
	lng := "pl"
	got, err := svc.Update(ctx, e.ID, models.EventPatch{Status: &paused, Language: &lng})
	require.NoError(t, err)
	assert.Equal(t, models.EventPaused, got.Status)
	assert.Equal(t, "pl", got.Language)
	assert.True(t, got.UpdatedAt.After(e.UpdatedAt))
	assert.Equal(t, []string{realtime.EventUpdated}, rec.Names())
}

func TestUpdateRejectsEmptyAndUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, validInput("E1"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, e.ID, models.EventPatch{})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	assert.Equal(t, MsgNoFields, apperr.MessageOf(err, ""))

	bogus := models.EventStatus("archived")
	_, err = svc.Update(ctx, e.ID, models.EventPatch{Status: &bogus})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	title := "x"
	_, err = svc.Update(ctx, uuid.New(), models.EventPatch{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, MsgNotFound, apperr.MessageOf(err, ""))
}

func TestDeleteReturnsSnapshot(t *testing.T) {
	svc, rec := newTestService(t)
	ctx := context.Background()
	e, err := svc.Create(ctx, validInput("E1"))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Code, deleted.Code)
	assert.Equal(t, []string{realtime.EventDeleted}, rec.Names())

	_, err = svc.Delete(ctx, e.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.Exists(ctx, e.ID), apperr.KindNotFound))
}

func TestNewCodeIsUnused(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	code, err := svc.NewCode(ctx)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	in := validInput(code)
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)
}

func TestStatsCountsPerStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, code := range []string{"A1", "B2", "C3"} {
		_, err := svc.Create(ctx, validInput(code))
		require.NoError(t, err)
	}
	list, err := svc.List(ctx, models.EventFilter{Code: "C3"})
	require.NoError(t, err)
	ended := models.EventEnded
	_, err = svc.Update(ctx, list[0].ID, models.EventPatch{Status: &ended})
	require.NoError(t, err)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RegistryStats{Total: 3, Active: 2, Ended: 1}, *st)
}
