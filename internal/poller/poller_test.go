package poller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/pkg/client"
)

type fakeAPI struct {
	mu        sync.Mutex
	event     *models.Event
	questions []models.Question
	latest    *models.AudioSession
	failNext  int
	gotStatus []models.QuestionStatus
}

func (f *fakeAPI) EventByCode(_ context.Context, code string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.event == nil || f.event.Code != code {
		return nil, &client.APIError{Status: http.StatusNotFound, Message: "Event not found"}
	}
	e := *f.event
	return &e, nil
}

func (f *fakeAPI) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.event == nil || f.event.ID != id {
		return nil, &client.APIError{Status: http.StatusNotFound, Message: "Event not found"}
	}
	e := *f.event
	return &e, nil
}

func (f *fakeAPI) ListQuestions(_ context.Context, _ uuid.UUID, statuses ...models.QuestionStatus) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotStatus = statuses
	if f.failNext > 0 {
		f.failNext--
		return nil, errors.New("connection refused")
	}
	return append([]models.Question{}, f.questions...), nil
}

func (f *fakeAPI) LatestSession(context.Context, uuid.UUID) (*models.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return nil, nil
	}
	s := *f.latest
	return &s, nil
}

func (f *fakeAPI) set(fn func(*fakeAPI)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func fastIntervals() Intervals {
	return Intervals{Questions: 5 * time.Millisecond, Session: 5 * time.Millisecond, Event: 5 * time.Millisecond}
}

func newFake() *fakeAPI {
	return &fakeAPI{event: &models.Event{ID: uuid.New(), Code: "ABC123", Status: models.EventActive, UpdatedAt: time.Now()}}
}

func TestJoinUnknownCode(t *testing.T) {
	p := New(newFake(), fastIntervals(), zap.NewNop())
	_, err := p.Join(context.Background(), "NOPE")
	assert.True(t, client.IsNotFound(err))
}

func TestRunRequiresJoin(t *testing.T) {
	p := New(newFake(), fastIntervals(), zap.NewNop())
	assert.Error(t, p.Run(context.Background(), nil))
}

func TestRunMergesChanges(t *testing.T) {
	api := newFake()
	p := New(api, fastIntervals(), zap.NewNop())
	_, err := p.Join(context.Background(), "ABC123")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan Update, 64)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, func(u Update) { updates <- u }) }()

	q := models.Question{ID: uuid.New(), EventID: api.event.ID, Status: models.QuestionPending, QueuePosition: 1}
	api.set(func(f *fakeAPI) { f.questions = []models.Question{q} })
	u := waitFor(t, updates, ChangeQuestions)
	require.Len(t, u.View.Questions, 1)
	assert.Equal(t, q.ID, u.View.Questions[0].ID)

	api.set(func(f *fakeAPI) { f.questions[0].Status = models.QuestionApproved })
	u = waitFor(t, updates, ChangeQuestions)
	assert.Equal(t, models.QuestionApproved, u.View.Questions[0].Status)

	s := models.AudioSession{ID: uuid.New(), EventID: api.event.ID, Transcription: "Welcome"}
	api.set(func(f *fakeAPI) { f.latest = &s })
	u = waitFor(t, updates, ChangeSession)
	assert.Equal(t, "Welcome", u.View.Latest.Transcription)

	api.set(func(f *fakeAPI) {
		f.event.Status = models.EventPaused
		f.event.UpdatedAt = f.event.UpdatedAt.Add(time.Second)
	})
	u = waitFor(t, updates, ChangeEvent)
	assert.Equal(t, models.EventPaused, u.View.Event.Status)

	cancel()
	assert.NoError(t, <-done)
}

func TestRunStopsWhenEventDeleted(t *testing.T) {
	api := newFake()
	p := New(api, fastIntervals(), zap.NewNop())
	_, err := p.Join(context.Background(), "ABC123")
	require.NoError(t, err)

	api.set(func(f *fakeAPI) { f.event = nil })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, p.Run(ctx, nil), ErrEventGone)
}

func TestRunRetriesFailedFetch(t *testing.T) {
	api := newFake()
	api.failNext = 2
	api.questions = []models.Question{{ID: uuid.New(), QueuePosition: 1, Status: models.QuestionApproved}}
	core, logs := observer.New(zapcore.WarnLevel)
	p := New(api, fastIntervals(), zap.New(core)).WithStatuses(models.QuestionApproved)
	_, err := p.Join(context.Background(), "ABC123")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan Update, 64)
	go func() { _ = p.Run(ctx, func(u Update) { updates <- u }) }()

	u := waitFor(t, updates, ChangeQuestions)
	assert.Len(t, u.View.Questions, 1)
	assert.GreaterOrEqual(t, logs.FilterMessage("poll failed, retrying next tick").Len(), 2)

	api.mu.Lock()
	assert.Equal(t, []models.QuestionStatus{models.QuestionApproved}, api.gotStatus)
	api.mu.Unlock()
}

func TestSameQueue(t *testing.T) {
	at := time.Now()
	later := at.Add(time.Second)
	id := uuid.New()
	base := []models.Question{{ID: id, Status: models.QuestionAnswered, QueuePosition: 1, AnsweredAt: &at}}

	assert.True(t, sameQueue(nil, []models.Question{}))
	assert.True(t, sameQueue(base, []models.Question{{ID: id, Status: models.QuestionAnswered, QueuePosition: 1, AnsweredAt: &at}}))
	assert.False(t, sameQueue(base, []models.Question{{ID: id, Status: models.QuestionAnswered, QueuePosition: 1, AnsweredAt: &later}}))
	assert.False(t, sameQueue(base, []models.Question{{ID: id, Status: models.QuestionAnswered, QueuePosition: 2, AnsweredAt: &at}}))
}

func waitFor(t *testing.T, updates <-chan Update, part Change) Update {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-updates:
			if u.Changed.Has(part) {
				return u
			}
		case <-deadline:
			t.Fatalf("no update with change %d", part)
			return Update{}
		}
	}
}
