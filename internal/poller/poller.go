// Package poller keeps a viewer's copy of an event up to date by re-fetching the read
// endpoints on fixed intervals: the question queue, the latest session snapshot and the
// event itself. Failed fetches are logged and simply retried on the next tick.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/pkg/client"
)

// ErrEventGone is returned by Run when the event is deleted while being watched.
var ErrEventGone = errors.New("poller: event no longer exists")

// API is the read side of the live Q&A server.
type API interface {
	EventByCode(ctx context.Context, code string) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListQuestions(ctx context.Context, eventID uuid.UUID, statuses ...models.QuestionStatus) ([]models.Question, error)
	LatestSession(ctx context.Context, eventID uuid.UUID) (*models.AudioSession, error)
}

// Intervals are the refresh periods per resource.
type Intervals struct {
	Questions time.Duration
	Session   time.Duration
	Event     time.Duration
}

// DefaultIntervals match the web views: questions every 3s, the live session every 2s.
func DefaultIntervals() Intervals {
	return Intervals{Questions: 3 * time.Second, Session: 2 * time.Second, Event: 10 * time.Second}
}

// Change flags which parts of a View moved.
type Change uint8

const (
	ChangeEvent Change = 1 << iota
	ChangeQuestions
	ChangeSession
)

// Has reports whether c includes part.
func (c Change) Has(part Change) bool { return c&part != 0 }

// View is the merged local state of one event.
type View struct {
	Event     *models.Event
	Questions []models.Question
	Latest    *models.AudioSession
	UpdatedAt time.Time
}

// Update is delivered to the Run callback after every change.
type Update struct {
	View    View
	Changed Change
}

// Poller watches one event.
type Poller struct {
	api       API
	logger    *zap.Logger
	intervals Intervals
	statuses  []models.QuestionStatus
	now       func() time.Time

	mu   sync.Mutex
	view View
}

// New creates a poller. Zero intervals fall back to DefaultIntervals.
func New(api API, intervals Intervals, logger *zap.Logger) *Poller {
	def := DefaultIntervals()
	if intervals.Questions <= 0 {
		intervals.Questions = def.Questions
	}
	if intervals.Session <= 0 {
		intervals.Session = def.Session
	}
	if intervals.Event <= 0 {
		intervals.Event = def.Event
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{api: api, logger: logger, intervals: intervals, now: time.Now}
}

// WithStatuses limits the polled queue to statuses (e.g. approved only for a listener screen).
func (p *Poller) WithStatuses(statuses ...models.QuestionStatus) *Poller {
	p.statuses = statuses
	return p
}

// Join resolves a join code and seeds the view with the event.
func (p *Poller) Join(ctx context.Context, code string) (*models.Event, error) {
	e, err := p.api.EventByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.view = View{Event: e, UpdatedAt: p.now()}
	p.mu.Unlock()
	return e, nil
}

// View returns a copy of the current state.
func (p *Poller) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	v.Questions = append([]models.Question(nil), p.view.Questions...)
	return v
}

// Run polls until ctx is cancelled or the event disappears, calling onChange (which may be
// nil) with every changed view. The first fetch of each resource happens immediately.
func (p *Poller) Run(ctx context.Context, onChange func(Update)) error {
	p.mu.Lock()
	e := p.view.Event
	p.mu.Unlock()
	if e == nil {
		return errors.New("poller: Join before Run")
	}
	eventID := e.ID

	var notifyMu sync.Mutex
	notify := func(changed Change) {
		if changed == 0 || onChange == nil {
			return
		}
		notifyMu.Lock()
		defer notifyMu.Unlock()
		onChange(Update{View: p.View(), Changed: changed})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.loop(gctx, p.intervals.Questions, "questions", func(ctx context.Context) (Change, error) {
			return p.refreshQuestions(ctx, eventID)
		}, notify)
	})
	g.Go(func() error {
		return p.loop(gctx, p.intervals.Session, "session", func(ctx context.Context) (Change, error) {
			return p.refreshSession(ctx, eventID)
		}, notify)
	})
	g.Go(func() error {
		return p.loop(gctx, p.intervals.Event, "event", func(ctx context.Context) (Change, error) {
			return p.refreshEvent(ctx, eventID)
		}, notify)
	})
	err := g.Wait()
	if errors.Is(err, ErrEventGone) {
		return err
	}
	return nil
}

func (p *Poller) loop(ctx context.Context, every time.Duration, name string, fetch func(context.Context) (Change, error), notify func(Change)) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		changed, err := fetch(ctx)
		switch {
		case errors.Is(err, ErrEventGone):
			return err
		case err != nil && ctx.Err() == nil:
			p.logger.Warn("poll failed, retrying next tick", zap.String("resource", name), zap.Error(err))
		default:
			notify(changed)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) refreshQuestions(ctx context.Context, eventID uuid.UUID) (Change, error) {
	list, err := p.api.ListQuestions(ctx, eventID, p.statuses...)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if sameQueue(p.view.Questions, list) {
		return 0, nil
	}
	p.view.Questions = list
	p.view.UpdatedAt = p.now()
	return ChangeQuestions, nil
}

func (p *Poller) refreshSession(ctx context.Context, eventID uuid.UUID) (Change, error) {
	latest, err := p.api.LatestSession(ctx, eventID)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if latest == nil || (p.view.Latest != nil && p.view.Latest.ID == latest.ID) {
		return 0, nil
	}
	p.view.Latest = latest
	p.view.UpdatedAt = p.now()
	return ChangeSession, nil
}

func (p *Poller) refreshEvent(ctx context.Context, eventID uuid.UUID) (Change, error) {
	e, err := p.api.GetEvent(ctx, eventID)
	if client.IsNotFound(err) {
		return 0, ErrEventGone
	}
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur := p.view.Event; cur != nil && cur.UpdatedAt.Equal(e.UpdatedAt) && cur.Status == e.Status {
		return 0, nil
	}
	p.view.Event = e
	p.view.UpdatedAt = p.now()
	return ChangeEvent, nil
}

// sameQueue compares the fields moderation can change.
func sameQueue(a, b []models.Question) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Status != b[i].Status || a[i].QueuePosition != b[i].QueuePosition {
			return false
		}
		if (a[i].AnsweredAt == nil) != (b[i].AnsweredAt == nil) {
			return false
		}
		if a[i].AnsweredAt != nil && !a[i].AnsweredAt.Equal(*b[i].AnsweredAt) {
			return false
		}
	}
	return true
}
