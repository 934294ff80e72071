// Package client is a typed HTTP client for the live Q&A API, used by the poller and the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aura-webinar/liveqa/internal/events"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/questions"
	"github.com/aura-webinar/liveqa/internal/sessions"
	"github.com/aura-webinar/liveqa/internal/transcription"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("liveqa: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("liveqa: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to one live Q&A server.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for baseURL (e.g. http://localhost:8080). httpClient may be nil.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("liveqa: invalid base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: u, http: httpClient}, nil
}

// ListEvents returns events filtered by status and code; empty strings match all.
func (c *Client) ListEvents(ctx context.Context, status, code string) ([]models.Event, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if code != "" {
		q.Set("code", code)
	}
	var out []models.Event
	err := c.do(ctx, http.MethodGet, "/events", q, nil, &out)
	return out, err
}

// EventByCode resolves a join code. An unknown code is an APIError with status 404.
func (c *Client) EventByCode(ctx context.Context, code string) (*models.Event, error) {
	list, err := c.ListEvents(ctx, "", code)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Message: "Event not found"}
	}
	return &list[0], nil
}

// GetEvent fetches one event.
func (c *Client) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var e models.Event
	if err := c.do(ctx, http.MethodGet, "/events/"+id.String(), nil, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent opens a new event.
func (c *Client) CreateEvent(ctx context.Context, in events.CreateInput) (*models.Event, error) {
	var e models.Event
	if err := c.do(ctx, http.MethodPost, "/events", nil, in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEvent applies a partial update.
func (c *Client) UpdateEvent(ctx context.Context, id uuid.UUID, p models.EventPatch) (*models.Event, error) {
	var e models.Event
	if err := c.do(ctx, http.MethodPut, "/events/"+id.String(), nil, p, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEvent removes an event with its questions and sessions.
func (c *Client) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/events/"+id.String(), nil, nil, nil)
}

// NewEventCode asks the server for an unused join code.
func (c *Client) NewEventCode(ctx context.Context) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	err := c.do(ctx, http.MethodGet, "/event-codes", nil, nil, &out)
	return out.Code, err
}

// RegistryStats counts events per status.
func (c *Client) RegistryStats(ctx context.Context) (*models.RegistryStats, error) {
	var st models.RegistryStats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// EventStats returns the dashboard counters for one event.
func (c *Client) EventStats(ctx context.Context, id uuid.UUID) (*models.EventStats, error) {
	var st models.EventStats
	if err := c.do(ctx, http.MethodGet, "/events/"+id.String()+"/stats", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SubmitQuestion adds a question to the end of the event's queue.
func (c *Client) SubmitQuestion(ctx context.Context, in questions.SubmitInput) (*models.Question, error) {
	var q models.Question
	if err := c.do(ctx, http.MethodPost, "/questions", nil, in, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns the event's queue in position order, optionally limited to statuses.
func (c *Client) ListQuestions(ctx context.Context, eventID uuid.UUID, statuses ...models.QuestionStatus) ([]models.Question, error) {
	q := url.Values{"eventId": {eventID.String()}}
	if len(statuses) > 0 {
		parts := make([]string, len(statuses))
		for i, s := range statuses {
			parts[i] = string(s)
		}
		q.Set("status", strings.Join(parts, ","))
	}
	var out []models.Question
	err := c.do(ctx, http.MethodGet, "/questions", q, nil, &out)
	return out, err
}

// UpdateQuestion changes status and/or queue position.
func (c *Client) UpdateQuestion(ctx context.Context, id uuid.UUID, p models.QuestionPatch) (*models.Question, error) {
	var q models.Question
	if err := c.do(ctx, http.MethodPut, "/questions/"+id.String(), nil, p, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Moderate applies a moderation verb (approve, decline, answer, requeue).
func (c *Client) Moderate(ctx context.Context, id uuid.UUID, verb string) (*models.Question, error) {
	status, ok := questions.StatusForAction(verb)
	if !ok {
		return nil, fmt.Errorf("liveqa: unknown moderation action %q", verb)
	}
	return c.UpdateQuestion(ctx, id, models.QuestionPatch{Status: &status})
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/questions/"+id.String(), nil, nil, nil)
}

// ListSessions returns the event's transcript feed, newest first.
func (c *Client) ListSessions(ctx context.Context, eventID uuid.UUID) ([]models.AudioSession, error) {
	var out []models.AudioSession
	err := c.do(ctx, http.MethodGet, "/audio-sessions", url.Values{"eventId": {eventID.String()}}, nil, &out)
	return out, err
}

// LatestSession returns the newest session, or nil when the speaker has not started.
func (c *Client) LatestSession(ctx context.Context, eventID uuid.UUID) (*models.AudioSession, error) {
	var out []models.AudioSession
	q := url.Values{"eventId": {eventID.String()}, "latest": {"true"}}
	if err := c.do(ctx, http.MethodGet, "/audio-sessions", q, nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// RecordSession appends an already transcribed segment.
func (c *Client) RecordSession(ctx context.Context, in sessions.RecordInput) (*models.AudioSession, error) {
	var a models.AudioSession
	if err := c.do(ctx, http.MethodPost, "/audio-sessions", nil, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Transcribe runs a segment through the server's transcriber and records it.
func (c *Client) Transcribe(ctx context.Context, in transcription.ProcessInput) (*transcription.Outcome, error) {
	var out transcription.Outcome
	if err := c.do(ctx, http.MethodPost, "/transcription", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnqueueTranscription hands a segment to the background worker and returns the job id.
func (c *Client) EnqueueTranscription(ctx context.Context, in transcription.ProcessInput) (string, error) {
	var out struct {
		JobID string `json:"job_id"`
	}
	err := c.do(ctx, http.MethodPost, "/transcription/jobs", nil, in, &out)
	return out.JobID, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
