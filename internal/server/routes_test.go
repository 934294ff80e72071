package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/server"
	"github.com/aura-webinar/liveqa/internal/testsupport"
	"github.com/aura-webinar/liveqa/internal/transcription"
)

func newRouter(t *testing.T, ratePerMin int) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testsupport.OpenDB(t)
	d := server.Deps{
		Events:             db.Events,
		Questions:          db.Questions,
		Sessions:           db.Sessions,
		Transcriber:        transcription.NewCannedTranscriber(0).WithPicker(func(int) int { return 0 }),
		Logger:             zap.NewNop(),
		SubmitRatePerMin:   ratePerMin,
		CORSAllowedOrigins: "*",
	}
	return server.NewRouter(d, server.NewServices(d))
}

func call(t *testing.T, r http.Handler, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func createEvent(t *testing.T, r http.Handler, code string) models.Event {
	t.Helper()
	var e models.Event
	status := call(t, r, http.MethodPost, "/events", map[string]interface{}{
		"code": code, "title": "Keynote", "organizer_name": "Ala", "organizer_email": "ala@example.com", "language": "pl",
	}, &e)
	require.Equal(t, http.StatusCreated, status)
	return e
}

func TestLiveEventFlow(t *testing.T) {
	r := newRouter(t, 0)
	e := createEvent(t, r, "KEY25")

	var q1, q2 models.Question
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/questions", map[string]string{
		"event_id": e.ID.String(), "participant_name": "Jan", "question_text": "When is lunch?",
	}, &q1))
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/questions", map[string]string{
		"event_id": e.ID.String(), "participant_name": "Ola", "question_text": "Slides?",
	}, &q2))
	assert.Equal(t, 1, q1.QueuePosition)
	assert.Equal(t, 2, q2.QueuePosition)

	var approved models.Question
	require.Equal(t, http.StatusOK, call(t, r, http.MethodPut, "/questions/"+q2.ID.String(), map[string]string{"status": "approved"}, &approved))
	assert.Equal(t, models.QuestionApproved, approved.Status)

	var list []models.Question
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/questions?eventId="+e.ID.String()+"&status=approved", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, q2.ID, list[0].ID)

	var out transcription.Outcome
	require.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/transcription", map[string]string{
		"event_id": e.ID.String(), "speaker_name": "Dr Nowak", "audio_url": "https://cdn.example.com/seg1.webm",
	}, &out))
	require.NotNil(t, out.Session)
	assert.NotEmpty(t, out.Session.Transcription)

	var latest []models.AudioSession
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/audio-sessions?eventId="+e.ID.String()+"&latest=true", nil, &latest))
	require.Len(t, latest, 1)
	assert.Equal(t, out.Session.ID, latest[0].ID)

	var stats models.EventStats
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/events/"+e.ID.String()+"/stats", nil, &stats))
	assert.Equal(t, 2, stats.Questions.Total)
	assert.Equal(t, 1, stats.Questions.Approved)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 0, stats.Viewers)

	assert.Equal(t, http.StatusOK, call(t, r, http.MethodDelete, "/events/"+e.ID.String(), nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodGet, "/questions/"+q1.ID.String(), nil, nil))
}

func TestOptionalRoutes(t *testing.T) {
	r := newRouter(t, 0)
	e := createEvent(t, r, "OPT1")

	var health map[string]string
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "ok", health["status"])

	assert.Equal(t, http.StatusServiceUnavailable, call(t, r, http.MethodPost, "/transcription/jobs", map[string]string{
		"event_id": e.ID.String(), "speaker_name": "A", "audio_url": "https://x/y.mp3",
	}, nil))
	assert.Equal(t, http.StatusNotFound, call(t, r, http.MethodPost, "/audio-uploads", map[string]string{
		"event_id": e.ID.String(), "filename": "a.mp3",
	}, nil), "uploads are only routed when S3 is configured")
}

func TestSubmitRateLimit(t *testing.T) {
	r := newRouter(t, 2)
	e := createEvent(t, r, "RATE")
	body := map[string]string{"event_id": e.ID.String(), "participant_name": "Jan", "question_text": "Q"}

	assert.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/questions", body, nil))
	assert.Equal(t, http.StatusCreated, call(t, r, http.MethodPost, "/questions", body, nil))
	assert.Equal(t, http.StatusTooManyRequests, call(t, r, http.MethodPost, "/questions", body, nil))

	var list []models.Question
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/questions?eventId="+e.ID.String(), nil, &list))
	assert.Len(t, list, 2, "reads are not throttled")
}

type fakeDLQ struct {
	n   int64
	err error
}

func (f fakeDLQ) DeadLetters(context.Context) (int64, error) { return f.n, f.err }

func TestHealthReportsDeadLetters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testsupport.OpenDB(t)
	d := server.Deps{
		Events: db.Events, Questions: db.Questions, Sessions: db.Sessions,
		Transcriber: transcription.NewCannedTranscriber(0),
		DeadLetters: fakeDLQ{n: 3},
	}
	r := server.NewRouter(d, server.NewServices(d))
	var out map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/health", nil, &out))
	assert.Equal(t, float64(3), out["dead_letters"])

	d.DeadLetters = fakeDLQ{err: errors.New("redis down")}
	r = server.NewRouter(d, server.NewServices(d))
	assert.Equal(t, http.StatusServiceUnavailable, call(t, r, http.MethodGet, "/health", nil, nil))
}
