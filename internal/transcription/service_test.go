package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/apperr"
	"github.com/aura-webinar/liveqa/internal/events"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/sessions"
	"github.com/aura-webinar/liveqa/internal/testsupport"
	"github.com/aura-webinar/liveqa/pkg/queue"
)

type env struct {
	svc      *Service
	events   *events.Service
	sessions *sessions.Service
	event    *models.Event
}

func newEnv(t *testing.T, tr Transcriber) *env {
	t.Helper()
	db := testsupport.OpenDB(t)
	clock := testsupport.NewClock()
	ev := events.NewService(db.Events, nil).WithClock(clock.Now)
	e, err := ev.Create(context.Background(), events.CreateInput{
		Code: "E1", Title: "Keynote", OrganizerName: "Ala", OrganizerEmail: "ala@example.com",
	})
	require.NoError(t, err)
	ss := sessions.NewService(db.Sessions, nil).WithClock(clock.Now)
	return &env{svc: NewService(ev, ss, tr, nil, zap.NewNop()), events: ev, sessions: ss, event: e}
}

func TestProcessRecordsSession(t *testing.T) {
	en := newEnv(t, NewCannedTranscriber(0).WithPicker(func(int) int { return 2 }))
	ctx := context.Background()

	out, err := en.svc.Process(ctx, ProcessInput{
		AudioURL: "https://cdn.example.com/a.mp3", EventID: en.event.ID.String(), SpeakerName: "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, out.Transcription, out.Session.Transcription)
	assert.Equal(t, out.Session.Transcription, out.Session.TranslationEN)
	assert.Equal(t, cannedLines[2][1], out.Session.TranslationPL)
	assert.Equal(t, map[string]string{"pl": cannedLines[2][1], "en": cannedLines[2][0]}, out.Translations)

	latest, err := en.sessions.Latest(ctx, en.event.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Session.ID, latest.ID)
}

func TestProcessValidation(t *testing.T) {
	en := newEnv(t, NewCannedTranscriber(0))
	ctx := context.Background()

	_, err := en.svc.Process(ctx, ProcessInput{EventID: en.event.ID.String(), SpeakerName: "Anna"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	assert.Equal(t, MsgMissingFields, apperr.MessageOf(err, ""))

	_, err = en.svc.Process(ctx, ProcessInput{AudioURL: "x", EventID: uuid.NewString(), SpeakerName: "Anna"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = en.svc.Process(ctx, ProcessInput{
		AudioURL: "x", EventID: en.event.ID.String(), SpeakerName: "Anna", TargetLanguages: []string{"!!"},
	})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
}

type failingTranscriber struct{}

func (failingTranscriber) Transcribe(context.Context, Request) (*Result, error) {
	return nil, errors.New("upstream 502")
}

func TestProcessHidesTranscriberFailure(t *testing.T) {
	en := newEnv(t, failingTranscriber{})
	_, err := en.svc.Process(context.Background(), ProcessInput{
		AudioURL: "x", EventID: en.event.ID.String(), SpeakerName: "Anna",
	})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Equal(t, "fallback", apperr.MessageOf(err, "fallback"))
}

type capturingTranscriber struct {
	got []Request
}

func (c *capturingTranscriber) Transcribe(_ context.Context, req Request) (*Result, error) {
	c.got = append(c.got, req)
	return &Result{Transcription: "hello", Translations: map[string]string{}}, nil
}

func TestProcessSourceLanguageFromEventLabel(t *testing.T) {
	tr := &capturingTranscriber{}
	en := newEnv(t, tr)
	ctx := context.Background()
	in := ProcessInput{AudioURL: "x", EventID: en.event.ID.String(), SpeakerName: "Anna"}

	_, err := en.svc.Process(ctx, in)
	require.NoError(t, err)

	labels := []string{"pl-PL", "polish"}
	for _, label := range labels {
		label := label
		_, err = en.events.Update(ctx, en.event.ID, models.EventPatch{Language: &label})
		require.NoError(t, err)
		_, err = en.svc.Process(ctx, in)
		require.NoError(t, err)
	}

	require.Len(t, tr.got, 3)
	assert.Equal(t, "en", tr.got[0].SourceLanguage)
	assert.Equal(t, "pl", tr.got[1].SourceLanguage)
	assert.Equal(t, "", tr.got[2].SourceLanguage, "free-text labels leave detection to the recognizer")
}

type fakeJobs struct {
	got []queue.TranscriptionPayload
}

func (f *fakeJobs) EnqueueTranscription(_ context.Context, p queue.TranscriptionPayload) (string, error) {
	f.got = append(f.got, p)
	return "job-1", nil
}

func post(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerProcessAndEnqueue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	en := newEnv(t, NewCannedTranscriber(0))
	jobs := &fakeJobs{}
	r := gin.New()
	h := NewHandler(en.svc, jobs, zap.NewNop())
	r.POST("/transcription", h.Process)
	r.POST("/transcription/jobs", h.Enqueue)

	body := map[string]interface{}{
		"audio_url": "https://cdn.example.com/a.mp3", "event_id": en.event.ID.String(), "speaker_name": "Anna",
	}
	w := post(r, "/transcription", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, out.Session.Transcription, out.Session.TranslationEN)
	assert.Equal(t, out.Transcription, out.Translations["en"])

	body["target_languages"] = []string{"PL"}
	w = post(r, "/transcription/jobs", body)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.JSONEq(t, `{"job_id":"job-1","status":"queued"}`, w.Body.String())
	require.Len(t, jobs.got, 1)
	assert.Equal(t, []string{"pl"}, jobs.got[0].TargetLanguages)

	w = post(r, "/transcription", map[string]string{"event_id": en.event.ID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields: audio_url, event_id, speaker_name"}`, w.Body.String())
}

func TestHandlerJobsDisabledWithoutQueue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	en := newEnv(t, NewCannedTranscriber(0))
	r := gin.New()
	r.POST("/transcription/jobs", NewHandler(en.svc, nil, zap.NewNop()).Enqueue)

	w := post(r, "/transcription/jobs", map[string]string{"audio_url": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
