package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/server"
	"github.com/aura-webinar/liveqa/internal/testsupport"
	"github.com/aura-webinar/liveqa/internal/transcription"
)

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testsupport.OpenDB(t)
	d := server.Deps{
		Events:      db.Events,
		Questions:   db.Questions,
		Sessions:    db.Sessions,
		Transcriber: transcription.NewCannedTranscriber(0),
		Logger:      zap.NewNop(),
	}
	srv := httptest.NewServer(server.NewRouter(d, server.NewServices(d)))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", url}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var (
	joinCodeRe = regexp.MustCompile(`Join code: (\S+)`)
	questionRe = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)
)

func TestCreateAskModerateListen(t *testing.T) {
	url := startServer(t)

	out, err := runCLI(t, url, "create-event", "--title", "Town hall", "--organizer", "Ala", "--email", "ala@example.com")
	require.NoError(t, err)
	m := joinCodeRe.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	code := m[1]

	out, err = runCLI(t, url, "ask", code, "--name", "Jan", "When", "is", "lunch?")
	require.NoError(t, err)
	assert.Contains(t, out, "Question #1 submitted")
	qm := questionRe.FindStringSubmatch(out)
	require.Len(t, qm, 2, out)

	_, err = runCLI(t, url, "ask", code, "--name", "Ola", "Slides?")
	require.NoError(t, err)

	out, err = runCLI(t, url, "moderate", qm[1], "approve")
	require.NoError(t, err)
	assert.Contains(t, out, "is now approved")

	out, err = runCLI(t, url, "listen", code, "--once", "--approved")
	require.NoError(t, err)
	assert.Contains(t, out, "Town hall")
	assert.Contains(t, out, "When is lunch?")
	assert.NotContains(t, out, "Slides?")
	assert.Contains(t, out, "Waiting for the speaker")
}

func TestCLIErrors(t *testing.T) {
	url := startServer(t)

	_, err := runCLI(t, url, "ask", "NOPE", "--name", "Jan", "hello")
	assert.Error(t, err)

	_, err = runCLI(t, url, "moderate", "not-a-uuid", "approve")
	assert.Error(t, err)

	_, err = runCLI(t, url, "moderate", uuid.NewString(), "shout")
	assert.Error(t, err)

	_, err = runCLI(t, url, "create-event", "--title", "Missing organizer")
	assert.Error(t, err)
}

func TestRenderQueueAndSession(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC)
	list := []models.Question{{
		ID: uuid.New(), QueuePosition: 3, Status: models.QuestionApproved, ParticipantName: "Jan",
		QuestionText: strings.Repeat("x", 100), SubmittedAt: now.Add(-2 * time.Minute),
	}}
	out := renderQueue(list, now)
	assert.Contains(t, out, "2 minutes ago")
	assert.Contains(t, out, "…")
	assert.Equal(t, "No questions yet.", renderQueue(nil, now))

	s := &models.AudioSession{SpeakerName: "Dr Nowak", Transcription: "Hello", TranslationPL: "Cześć", StartedAt: now}
	assert.Contains(t, renderSession(s, "pl", now), "Cześć")
	assert.Contains(t, renderSession(s, "original", now), "Hello")
}
