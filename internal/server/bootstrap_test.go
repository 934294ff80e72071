package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/config"
	"github.com/aura-webinar/liveqa/internal/models"
	"github.com/aura-webinar/liveqa/internal/transcription"
)

func TestOpenStoresSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "liveqa.db")}
	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	list, err := stores.Events.List(context.Background(), models.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), config.DatabaseConfig{Driver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewS3DisabledWithoutRegion(t *testing.T) {
	assert.Nil(t, NewS3(context.Background(), config.AWSConfig{AudioBucket: "b"}, zap.NewNop()))
}

func TestNewTranscriberSelection(t *testing.T) {
	canned := NewTranscriber(config.TranscriptionConfig{Driver: config.TranscriberCanned}, nil, zap.NewNop())
	assert.IsType(t, &transcription.CannedTranscriber{}, canned)

	openai := NewTranscriber(config.TranscriptionConfig{Driver: config.TranscriberOpenAI, OpenAIAPIKey: "sk-test"}, nil, zap.NewNop())
	assert.IsType(t, &transcription.OpenAITranscriber{}, openai)
}
