package transcription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannedEnglishIsPassthrough(t *testing.T) {
	for i := range cannedLines {
		c := NewCannedTranscriber(0).WithPicker(func(int) int { return i })
		res, err := c.Transcribe(context.Background(), Request{TargetLanguages: []string{"pl", "en"}})
		require.NoError(t, err)
		assert.Equal(t, res.Transcription, res.Translations["en"])
		assert.Equal(t, cannedLines[i][1], res.Translations["pl"])
	}
}

func TestCannedSkipsUnknownTargets(t *testing.T) {
	c := NewCannedTranscriber(0).WithPicker(func(int) int { return 0 })
	res, err := c.Transcribe(context.Background(), Request{TargetLanguages: []string{"de"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Transcription)
	assert.Empty(t, res.Translations)
}

func TestCannedDelayHonoursContext(t *testing.T) {
	c := NewCannedTranscriber(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Transcribe(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
