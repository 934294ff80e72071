package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidateAudioFileType(t *testing.T) {
	assert.True(t, ValidateAudioFileType("audio/mpeg", ""))
	assert.True(t, ValidateAudioFileType("", "talk.WAV"))
	assert.False(t, ValidateAudioFileType("image/png", "slide.png"))
	assert.Equal(t, "audio/webm", ContentTypeForFilename("clip.webm"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("notes.txt"))
}

func TestAudioKeyAndRefs(t *testing.T) {
	key := AudioKey("evt", "up1", "../../etc/passwd.mp3")
	assert.Equal(t, "audio/evt/up1.mp3", key)
	assert.Equal(t, "audio/evt/up1", AudioKey("evt", "up1", "noext"))

	ref := ObjectRef("bucket", key)
	bucket, gotKey, ok := ParseObjectRef(ref)
	require.True(t, ok)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, key, gotKey)

	_, _, ok = ParseObjectRef("https://example.com/a.mp3")
	assert.False(t, ok)
	_, _, ok = ParseObjectRef("s3://bucket/")
	assert.False(t, ok)
}

func TestPresignIsOffline(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Region: "eu-central-1", AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret", AudioBucket: "liveqa-audio",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.PresignExpire())

	raw, err := s.GeneratePresignedUploadURL(context.Background(), s.AudioBucket(), "audio/e/u.mp3", "audio/mpeg", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "liveqa-audio")
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
