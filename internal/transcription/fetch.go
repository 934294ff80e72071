package transcription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/aura-webinar/liveqa/pkg/storage"
)

// ObjectOpener opens s3:// audio references.
type ObjectOpener interface {
	OpenRef(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

// Audio is a downloaded segment ready for upload to a speech API.
type Audio struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}

// Fetcher resolves audio references over HTTP(S) or from the audio bucket.
type Fetcher struct {
	http    *http.Client
	objects ObjectOpener
}

// NewFetcher creates a fetcher. objects may be nil when S3 is not configured.
func NewFetcher(client *http.Client, objects ObjectOpener) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{http: client, objects: objects}
}

// Open returns the audio behind ref. The caller closes Body.
func (f *Fetcher) Open(ctx context.Context, ref string) (*Audio, error) {
	name := path.Base(ref)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if _, _, ok := storage.ParseObjectRef(ref); ok {
		if f.objects == nil {
			return nil, fmt.Errorf("audio %q is in S3 but no bucket is configured", ref)
		}
		body, ct, err := f.objects.OpenRef(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("open audio object: %w", err)
		}
		return &Audio{Name: name, ContentType: contentType(ct, name), Body: body}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("audio request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download audio: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download audio: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > storage.MaxAudioFileSize {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download audio: %d bytes exceeds limit", resp.ContentLength)
	}
	body := struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, storage.MaxAudioFileSize), resp.Body}
	return &Audio{Name: name, ContentType: contentType(resp.Header.Get("Content-Type"), name), Body: body}, nil
}

func contentType(header, name string) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return storage.ContentTypeForFilename(name)
}
