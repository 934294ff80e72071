package transcription

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/lang"
)

const translatorPrompt = "You are a professional translator. Translate the following text into %s accurately while preserving the meaning and tone. Reply with the translation only."

// OpenAIConfig configures the OpenAI-backed transcriber.
type OpenAIConfig struct {
	APIKey       string
	WhisperModel string
	ChatModel    string
	BaseURL      string // optional; for proxies and tests
}

// OpenAITranscriber transcribes with Whisper and translates with a chat model.
type OpenAITranscriber struct {
	client  openai.Client
	fetcher *Fetcher
	cfg     OpenAIConfig
	logger  *zap.Logger
}

// NewOpenAITranscriber creates the production transcriber.
func NewOpenAITranscriber(cfg OpenAIConfig, fetcher *Fetcher, logger *zap.Logger) *OpenAITranscriber {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = string(openai.AudioModelWhisper1)
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = string(openai.ChatModelGPT4o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAITranscriber{client: openai.NewClient(opts...), fetcher: fetcher, cfg: cfg, logger: logger}
}

// Transcribe downloads the audio, transcribes it, then translates into every target language
// other than the source.
func (o *OpenAITranscriber) Transcribe(ctx context.Context, req Request) (*Result, error) {
	audio, err := o.fetcher.Open(ctx, req.AudioURL)
	if err != nil {
		return nil, err
	}
	defer audio.Body.Close()

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(o.cfg.WhisperModel),
		File:  openai.File(audio.Body, audio.Name, audio.ContentType),
	}
	if req.SourceLanguage != "" {
		params.Language = openai.String(req.SourceLanguage)
	}
	tr, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}
	text := strings.TrimSpace(tr.Text)

	res := &Result{Transcription: text, Translations: make(map[string]string, len(req.TargetLanguages))}
	for _, target := range req.TargetLanguages {
		if target == req.SourceLanguage || text == "" {
			res.Translations[target] = text
			continue
		}
		translated, err := o.translate(ctx, text, target)
		if err != nil {
			return nil, err
		}
		res.Translations[target] = translated
	}
	o.logger.Debug("audio transcribed",
		zap.String("audio_url", req.AudioURL),
		zap.Int("chars", len(text)),
		zap.Int("translations", len(res.Translations)))
	return res, nil
}

func (o *OpenAITranscriber) translate(ctx context.Context, text, target string) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.cfg.ChatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(translatorPrompt, lang.DisplayName(target))),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", target, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("translate to %s: empty completion", target)
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
