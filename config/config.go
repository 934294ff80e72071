package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers supported by the server.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Transcriber drivers.
const (
	TranscriberCanned = "canned"
	TranscriberOpenAI = "openai"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	AWS           AWSConfig
	Transcription TranscriptionConfig
	Queue         QueueConfig
	Poller        PollerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	SubmitRatePerMin   int    // question submissions per client IP per minute; 0 disables
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	URL        string // if set, used as-is (e.g. postgres://localhost:5432/liveqa?sslmode=disable)
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// AWSConfig holds AWS credentials and the audio bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	AudioBucket          string
	PresignExpireMinutes int
}

// Enabled reports whether audio uploads to S3 are configured.
func (c AWSConfig) Enabled() bool { return c.Region != "" && c.AudioBucket != "" }

// TranscriptionConfig selects and tunes the speech-to-text port.
type TranscriptionConfig struct {
	Driver          string
	Delay           time.Duration
	OpenAIAPIKey    string
	OpenAIModel     string // chat model used for translation
	WhisperModel    string
	TargetLanguages []string
}

// QueueConfig tunes question moderation.
type QueueConfig struct {
	StrictStatus bool // reject statuses outside pending/approved/declined/answered
}

// PollerConfig holds the client poll intervals.
type PollerConfig struct {
	BaseURL          string
	QuestionInterval time.Duration
	SessionInterval  time.Duration
	EventInterval    time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
			SubmitRatePerMin:   getEnvInt("SUBMIT_RATE_PER_MIN", 30),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			URL:        os.Getenv("DATABASE_URL"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "liveqa"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "liveqa.db"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AudioBucket:          getEnv("AWS_S3_AUDIO_BUCKET", "liveqa-audio-bucket"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Transcription: TranscriptionConfig{
			Driver:          strings.ToLower(getEnv("TRANSCRIBER", TranscriberCanned)),
			Delay:           time.Duration(getEnvInt("TRANSCRIPTION_DELAY_MS", 1500)) * time.Millisecond,
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_TRANSLATION_MODEL", "gpt-4o"),
			WhisperModel:    getEnv("OPENAI_WHISPER_MODEL", "whisper-1"),
			TargetLanguages: splitTrim(getEnv("TRANSCRIPTION_TARGET_LANGUAGES", "pl,en"), ","),
		},
		Queue: QueueConfig{
			StrictStatus: getEnvBool("QUEUE_STRICT_STATUS", false),
		},
		Poller: loadPoller(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads only the poller settings used by the CLI; server settings are not validated.
func LoadClient() PollerConfig {
	_ = godotenv.Load()
	_ = godotenv.Load("env")
	return loadPoller()
}

func loadPoller() PollerConfig {
	return PollerConfig{
		BaseURL:          getEnv("LIVEQA_URL", "http://localhost:8080"),
		QuestionInterval: time.Duration(getEnvInt("POLL_QUESTIONS_MS", 3000)) * time.Millisecond,
		SessionInterval:  time.Duration(getEnvInt("POLL_SESSION_MS", 2000)) * time.Millisecond,
		EventInterval:    time.Duration(getEnvInt("POLL_EVENT_MS", 10000)) * time.Millisecond,
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Transcription.Driver {
	case TranscriberCanned:
	case TranscriberOpenAI:
		if strings.TrimSpace(c.Transcription.OpenAIAPIKey) == "" {
			return fmt.Errorf("config: OPENAI_API_KEY is required when TRANSCRIBER=openai")
		}
	default:
		return fmt.Errorf("config: unknown TRANSCRIBER %q", c.Transcription.Driver)
	}
	if c.Transcription.Delay < 0 {
		return fmt.Errorf("config: TRANSCRIPTION_DELAY_MS must not be negative")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
