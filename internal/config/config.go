package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-1.5-pro",
	ProviderAnthropic: "claude-sonnet-4-20250514",
}

type Config struct {
	Port     int
	LogLevel string

	Provider        string
	GoogleAPIKey    string
	AnthropicAPIKey string
	ChatModel       string
	ChatTemperature float64
	DocModel        string
	DocTemperature  float64
	MaxRetries      int
	Timeout         time.Duration // zero means no explicit timeout

	FrontendDelay  time.Duration
	BackendDelay   time.Duration
	SynthesisDelay time.Duration

	OutputPath     string
	PromptsFile    string
	UploadMaxBytes int64

	NatsURL   string
	NatsToken string
}

// DotenvFile is read from the working directory before the environment.
// Variables already set in the process take precedence over it.
const DotenvFile = ".env"

func Load() Config {
	loadDotenv(DotenvFile)

	provider := envStr("LLM_PROVIDER", ProviderGemini)
	if _, ok := defaultModels[provider]; !ok {
		provider = ProviderGemini
	}

	return Config{
		Port:     envInt("AIDOC_PORT", 8501),
		LogLevel: envStr("LOG_LEVEL", "info"),

		Provider:        provider,
		GoogleAPIKey:    envStr("GOOGLE_API_KEY", ""),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		ChatModel:       envStr("CHAT_MODEL", defaultModels[provider]),
		ChatTemperature: envFloat("CHAT_TEMPERATURE", 0.8),
		DocModel:        envStr("DOC_MODEL", defaultModels[provider]),
		DocTemperature:  envFloat("DOC_TEMPERATURE", 0.2),
		MaxRetries:      envInt("LLM_MAX_RETRIES", 2),
		Timeout:         envDuration("LLM_TIMEOUT", 0),

		FrontendDelay:  envDuration("STAGE_DELAY_FRONTEND", 60*time.Second),
		BackendDelay:   envDuration("STAGE_DELAY_BACKEND", 60*time.Second),
		SynthesisDelay: envDuration("STAGE_DELAY_SYNTHESIS", 90*time.Second),

		OutputPath:     envStr("DOC_OUTPUT_PATH", "project_workflow_documentation.pdf"),
		PromptsFile:    envStr("PROMPTS_FILE", ""),
		UploadMaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 64<<20)),

		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),
	}
}

// APIKey returns the credential for the selected provider.
func (c Config) APIKey() string {
	if c.Provider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GoogleAPIKey
}

func loadDotenv(path string) {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read dotenv file", "path", path, "error", err)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("90s") or plain seconds ("90").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
