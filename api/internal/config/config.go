package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLocation = "us-central1"
	DefaultModel    = "gemini-2.0-flash-exp"
	DefaultEngine   = "vertex"
	DefaultOutput   = "output.json"
)

type Config struct {
	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`

	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	Engine       string `yaml:"engine"`
	GeminiModel  string `yaml:"gemini_model"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	PromptFile   string `yaml:"prompt_file"`

	OutputFile string `yaml:"output_file"`

	DatabaseURL    string        `yaml:"database_url"`
	StoreRetention time.Duration `yaml:"store_retention"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func defaults() *Config {
	return &Config{
		Location:    DefaultLocation,
		Engine:      DefaultEngine,
		GeminiModel: DefaultModel,
		OutputFile:  DefaultOutput,
	}
}

// Load собирает конфиг: defaults < yaml (path или CONFIG_FILE) < .env < окружение.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path == "" {
		path = getEnv("CONFIG_FILE", "")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ProjectID = getEnv("PROJECT_ID", cfg.ProjectID)
	cfg.Location = getEnv("LOCATION", cfg.Location)
	cfg.Bucket = getEnv("BUCKET_NAME", cfg.Bucket)
	cfg.Prefix = getEnv("BUCKET_PREFIX", cfg.Prefix)
	cfg.Engine = strings.ToLower(getEnv("LLM_ENGINE", cfg.Engine))
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.PromptFile = getEnv("PROMPT_FILE", cfg.PromptFile)
	cfg.OutputFile = getEnv("OUTPUT_FILE", cfg.OutputFile)
	cfg.DatabaseURL = resolveDSN(cfg.DatabaseURL)
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)

	if v := getEnv("STORE_RETENTION", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("bad STORE_RETENTION %q: %w", v, err)
		}
		cfg.StoreRetention = d
	}

	if v := getEnv("TELEGRAM_CHAT_ID", ""); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.TelegramChatID = id
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("bad config %s: %w", path, err)
	}
	return nil
}

// TelegramEnabled reports whether a run summary can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// resolveDSN prefers DATABASE_URL, then POSTGRES_*/PG* vars. The store is
// optional, so without any of them the result is fallback.
func resolveDSN(fallback string) string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	host := getEnv("PGHOST", "")
	db := getEnv("POSTGRES_DB", "")
	if host == "" && db == "" {
		return fallback
	}
	if host == "" {
		host = "localhost"
	}
	if db == "" {
		db = "extract"
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "extract"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
