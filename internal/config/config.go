package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
)

const (
	SearchProviderNewsAPI = "newsapi"
	SearchProviderRSS     = "rss"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	SnapshotCacheTTL time.Duration `env:"SNAPSHOT_CACHE_TTL" envDefault:"35m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// NATS Config (optional)
	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"conflict.snapshot.updated"`

	// Search Config
	SearchProvider       string        `env:"SEARCH_PROVIDER" envDefault:"newsapi"`
	NewsAPIKey           string        `env:"NEWS_API_KEY"`
	NewsAPIURL           string        `env:"NEWS_API_URL" envDefault:"https://newsapi.org/v2/everything"`
	NewsRSSURL           string        `env:"NEWS_RSS_URL" envDefault:"https://news.google.com/rss/search"`
	SearchLanguage       string        `env:"SEARCH_LANGUAGE" envDefault:"en"`
	SearchPageSize       int           `env:"SEARCH_PAGE_SIZE" envDefault:"5"`
	SearchWindow         time.Duration `env:"SEARCH_WINDOW" envDefault:"168h"`
	SearchMaxConcurrency int           `env:"SEARCH_MAX_CONCURRENCY" envDefault:"8"`
	SearchRatePerSecond  float64       `env:"SEARCH_RATE_PER_SECOND" envDefault:"5"`

	// Model Config
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	ModelTimeout    time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`
	ModelMaxRetries int           `env:"MODEL_MAX_RETRIES" envDefault:"0"`

	// Pipeline Config
	PromptMaxChars  int           `env:"PROMPT_MAX_CHARS" envDefault:"20000"`
	IncidentCap     int           `env:"INCIDENT_CAP" envDefault:"10"`
	MaxArticles     int           `env:"MAX_ARTICLES" envDefault:"20"`
	RefreshSchedule string        `env:"REFRESH_SCHEDULE" envDefault:"@every 30m"`
	RefreshOnStart  bool          `env:"REFRESH_ON_START" envDefault:"true"`
	RunTimeout      time.Duration `env:"RUN_TIMEOUT" envDefault:"5m"`

	// Read path Config
	ReadIncidentLimit int `env:"READ_INCIDENT_LIMIT" envDefault:"20"`
	ReadArticleLimit  int `env:"READ_ARTICLE_LIMIT" envDefault:"10"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		SnapshotCacheTTL: getEnvAsDuration("SNAPSHOT_CACHE_TTL", 35*time.Minute),

		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),

		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: getEnv("NATS_SUBJECT", "conflict.snapshot.updated"),

		SearchProvider:       strings.ToLower(getEnv("SEARCH_PROVIDER", SearchProviderNewsAPI)),
		NewsAPIKey:           os.Getenv("NEWS_API_KEY"),
		NewsAPIURL:           getEnv("NEWS_API_URL", "https://newsapi.org/v2/everything"),
		NewsRSSURL:           getEnv("NEWS_RSS_URL", "https://news.google.com/rss/search"),
		SearchLanguage:       getEnv("SEARCH_LANGUAGE", "en"),
		SearchPageSize:       getEnvAsInt("SEARCH_PAGE_SIZE", 5),
		SearchWindow:         getEnvAsDuration("SEARCH_WINDOW", 7*24*time.Hour),
		SearchMaxConcurrency: getEnvAsInt("SEARCH_MAX_CONCURRENCY", 8),
		SearchRatePerSecond:  getEnvAsFloat("SEARCH_RATE_PER_SECOND", 5),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ModelTimeout:    getEnvAsDuration("MODEL_TIMEOUT", 60*time.Second),
		ModelMaxRetries: getEnvAsInt("MODEL_MAX_RETRIES", 0),

		PromptMaxChars:  getEnvAsInt("PROMPT_MAX_CHARS", 20000),
		IncidentCap:     getEnvAsInt("INCIDENT_CAP", 10),
		MaxArticles:     getEnvAsInt("MAX_ARTICLES", 20),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 30m"),
		RefreshOnStart:  getEnvAsBool("REFRESH_ON_START", true),
		RunTimeout:      getEnvAsDuration("RUN_TIMEOUT", 5*time.Minute),

		ReadIncidentLimit: getEnvAsInt("READ_INCIDENT_LIMIT", 20),
		ReadArticleLimit:  getEnvAsInt("READ_ARTICLE_LIMIT", 10),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.SearchProvider != SearchProviderNewsAPI && cfg.SearchProvider != SearchProviderRSS {
		return nil, fmt.Errorf("unsupported SEARCH_PROVIDER %q", cfg.SearchProvider)
	}

	if err := cfg.validateLimits(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateLimits проверяет, что ограничения конвейера и чтения положительны
func (c *Config) validateLimits() error {
	limits := []struct {
		name  string
		value int
	}{
		{"INCIDENT_CAP", c.IncidentCap},
		{"PROMPT_MAX_CHARS", c.PromptMaxChars},
		{"READ_INCIDENT_LIMIT", c.ReadIncidentLimit},
		{"READ_ARTICLE_LIMIT", c.ReadArticleLimit},
	}
	for _, l := range limits {
		if l.value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", l.name, l.value)
		}
	}
	return nil
}

// SearchNeedsKey сообщает, требует ли выбранный поисковый провайдер API-ключ
func (c *Config) SearchNeedsKey() bool {
	return c.SearchProvider == SearchProviderNewsAPI
}

// CheckPipelineKeys проверяет наличие ключей внешних сервисов до любого сетевого вызова
func (c *Config) CheckPipelineKeys() error {
	if c.SearchNeedsKey() && c.NewsAPIKey == "" {
		return &apperrors.ConfigurationError{Service: apperrors.ServiceNewsAPI}
	}
	if c.GeminiAPIKey == "" {
		return &apperrors.ConfigurationError{Service: apperrors.ServiceGemini}
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
