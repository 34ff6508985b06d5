package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port   string
	DBPath string

	GatewayProvider    string
	GatewayBaseURL     string
	GatewayAPIKey      string
	GatewayTimeout     time.Duration
	DiagnosisModel     string
	ChatModel          string
	DiagnosisMaxTokens int

	ChatHistoryBackend string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ChatHistoryTTL     time.Duration

	StorageURL    string
	StorageKey    string
	StorageBucket string

	AllowedOrigins     []string
	MaxImageBytes      int
	RequireAuthHistory bool

	LogLevel  string
	LogFormat string
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	HistoryRedis  = "redis"
	HistorySQLite = "sqlite"
	HistoryNone   = "none"
)

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Debug("[cfg] no .env file loaded", "error", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	getInt := func(k string, def int) int {
		if n, err := strconv.Atoi(get(k, "")); err == nil {
			return n
		}
		return def
	}
	getDur := func(k string, def time.Duration) time.Duration {
		if d, err := time.ParseDuration(get(k, "")); err == nil {
			return d
		}
		return def
	}

	cfg := AppConfig{
		Port:   get("PORT", "8080"),
		DBPath: os.Getenv("DB_PATH"),

		GatewayProvider:    strings.ToLower(get("GATEWAY_PROVIDER", ProviderOpenAI)),
		GatewayBaseURL:     get("GATEWAY_BASE_URL", ""),
		GatewayAPIKey:      get("GATEWAY_API_KEY", ""),
		GatewayTimeout:     getDur("GATEWAY_TIMEOUT", 60*time.Second),
		DiagnosisModel:     get("DIAGNOSIS_MODEL", "google/gemini-2.5-flash"),
		ChatModel:          get("CHAT_MODEL", "google/gemini-2.5-flash"),
		DiagnosisMaxTokens: getInt("DIAGNOSIS_MAX_TOKENS", 1024),

		RedisAddr:      get("REDIS_ADDR", ""),
		RedisPassword:  get("REDIS_PASSWORD", ""),
		RedisDB:        getInt("REDIS_DB", 0),
		ChatHistoryTTL: getDur("CHAT_HISTORY_TTL", 0),

		StorageURL:    get("STORAGE_URL", ""),
		StorageKey:    get("STORAGE_KEY", ""),
		StorageBucket: get("STORAGE_BUCKET", ""),

		AllowedOrigins:     splitList(get("ALLOWED_ORIGINS", "*")),
		MaxImageBytes:      getInt("MAX_IMAGE_BYTES", 10*1024*1024),
		RequireAuthHistory: get("REQUIRE_AUTH_HISTORY", "true") == "true",

		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "text"),
	}
	// DB_PATH="" must stay distinguishable from unset, so it is read raw above.
	if _, ok := os.LookupEnv("DB_PATH"); !ok {
		cfg.DBPath = "cropdoc.db"
	}
	if cfg.GatewayBaseURL == "" && cfg.GatewayProvider == ProviderOpenAI {
		cfg.GatewayBaseURL = "https://ai.gateway.lovable.dev/v1"
	}

	cfg.ChatHistoryBackend = strings.ToLower(get("CHAT_HISTORY_BACKEND", ""))
	if cfg.ChatHistoryBackend == "" {
		switch {
		case cfg.RedisAddr != "":
			cfg.ChatHistoryBackend = HistoryRedis
		case cfg.DBPath != "":
			cfg.ChatHistoryBackend = HistorySQLite
		default:
			cfg.ChatHistoryBackend = HistoryNone
		}
	}
	return cfg
}

// Validate reports configuration that must stop the process.
func (c AppConfig) Validate() error {
	var errs []error
	if c.GatewayAPIKey == "" {
		errs = append(errs, errors.New("GATEWAY_API_KEY is required"))
	}
	switch c.GatewayProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, errors.New("GATEWAY_PROVIDER must be openai or gemini"))
	}
	switch c.ChatHistoryBackend {
	case HistoryRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("CHAT_HISTORY_BACKEND=redis needs REDIS_ADDR"))
		}
	case HistorySQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("CHAT_HISTORY_BACKEND=sqlite needs DB_PATH"))
		}
	case HistoryNone:
	default:
		errs = append(errs, errors.New("CHAT_HISTORY_BACKEND must be redis, sqlite or none"))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// StorageEnabled reports whether uploaded images should be archived.
func (c AppConfig) StorageEnabled() bool {
	return c.StorageURL != "" && c.StorageKey != "" && c.StorageBucket != ""
}

// LogValue keeps secrets out of the startup log line.
func (c AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("db_path", c.DBPath),
		slog.String("gateway_provider", c.GatewayProvider),
		slog.String("gateway_base_url", c.GatewayBaseURL),
		slog.Bool("gateway_key_set", c.GatewayAPIKey != ""),
		slog.String("diagnosis_model", c.DiagnosisModel),
		slog.String("chat_model", c.ChatModel),
		slog.String("chat_history", c.ChatHistoryBackend),
		slog.Bool("image_archive", c.StorageEnabled()),
	)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
