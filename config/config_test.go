package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GATEWAY_PROVIDER", "GATEWAY_BASE_URL", "GATEWAY_API_KEY", "GATEWAY_TIMEOUT",
		"CHAT_HISTORY_BACKEND", "REDIS_ADDR", "MAX_IMAGE_BYTES", "REQUIRE_AUTH_HISTORY",
		"ALLOWED_ORIGINS", "STORAGE_URL", "STORAGE_KEY", "STORAGE_BUCKET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "")
	cfg := Load()
	if cfg.Port != "8080" || cfg.GatewayProvider != ProviderOpenAI {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.GatewayBaseURL != "https://ai.gateway.lovable.dev/v1" {
		t.Fatalf("base url = %q", cfg.GatewayBaseURL)
	}
	if cfg.GatewayTimeout != 60*time.Second || cfg.MaxImageBytes != 10*1024*1024 {
		t.Fatalf("timeout=%v max=%d", cfg.GatewayTimeout, cfg.MaxImageBytes)
	}
	if !cfg.RequireAuthHistory {
		t.Fatal("history auth should default on")
	}
	// DB_PATH set but empty disables sqlite, so chat history has nowhere to go.
	if cfg.DBPath != "" || cfg.ChatHistoryBackend != HistoryNone {
		t.Fatalf("db=%q backend=%q", cfg.DBPath, cfg.ChatHistoryBackend)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadPicksRedisWhenAddrSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("GATEWAY_TIMEOUT", "15s")
	cfg := Load()
	if cfg.ChatHistoryBackend != HistoryRedis {
		t.Fatalf("backend = %q", cfg.ChatHistoryBackend)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.GatewayTimeout != 15*time.Second {
		t.Fatalf("timeout = %v", cfg.GatewayTimeout)
	}
}

func TestValidate(t *testing.T) {
	ok := AppConfig{GatewayAPIKey: "k", GatewayProvider: ProviderGemini, ChatHistoryBackend: HistoryNone, MaxImageBytes: 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	bad := AppConfig{GatewayProvider: "bedrock", ChatHistoryBackend: HistoryRedis}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"GATEWAY_API_KEY", "GATEWAY_PROVIDER", "REDIS_ADDR", "MAX_IMAGE_BYTES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestStorageEnabledAndLogValue(t *testing.T) {
	cfg := AppConfig{StorageURL: "https://x.supabase.co", StorageKey: "secret", StorageBucket: "leaves", GatewayAPIKey: "sk-123"}
	if !cfg.StorageEnabled() {
		t.Fatal("storage should be enabled")
	}
	if s := cfg.LogValue().String(); strings.Contains(s, "sk-123") || strings.Contains(s, "secret") {
		t.Fatalf("secrets leaked: %s", s)
	}
	cfg.StorageBucket = ""
	if cfg.StorageEnabled() {
		t.Fatal("storage needs all three settings")
	}
}
