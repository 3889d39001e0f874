package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn=\"https://token@api.uptrace.dev/1\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected UptraceDSN: got=%q", cfg.UptraceDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Poll.Interval != 15*time.Minute {
		t.Fatalf("unexpected poll interval: got=%s want=%s", cfg.Poll.Interval, 15*time.Minute)
	}
	if cfg.Poll.FetchTimeout != 20*time.Second {
		t.Fatalf("unexpected fetch timeout: got=%s", cfg.Poll.FetchTimeout)
	}
	if cfg.LiveStream.PingInterval != 30*time.Second {
		t.Fatalf("unexpected ping interval: got=%s", cfg.LiveStream.PingInterval)
	}
	if cfg.Cron.MarkerHeader != "X-Vercel-Cron" {
		t.Fatalf("unexpected cron marker header: got=%q", cfg.Cron.MarkerHeader)
	}
	if cfg.Timezone == nil || cfg.Timezone.String() != "UTC" {
		t.Fatalf("unexpected timezone: got=%v", cfg.Timezone)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected dev config not to be production")
	}
}

func TestLoad_PollOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("POLL_WORKERS", "8")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("CRON_MARKER_HEADER", "x-cron-marker")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Poll.Interval != 5*time.Minute {
		t.Fatalf("unexpected poll interval: got=%s", cfg.Poll.Interval)
	}
	if cfg.Poll.Workers != 8 {
		t.Fatalf("unexpected poll workers: got=%d", cfg.Poll.Workers)
	}
	if cfg.Timezone.String() != "Asia/Jakarta" {
		t.Fatalf("unexpected timezone: got=%s", cfg.Timezone)
	}
	if cfg.Cron.MarkerHeader != "X-Cron-Marker" {
		t.Fatalf("unexpected cron marker header: got=%q", cfg.Cron.MarkerHeader)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"zero interval":      {"POLL_INTERVAL", "0s"},
		"bad interval":       {"POLL_INTERVAL", "soon"},
		"zero workers":       {"POLL_WORKERS", "0"},
		"bad timezone":       {"APP_TIMEZONE", "Mars/Olympus"},
		"zero buffer":        {"LIVE_STREAM_BUFFER", "0"},
		"negative retries":   {"FOOTBALL_API_MAX_RETRIES", "-1"},
		"bad football flag":  {"FOOTBALL_API_ENABLED", "maybe"},
		"zero rate limit":    {"FOOTBALL_API_REQUESTS_PER_MINUTE", "0"},
		"bad ping interval":  {"LIVE_STREAM_PING_INTERVAL", "-5s"},
		"bad scoring worker": {"SCORING_WORKERS", "x"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("UPTRACE_ENABLED", "false")
			t.Setenv(tc[0], tc[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc[0], tc[1])
			}
		})
	}
}

func TestLoad_ProdRequiresCronAuth(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CRON_SECRET", "")
	t.Setenv("CRON_MARKER_HEADER", " ")

	// Blank marker falls back to the default header, so prod still loads.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Cron.MarkerHeader == "" {
		t.Fatalf("expected default cron marker header")
	}
}

func TestLoad_LiveScoreProvider(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("LIVE_SCORE_PROVIDER", "SportMonks")
	t.Setenv("SPORTMONKS_API_TOKEN", " token ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LiveScoreProvider != ProviderSportMonks {
		t.Fatalf("unexpected provider: got=%q want=%q", cfg.LiveScoreProvider, ProviderSportMonks)
	}
	if cfg.SportMonks.Token != "token" {
		t.Fatalf("unexpected token: got=%q", cfg.SportMonks.Token)
	}

	t.Setenv("LIVE_SCORE_PROVIDER", "espn")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown LIVE_SCORE_PROVIDER")
	}
}
