package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.DefaultSeatsPerTable != 9 {
		t.Fatalf("unexpected default seats: %d", cfg.DefaultSeatsPerTable)
	}
	if cfg.EventWorkers != 8 || cfg.EventDeliveryTimeout != 10*time.Second {
		t.Fatalf("unexpected event pool defaults: %d/%s", cfg.EventWorkers, cfg.EventDeliveryTimeout)
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected pyroscope app name to default to service name, got %q", cfg.PyroscopeAppName)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "uptrace without dsn", env: map[string]string{"UPTRACE_ENABLED": "true", "UPTRACE_DSN": ""}},
		{name: "pyroscope without address", env: map[string]string{"PYROSCOPE_ENABLED": "true"}},
		{name: "webhook without url", env: map[string]string{"WEBHOOK_ENABLED": "true"}},
		{name: "archive without bucket", env: map[string]string{"ARCHIVE_ENABLED": "true"}},
		{name: "bad duration", env: map[string]string{"CACHE_TTL": "soon"}},
		{name: "non-positive duration", env: map[string]string{"WEBHOOK_TIMEOUT": "0s"}},
		{name: "workers below minimum", env: map[string]string{"EVENT_WORKERS": "0"}},
		{name: "break threshold above seats", env: map[string]string{"SEATING_DEFAULT_SEATS": "6", "SEATING_MIN_PLAYERS_TO_BREAK": "7"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_SinkConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/poker")
	t.Setenv("WEBHOOK_TIMEOUT", "2s")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_SUBJECT_PREFIX", "club.events.")
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("ARCHIVE_BUCKET", "results")
	t.Setenv("ARCHIVE_PREFIX", "/season-1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.WebhookTimeout != 2*time.Second {
		t.Fatalf("unexpected webhook timeout: %s", cfg.WebhookTimeout)
	}
	if cfg.NATSSubjectPrefix != "club.events" {
		t.Fatalf("unexpected subject prefix: %q", cfg.NATSSubjectPrefix)
	}
	if cfg.ArchivePrefix != "season-1" {
		t.Fatalf("unexpected archive prefix: %q", cfg.ArchivePrefix)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_SERVICE_NAME=from-dotenv\nAPP_HTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_HTTP_ADDR", ":7000")
	t.Setenv("APP_SERVICE_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Fatalf("environment must win over .env, got %q", cfg.HTTPAddr)
	}
	if cfg.ServiceName != "tournament-engine-api" {
		t.Fatalf("a variable present in the environment must not be replaced, got %q", cfg.ServiceName)
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	got := parseUptraceDSNFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev/1"`)
	if got != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn: %q", got)
	}
}
