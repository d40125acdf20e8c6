package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/upliftapps/pulse/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pulse.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Default()

	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("http port = %d, want 8080", cfg.Server.HTTPPort)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Store.QueryTimeout != 5*time.Second {
		t.Errorf("query timeout = %v, want 5s", cfg.Store.QueryTimeout)
	}
	if cfg.Batch.Size != 1000 || cfg.Batch.FlushInterval != 5*time.Second {
		t.Errorf("batch = %+v, want 1000/5s", cfg.Batch)
	}
	if cfg.Insights.CategoryOutlier.Disabled {
		t.Error("insight rules should be enabled by default")
	}
	if cfg.Insights.CategoryOutlier.MinPosts != 3 {
		t.Errorf("min posts = %d, want 3", cfg.Insights.CategoryOutlier.MinPosts)
	}
	if cfg.Alerts.RevenueDropPct != 30 {
		t.Errorf("revenue drop pct = %v, want 30", cfg.Alerts.RevenueDropPct)
	}
}

func TestLoadOverridesAndBackfills(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 9090
store:
  backend: redis
  redis:
    addr: localhost:6379
insights:
  revenue_trend:
    disabled: true
    min_change_pct: 35
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("http port = %d, want 9090", cfg.Server.HTTPPort)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Redis.Addr != "localhost:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Insights.RevenueTrend.Disabled || cfg.Insights.RevenueTrend.MinChangePct != 35 {
		t.Errorf("revenue trend = %+v", cfg.Insights.RevenueTrend)
	}
	// Untouched sections still get defaults.
	if cfg.Store.Redis.Key != "pulse:events" {
		t.Errorf("redis key = %q, want default", cfg.Store.Redis.Key)
	}
	if cfg.Insights.EngagementDrop.MinDropPct != 25 {
		t.Errorf("engagement drop pct = %v, want default 25", cfg.Insights.EngagementDrop.MinDropPct)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("PULSE_TEST_REDIS_ADDR", "redis.internal:6379")
	path := writeConfig(t, `
store:
  backend: redis
  redis:
    addr: ${PULSE_TEST_REDIS_ADDR}
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Redis.Addr != "redis.internal:6379" {
		t.Errorf("redis addr = %q, want expanded env value", cfg.Store.Redis.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [broken")
	if _, err := config.Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
