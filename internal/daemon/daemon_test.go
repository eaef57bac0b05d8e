package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	t.Setenv("JOBTRAIL_HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Progression.Timezone = "UTC"
	return cfg
}

func TestNewWithConfig_SQLiteOnly(t *testing.T) {
	d, err := NewWithConfig(testConfig(t), nil)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.Redis != nil {
		t.Error("redis should not be wired when disabled")
	}
	if d.Store != d.DB {
		t.Error("store should be the sqlite database")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("/health status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewWithConfig_WithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error: %v", err)
	}
	defer mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	d, err := NewWithConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.Redis == nil {
		t.Fatal("redis client should be wired")
	}
	if _, err := d.Service.Summary(context.Background(), "u1"); err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	statuses := d.Health.RunOnce(context.Background())
	if len(statuses) != 3 {
		t.Errorf("health checks = %d, want 3 (sqlite, data_dir, redis)", len(statuses))
	}
}

func TestNewWithConfig_BadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Progression.Timezone = "Nowhere/Land"
	if _, err := NewWithConfig(cfg, nil); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
