package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("JWT_ISSUER", "brokerage")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "1h")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.OracleMode != "http" {
		t.Errorf("oracle mode = %q, want http", c.OracleMode)
	}
	if c.LimitSweepEvery != 5*time.Minute {
		t.Errorf("limit sweep interval = %v, want 5m", c.LimitSweepEvery)
	}
	if c.ReconcileEvery != time.Minute {
		t.Errorf("reconcile interval = %v, want 1m", c.ReconcileEvery)
	}
	if c.MarketOpen != "09:30" || c.MarketClose != "16:00" {
		t.Errorf("market window = %s-%s, want 09:30-16:00", c.MarketOpen, c.MarketClose)
	}
	if c.JWTTTL != time.Hour {
		t.Errorf("jwt ttl = %v, want 1h", c.JWTTTL)
	}
}

func TestLoadCollectsMissingKeys(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STORAGE_MODE", "memory")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "1h")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing env")
	}
	for _, key := range []string{"HTTP_ADDR", "JWT_ISSUER", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestPostgresModeRequiresDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_MODE", "postgres")
	t.Setenv("DB_DSN", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DB_DSN") {
		t.Fatalf("got %v, want missing DB_DSN", err)
	}
}

func TestInvalidStorageMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_MODE", "sqlite")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown storage mode")
	}
}

func TestInvalidInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LIMIT_SWEEP_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad interval")
	}
}
