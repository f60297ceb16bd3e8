package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr          string
	StorageMode       string // postgres or memory
	DBDSN             string
	JWTIssuer         string
	JWTSecret         string
	JWTTTL            time.Duration
	WebSocketOrigin   string
	OracleMode        string // http or fixed
	QuoteBaseURL      string
	LimitSweepEvery   time.Duration
	ReconcileEvery    time.Duration
	MarketOpen        string // HH:MM, validator trading window
	MarketClose       string
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.StorageMode = strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_MODE")))
	if c.StorageMode == "" {
		c.StorageMode = "postgres"
	}
	if c.StorageMode != "postgres" && c.StorageMode != "memory" {
		return c, errors.New("invalid STORAGE_MODE: use postgres or memory")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" && c.StorageMode == "postgres" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		missing = append(missing, "JWT_TTL")
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.WebSocketOrigin = os.Getenv("WS_ORIGIN")
	c.OracleMode = strings.ToLower(strings.TrimSpace(os.Getenv("ORACLE_MODE")))
	if c.OracleMode == "" {
		c.OracleMode = "http"
	}
	if c.OracleMode != "http" && c.OracleMode != "fixed" {
		return c, errors.New("invalid ORACLE_MODE: use http or fixed")
	}
	c.QuoteBaseURL = strings.TrimSpace(os.Getenv("QUOTE_BASE_URL"))
	if c.QuoteBaseURL == "" {
		c.QuoteBaseURL = "https://query1.finance.yahoo.com"
	}
	var err error
	c.LimitSweepEvery, err = durationEnv("LIMIT_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return c, err
	}
	c.ReconcileEvery, err = durationEnv("RECONCILE_INTERVAL", time.Minute)
	if err != nil {
		return c, err
	}
	c.MarketOpen = strings.TrimSpace(os.Getenv("MARKET_OPEN"))
	if c.MarketOpen == "" {
		c.MarketOpen = "09:30"
	}
	c.MarketClose = strings.TrimSpace(os.Getenv("MARKET_CLOSE"))
	if c.MarketClose == "" {
		c.MarketClose = "16:00"
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + join(missing))
	}
	return c, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func join(items []string) string {
	if len(items) == 0 {
		return ""
	}
	out := items[0]
	for i := 1; i < len(items); i++ {
		out += "," + items[i]
	}
	return out
}
