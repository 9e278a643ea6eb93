// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port             string
	DBPath           string
	JWTSecret        string
	TokenTTL         time.Duration
	EnforceOwnership bool

	RateLimitEnabled bool
	AuthRateLimitRPS float64
	AuthRateBurst    int

	AllowedOrigins []string

	AdminUser     string
	AdminPassword string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:             firstNonEmpty(getenv("PORT"), "8080"),
		DBPath:           firstNonEmpty(getenv("DB_PATH"), sqlitePath(getenv("DATABASE_URL")), "expenses.db"),
		JWTSecret:        firstNonEmpty(getenv("JWT_SECRET_KEY"), getenv("JWT_SECRET")),
		EnforceOwnership: true,
		RateLimitEnabled: true,
		AuthRateLimitRPS: 1,
		AuthRateBurst:    5,
		AdminUser:        getenv("ADMIN_USER"),
		AdminPassword:    getenv("ADMIN_PASSWORD"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY is not set")
	}

	var err error
	if v := getenv("TOKEN_TTL"); v != "" {
		if cfg.TokenTTL, err = time.ParseDuration(v); err != nil || cfg.TokenTTL < 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q", v)
		}
	}
	if v := getenv("ENFORCE_OWNERSHIP"); v != "" {
		if cfg.EnforceOwnership, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid ENFORCE_OWNERSHIP %q", v)
		}
	}
	if v := getenv("RATE_LIMIT_ENABLED"); v != "" {
		if cfg.RateLimitEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_ENABLED %q", v)
		}
	}
	if v := getenv("AUTH_RATE_LIMIT_RPS"); v != "" {
		if cfg.AuthRateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil || cfg.AuthRateLimitRPS <= 0 {
			return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT_RPS %q", v)
		}
	}
	if v := getenv("AUTH_RATE_LIMIT_BURST"); v != "" {
		if cfg.AuthRateBurst, err = strconv.Atoi(v); err != nil || cfg.AuthRateBurst <= 0 {
			return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT_BURST %q", v)
		}
	}
	for _, o := range strings.Split(getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// sqlitePath accepts a plain path or a SQLAlchemy-style URL: sqlite:///rel.db,
// sqlite:////abs.db, or sqlite:// for an in-memory database.
func sqlitePath(url string) string {
	switch {
	case url == "sqlite://":
		return ":memory:"
	case strings.HasPrefix(url, "sqlite:///"):
		return strings.TrimPrefix(url, "sqlite:///")
	default:
		return url
	}
}
