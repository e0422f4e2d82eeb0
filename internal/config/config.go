// Package config provides centralized configuration for the notepads
// backend. It loads configuration from CLI flags and environment variables,
// validates required fields, and provides sensible defaults.
//
// CLI flags control which collaborators are mocked (--no-mongo, --no-oidc,
// --test). Environment variables provide connection strings and secrets.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/simpliv/notepads/internal/ratelimit"
)

const (
	defaultListenAddr    = ":8080"
	defaultMongoDatabase = "notepads"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr      string
	ShutdownTimeout time.Duration

	// Document store
	MongoURI      string // MONGODB_URI
	MongoDatabase string // MONGODB_DATABASE

	// Identity provider
	OIDCIssuer   string // OIDC_ISSUER
	OIDCClientID string // OIDC_CLIENT_ID

	// Authorization-code flow (optional; enables /auth/login when both set)
	OIDCClientSecret string // OIDC_CLIENT_SECRET
	OIDCRedirectURL  string // OIDC_REDIRECT_URL

	// Rate limiting
	RateLimitConfig ratelimit.Config

	// Mock collaborator flags (controlled by CLI flags, not env vars)
	NoMongo bool // If true, use the in-memory store (--no-mongo)
	NoOIDC  bool // If true, accept static test tokens (--no-oidc)
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
func ParseFlags() (noMongo, noOIDC bool, addr string) {
	var testMode bool
	flag.BoolVar(&noMongo, "no-mongo", false, "Use the in-memory document store")
	flag.BoolVar(&noOIDC, "no-oidc", false, "Accept static test tokens instead of verifying OIDC")
	flag.BoolVar(&testMode, "test", false, "Shorthand for --no-mongo --no-oidc")
	flag.StringVar(&addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()

	if testMode {
		noMongo = true
		noOIDC = true
	}

	return noMongo, noOIDC, addr
}

// LoadConfig loads configuration from environment variables and CLI flag
// values. The addr flag overrides the LISTEN_ADDR env var if non-empty.
func LoadConfig(noMongo, noOIDC bool, addr string) (*Config, error) {
	cfg := &Config{
		NoMongo:         noMongo,
		NoOIDC:          noOIDC,
		ShutdownTimeout: 10 * time.Second,
		RateLimitConfig: ratelimit.DefaultConfig,
	}

	cfg.ListenAddr = addr
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	cfg.MongoDatabase = os.Getenv("MONGODB_DATABASE")
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = defaultMongoDatabase
	}

	cfg.OIDCIssuer = os.Getenv("OIDC_ISSUER")
	cfg.OIDCClientID = os.Getenv("OIDC_CLIENT_ID")
	cfg.OIDCClientSecret = os.Getenv("OIDC_CLIENT_SECRET")
	cfg.OIDCRedirectURL = os.Getenv("OIDC_REDIRECT_URL")

	if rpsStr := os.Getenv("RATE_LIMIT_RPS"); rpsStr != "" {
		rps, err := strconv.ParseFloat(rpsStr, 64)
		if err != nil || rps <= 0 {
			return nil, &ValidationError{Errors: []string{
				fmt.Sprintf("RATE_LIMIT_RPS must be a positive number, got %q", rpsStr),
			}}
		}
		cfg.RateLimitConfig.RPS = rps
	}
	if burstStr := os.Getenv("RATE_LIMIT_BURST"); burstStr != "" {
		burst, err := strconv.Atoi(burstStr)
		if err != nil || burst <= 0 {
			return nil, &ValidationError{Errors: []string{
				fmt.Sprintf("RATE_LIMIT_BURST must be a positive integer, got %q", burstStr),
			}}
		}
		cfg.RateLimitConfig.Burst = burst
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []string

	if !c.NoMongo && c.MongoURI == "" {
		errs = append(errs, "MONGODB_URI is required (or pass --no-mongo)")
	}
	if !c.NoOIDC {
		if c.OIDCIssuer == "" {
			errs = append(errs, "OIDC_ISSUER is required (or pass --no-oidc)")
		}
		if c.OIDCClientID == "" {
			errs = append(errs, "OIDC_CLIENT_ID is required (or pass --no-oidc)")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
