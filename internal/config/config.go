// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultDBPassword is the development password production refuses.
const defaultDBPassword = "changeme"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	// Public site identity
	SiteName     string
	SiteURL      string
	ContactEmail string
	ContactPhone string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int
	PageCacheTTL   time.Duration // 0 disables the page cache

	// Sessions and 2FA
	SecureCookies bool
	TOTPIssuer    string

	// First-start admin account
	AdminEmail    string
	AdminPassword string

	// EmailJS
	EmailJSServiceID          string
	EmailJSContactTemplate    string
	EmailJSSamplesTemplate    string
	EmailJSNewsletterTemplate string
	EmailJSPublicKey          string
	EmailJSPrivateKey         string
	LeadRecipient             string

	// S3-compatible storage for cover images
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Rate limiting for public forms and admin login
	FormRateLimit  int
	LoginRateLimit int
	RateWindow     time.Duration
}

// Load reads an optional .env file and then the environment, applying
// defaults for development where appropriate. Variables already set in the
// environment win over the file. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	var errs []error
	env := envOrDefault("APP_ENV", "development")

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  env,

		LogFormat: envOrDefault("LOG_FORMAT", defaultLogFormat(env)),

		SiteName:     envOrDefault("SITE_NAME", "Jowam Coffee"),
		SiteURL:      strings.TrimRight(envOrDefault("SITE_URL", "http://localhost:8080"), "/"),
		ContactEmail: envOrDefault("CONTACT_EMAIL", "info@jowamcoffee.com"),
		ContactPhone: envOrDefault("CONTACT_PHONE", "+254 700 000 000"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "jowam"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", defaultDBPassword),
		DBName:     envOrDefault("POSTGRES_DB", "jowam"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		TOTPIssuer: envOrDefault("TOTP_ISSUER", "Jowam Coffee"),

		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@jowamcoffee.com"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "admin-change-me"),

		EmailJSServiceID:          os.Getenv("EMAILJS_SERVICE_ID"),
		EmailJSContactTemplate:    os.Getenv("EMAILJS_CONTACT_TEMPLATE_ID"),
		EmailJSSamplesTemplate:    os.Getenv("EMAILJS_SAMPLES_TEMPLATE_ID"),
		EmailJSNewsletterTemplate: os.Getenv("EMAILJS_NEWSLETTER_TEMPLATE_ID"),
		EmailJSPublicKey:          os.Getenv("EMAILJS_PUBLIC_KEY"),
		EmailJSPrivateKey:         os.Getenv("EMAILJS_PRIVATE_KEY"),
		LeadRecipient:             envOrDefault("LEAD_RECIPIENT", "info@jowamcoffee.com"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "jowam-public"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	level, err := parseLevel(envOrDefault("LOG_LEVEL", "info"))
	errs = append(errs, err)
	cfg.LogLevel = level

	cfg.ValkeyDB, err = envInt("VALKEY_DB", 0)
	errs = append(errs, err)
	cfg.PageCacheTTL, err = envDuration("PAGE_CACHE_TTL", 5*time.Minute)
	errs = append(errs, err)
	cfg.SecureCookies, err = envBool("SESSION_SECURE", env == "production")
	errs = append(errs, err)
	cfg.FormRateLimit, err = envInt("FORM_RATE_LIMIT", 5)
	errs = append(errs, err)
	cfg.LoginRateLimit, err = envInt("LOGIN_RATE_LIMIT", 10)
	errs = append(errs, err)
	cfg.RateWindow, err = envDuration("RATE_LIMIT_WINDOW", time.Minute)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if os.Getenv("ADMIN_PASSWORD") == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether cover uploads can be stored.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

func defaultLogFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "text"
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
