// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-in-production"

// AuthConfig holds operator authentication settings.
type AuthConfig struct {
	JWTSecret    string // HS256 shared secret for bearer tokens
	APIKeyHeader string // header carrying API keys (default: X-API-Key)
}

// WarehouseConfig selects the warehouse driver and the location of the
// audit log objects.
type WarehouseConfig struct {
	Driver        string // snowflake or duckdb (default duckdb)
	DSN           string // driver DSN; empty DuckDB DSN is in-memory
	AuditDatabase string // default SECURITY
	AuditSchema   string // default ACCESS_CONTROL
	AutoBootstrap bool   // create log objects on serve
}

// Config holds the configuration of the console server and CLI.
type Config struct {
	MetaDBPath       string // path to the SQLite console metastore
	ListenAddr       string // HTTP listen address (default ":8080")
	LogLevel         string // log level: debug, info, warn, error (default "info")
	Env              string // environment: "development" (default) or "production"
	EnvironmentsFile string // optional YAML file of deployment environments

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	MetadataCacheTTL time.Duration // reuse of database and role lists (default 30s)

	Auth      AuthConfig
	Warehouse WarehouseConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		MetaDBPath:       os.Getenv("META_DB_PATH"),
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Env:              os.Getenv("ENV"),
		EnvironmentsFile: os.Getenv("ENVIRONMENTS_FILE"),
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			APIKeyHeader: os.Getenv("AUTH_API_KEY_HEADER"),
		},
		Warehouse: WarehouseConfig{
			Driver:        strings.ToLower(os.Getenv("WAREHOUSE_DRIVER")),
			DSN:           os.Getenv("WAREHOUSE_DSN"),
			AuditDatabase: os.Getenv("AUDIT_DATABASE"),
			AuditSchema:   os.Getenv("AUDIT_SCHEMA"),
			AutoBootstrap: parseBoolEnvDefault("AUDIT_AUTO_BOOTSTRAP", false),
		},
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	if v := os.Getenv("METADATA_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("METADATA_CACHE_TTL: %w", err)
		}
		cfg.MetadataCacheTTL = d
	}

	// Defaults
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "prism_meta.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.MetadataCacheTTL == 0 {
		cfg.MetadataCacheTTL = 30 * time.Second
	}
	if cfg.Auth.APIKeyHeader == "" {
		cfg.Auth.APIKeyHeader = "X-API-Key"
	}
	if cfg.Warehouse.Driver == "" {
		cfg.Warehouse.Driver = "duckdb"
		cfg.Warnings = append(cfg.Warnings, "WAREHOUSE_DRIVER not set, using an in-process DuckDB warehouse")
	}
	if cfg.Warehouse.Driver != "duckdb" && cfg.Warehouse.Driver != "snowflake" {
		return nil, fmt.Errorf("WAREHOUSE_DRIVER must be snowflake or duckdb, got %q", cfg.Warehouse.Driver)
	}
	if cfg.Warehouse.Driver == "snowflake" && cfg.Warehouse.DSN == "" {
		return nil, fmt.Errorf("WAREHOUSE_DSN is required for the snowflake driver")
	}
	if cfg.Warehouse.AuditDatabase == "" {
		cfg.Warehouse.AuditDatabase = "SECURITY"
	}
	if cfg.Warehouse.AuditSchema == "" {
		cfg.Warehouse.AuditSchema = "ACCESS_CONTROL"
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using insecure default. Set JWT_SECRET in production!")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.Auth.JWTSecret == devJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	default:
		return defaultVal
	}
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
