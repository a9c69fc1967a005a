package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ledger    LedgerConfig
	Cache     CacheConfig
	Upload    UploadConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig holds the ledger store connection settings.
// Driver is either "postgres" or "sqlite3".
type DatabaseConfig struct {
	Driver             string
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
	AutoMigrate        bool
}

// AuthConfig holds identity token settings
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	AdminRole string
}

// LedgerConfig tunes the transaction primitive and redemption rules
type LedgerConfig struct {
	TxMaxRetries        int
	TxRetryDelay        time.Duration
	TxTimeout           time.Duration
	VoucherValidityDays int
}

// CacheConfig selects the catalog cache provider
type CacheConfig struct {
	Provider   string
	RedisURL   string
	CatalogTTL time.Duration
}

// UploadConfig selects the image upload backend
type UploadConfig struct {
	Provider    string // cloudinary, r2, none
	Folder      string
	MaxFileSize int64
	MaxRetries  int
	Timeout     time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string
	CDNBaseURL        string
}

// SchedulerConfig controls background jobs
type SchedulerConfig struct {
	Enabled           bool
	VoucherSweepEvery time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load reads configuration from the environment.
// Outside production a .env.<GO_ENV> file (or .env) is loaded first.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	cfg := &Config{
		Server:    loadServerConfig(env),
		Database:  loadDatabaseConfig(env),
		Auth:      loadAuthConfig(),
		Ledger:    loadLedgerConfig(),
		Cache:     loadCacheConfig(),
		Upload:    loadUploadConfig(),
		Scheduler: loadSchedulerConfig(),
		Logging:   LoggingConfig{Level: getEnv("LOG_LEVEL", getDefaultLogLevel(env))},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		CORSOrigins:     getListEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

func loadDatabaseConfig(env string) DatabaseConfig {
	driver := getEnv("DB_DRIVER", "postgres")
	cfg := DatabaseConfig{
		Driver:             driver,
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 0),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 0),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 0),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 0),
		AutoMigrate:        getBoolEnv("DB_AUTO_MIGRATE", true),
	}
	if cfg.URL == "" && driver == "sqlite3" {
		cfg.URL = "recyclehub.db"
	}
	optimizeDatabaseForEnvironment(&cfg, env)
	return cfg
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),
		AdminRole: getEnv("ADMIN_ROLE", "admin"),
	}
}

func loadLedgerConfig() LedgerConfig {
	return LedgerConfig{
		TxMaxRetries:        getIntEnv("LEDGER_TX_MAX_RETRIES", 5),
		TxRetryDelay:        getDurationEnv("LEDGER_TX_RETRY_DELAY", 20*time.Millisecond),
		TxTimeout:           getDurationEnv("LEDGER_TX_TIMEOUT", 10*time.Second),
		VoucherValidityDays: getIntEnv("VOUCHER_VALIDITY_DAYS", 30),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:   getEnv("CACHE_PROVIDER", "memory"),
		RedisURL:   getEnv("REDIS_URL", ""),
		CatalogTTL: getDurationEnv("CATALOG_CACHE_TTL", 5*time.Minute),
	}
}

func loadUploadConfig() UploadConfig {
	return UploadConfig{
		Provider:            getEnv("UPLOAD_PROVIDER", "none"),
		Folder:              getEnv("UPLOAD_FOLDER", "recycle-proofs"),
		MaxFileSize:         getInt64Env("MAX_FILE_SIZE", 10*1024*1024),
		MaxRetries:          getIntEnv("UPLOAD_MAX_RETRIES", 3),
		Timeout:             getDurationEnv("UPLOAD_TIMEOUT", 30*time.Second),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		R2AccountID:         getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		R2AccessKeyID:       getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret:   getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2Bucket:            getEnv("R2_BUCKET_NAME", ""),
		CDNBaseURL:          getEnv("CDN_BASE_URL", ""),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           getBoolEnv("SCHEDULER_ENABLED", true),
		VoucherSweepEvery: getDurationEnv("VOUCHER_SWEEP_INTERVAL", time.Hour),
	}
}

// optimizeDatabaseForEnvironment fills pool defaults that were not set explicitly
func optimizeDatabaseForEnvironment(cfg *DatabaseConfig, env string) {
	if cfg.Driver == "sqlite3" {
		// single writer
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
		if cfg.SlowQueryThreshold == 0 {
			cfg.SlowQueryThreshold = 50 * time.Millisecond
		}
		return
	}

	switch env {
	case "production":
		if cfg.MaxOpenConns == 0 {
			cfg.MaxOpenConns = 50
		}
		if cfg.MaxIdleConns == 0 {
			cfg.MaxIdleConns = 20
		}
		if cfg.ConnMaxLifetime == 0 {
			cfg.ConnMaxLifetime = 15 * time.Minute
		}
		if cfg.SlowQueryThreshold == 0 {
			cfg.SlowQueryThreshold = 200 * time.Millisecond
		}
	default:
		if cfg.MaxOpenConns == 0 {
			cfg.MaxOpenConns = 10
		}
		if cfg.MaxIdleConns == 0 {
			cfg.MaxIdleConns = 5
		}
		if cfg.ConnMaxLifetime == 0 {
			cfg.ConnMaxLifetime = 5 * time.Minute
		}
		if cfg.SlowQueryThreshold == 0 {
			cfg.SlowQueryThreshold = 100 * time.Millisecond
		}
	}

	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		cfg.MaxIdleConns = cfg.MaxOpenConns
	}
}

// ===============================
// VALIDATION
// ===============================

// Validate validates the whole configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger config: %w", err)
	}
	if err := c.Upload.Validate(); err != nil {
		return fmt.Errorf("upload config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(s.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", s.Port)
	}
	return nil
}

// Validate validates database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if d.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

// Validate validates auth configuration. Production refuses short secrets.
func (a *AuthConfig) Validate(env string) error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if env == "production" && len(a.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}

// Validate validates ledger configuration
func (l *LedgerConfig) Validate() error {
	if l.TxMaxRetries < 0 {
		return fmt.Errorf("LEDGER_TX_MAX_RETRIES cannot be negative")
	}
	if l.VoucherValidityDays < 1 {
		return fmt.Errorf("VOUCHER_VALIDITY_DAYS must be at least 1")
	}
	return nil
}

// Validate validates the upload backend settings
func (u *UploadConfig) Validate() error {
	switch u.Provider {
	case "none", "":
	case "cloudinary":
		if u.CloudinaryCloudName == "" || u.CloudinaryAPIKey == "" || u.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary credentials are missing")
		}
	case "r2":
		if u.R2AccountID == "" || u.R2AccessKeyID == "" || u.R2AccessKeySecret == "" || u.R2Bucket == "" {
			return fmt.Errorf("r2 credentials are missing")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_PROVIDER %q", u.Provider)
	}
	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}
