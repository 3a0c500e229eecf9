package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/session"
	"github.com/platinummonkey/coursebook/pkg/storage"
)

// EnvPrefix prefixes every environment variable read by LoadConfig
const EnvPrefix = "COURSEBOOK_"

// MinSecretLength is the shortest accepted token signing secret, in bytes
const MinSecretLength = 16

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       storage.Config      `yaml:"storage"`
	Session       SessionConfig       `yaml:"session"`
	Observability ObservabilityConfig `yaml:"observability"`
	Audit         AuditConfig         `yaml:"audit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// Addr returns host:port of the API server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// HealthAddr returns host:port of the health and metrics server
func (s ServerConfig) HealthAddr() string {
	return s.Host + ":" + s.HealthPort
}

// AuthConfig holds token and credential settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	// TokenExpiry of zero issues tokens that never expire
	TokenExpiry time.Duration `yaml:"token_expiry"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
}

// SessionConfig holds session store settings. An empty RedisURL selects
// the in-memory store.
type SessionConfig struct {
	RedisURL        string        `yaml:"redis_url"`
	RedisPassword   string        `yaml:"redis_password"`
	RedisDB         int           `yaml:"redis_db"`
	RedisMaxRetries int           `yaml:"redis_max_retries"`
	RedisPoolSize   int           `yaml:"redis_pool_size"`
	TTL             time.Duration `yaml:"ttl"`
	CookieName      string        `yaml:"cookie_name"`
}

// UseRedis reports whether sessions live in Redis
func (s SessionConfig) UseRedis() bool {
	return s.RedisURL != ""
}

// RedisConfig converts the section for session.NewRedisStore
func (s SessionConfig) RedisConfig() session.RedisConfig {
	return session.RedisConfig{
		URL:        s.RedisURL,
		Password:   s.RedisPassword,
		DB:         s.RedisDB,
		MaxRetries: s.RedisMaxRetries,
		PoolSize:   s.RedisPoolSize,
		TTL:        s.TTL,
	}
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"` // Use insecure gRPC connection
}

// Level returns the parsed log level, falling back to info
func (o ObservabilityConfig) Level() observability.LogLevel {
	level, _ := observability.ParseLevel(o.LogLevel)
	return level
}

// OTel converts the section for observability.InitOTel
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
	}
}

// AuditConfig selects the audit trail destinations. Events always go to the
// application log when enabled; a non-empty Dir also appends them to
// Dir/audit.log.
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	MaxSize  int64  `yaml:"max_size"`
	MaxFiles int    `yaml:"max_files"`
}

// FileLogger converts the section for audit.NewFileLogger
func (a AuditConfig) FileLogger() audit.FileLoggerConfig {
	return audit.FileLoggerConfig{
		BasePath: a.Dir,
		Rotate:   true,
		MaxSize:  a.MaxSize,
		MaxFiles: a.MaxFiles,
	}
}

// Default returns the configuration used when nothing is set. It has no
// JWT secret and therefore does not validate on its own.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "4000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			HealthPort:      "9090",
		},
		Auth: AuthConfig{
			BcryptCost: auth.DefaultBcryptCost,
		},
		Storage: storage.DefaultConfig(),
		Session: SessionConfig{
			TTL:        session.DefaultTTL,
			CookieName: "coursebook_session",
		},
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			MetricsEnabled:     true,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "coursebook",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
		Audit: AuditConfig{
			Enabled:  true,
			MaxSize:  100 * 1024 * 1024,
			MaxFiles: 10,
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by COURSEBOOK_CONFIG_FILE and the environment, in that order.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := getEnv(EnvPrefix+"CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path onto c
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.applyServerEnv()
	c.applyAuthEnv()
	c.applyStorageEnv()
	c.applySessionEnv()
	c.applyObservabilityEnv()
	c.applyAuditEnv()
}

func (c *Config) applyServerEnv() {
	s := &c.Server
	s.Host = getEnv(EnvPrefix+"HOST", s.Host)
	s.Port = getEnv(EnvPrefix+"PORT", s.Port)
	s.HealthPort = getEnv(EnvPrefix+"HEALTH_PORT", s.HealthPort)
	s.ReadTimeout = getEnvDuration(EnvPrefix+"READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getEnvDuration(EnvPrefix+"WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = getEnvDuration(EnvPrefix+"IDLE_TIMEOUT", s.IdleTimeout)
	s.ShutdownTimeout = getEnvDuration(EnvPrefix+"SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	s.MaxBodyBytes = getEnvInt64(EnvPrefix+"MAX_BODY_BYTES", s.MaxBodyBytes)
	s.CORSOrigins = getEnvList(EnvPrefix+"CORS_ORIGINS", s.CORSOrigins)
}

func (c *Config) applyAuthEnv() {
	a := &c.Auth
	a.JWTSecret = getEnv(EnvPrefix+"JWT_SECRET", a.JWTSecret)
	a.TokenExpiry = getEnvDuration(EnvPrefix+"TOKEN_EXPIRY", a.TokenExpiry)
	a.BcryptCost = getEnvInt(EnvPrefix+"BCRYPT_COST", a.BcryptCost)
}

func (c *Config) applyStorageEnv() {
	s := &c.Storage
	s.Type = getEnv(EnvPrefix+"STORAGE_TYPE", s.Type)
	s.PostgresURL = getEnv(EnvPrefix+"POSTGRES_URL", s.PostgresURL)
	if maxConns := getEnvInt(EnvPrefix+"POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		s.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt(EnvPrefix+"POSTGRES_MIN_CONNS", 0); minConns > 0 {
		s.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration(EnvPrefix+"POSTGRES_TIMEOUT", 0); timeout > 0 {
		s.PostgresTimeout = timeout
	}
	s.RunMigrations = getEnvBool(EnvPrefix+"RUN_MIGRATIONS", s.RunMigrations)
}

func (c *Config) applySessionEnv() {
	s := &c.Session
	s.RedisURL = getEnv(EnvPrefix+"REDIS_URL", s.RedisURL)
	s.RedisPassword = getEnv(EnvPrefix+"REDIS_PASSWORD", s.RedisPassword)
	if redisDB := getEnvInt(EnvPrefix+"REDIS_DB", -1); redisDB >= 0 {
		s.RedisDB = redisDB
	}
	if maxRetries := getEnvInt(EnvPrefix+"REDIS_MAX_RETRIES", 0); maxRetries > 0 {
		s.RedisMaxRetries = maxRetries
	}
	if poolSize := getEnvInt(EnvPrefix+"REDIS_POOL_SIZE", 0); poolSize > 0 {
		s.RedisPoolSize = poolSize
	}
	s.TTL = getEnvDuration(EnvPrefix+"SESSION_TTL", s.TTL)
	s.CookieName = getEnv(EnvPrefix+"SESSION_COOKIE", s.CookieName)
}

func (c *Config) applyObservabilityEnv() {
	o := &c.Observability
	o.LogLevel = getEnv(EnvPrefix+"LOG_LEVEL", o.LogLevel)
	o.MetricsEnabled = getEnvBool(EnvPrefix+"METRICS_ENABLED", o.MetricsEnabled)
	o.OTelEnabled = getEnvBool(EnvPrefix+"OTEL_ENABLED", o.OTelEnabled)
	o.OTelEndpoint = getEnv(EnvPrefix+"OTEL_ENDPOINT", o.OTelEndpoint)
	o.OTelServiceName = getEnv(EnvPrefix+"OTEL_SERVICE_NAME", o.OTelServiceName)
	o.OTelServiceVersion = getEnv(EnvPrefix+"OTEL_SERVICE_VERSION", o.OTelServiceVersion)
	o.OTelInsecure = getEnvBool(EnvPrefix+"OTEL_INSECURE", o.OTelInsecure)
}

func (c *Config) applyAuditEnv() {
	a := &c.Audit
	a.Enabled = getEnvBool(EnvPrefix+"AUDIT_ENABLED", a.Enabled)
	a.Dir = getEnv(EnvPrefix+"AUDIT_DIR", a.Dir)
	a.MaxSize = getEnvInt64(EnvPrefix+"AUDIT_MAX_SIZE", a.MaxSize)
	a.MaxFiles = getEnvInt(EnvPrefix+"AUDIT_MAX_FILES", a.MaxFiles)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate auth config
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d bytes", MinSecretLength)
	}
	if c.Auth.TokenExpiry < 0 {
		return fmt.Errorf("token expiry must not be negative")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Validate storage config based on type
	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory or postgres)", c.Storage.Type)
	}

	if _, err := observability.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	if c.Audit.Dir != "" && (c.Audit.MaxSize <= 0 || c.Audit.MaxFiles <= 0) {
		return fmt.Errorf("audit max size and max files must be positive")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
