package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LLM providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Retry    RetryConfig
	Analysis AnalysisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"postgres"`
	SQLitePath  string `envconfig:"DB_SQLITE_PATH" default:"meeting-analyzer.db"`
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_analyzer"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// JWTConfig holds the settings used to verify tokens issued by the auth provider
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET"`
	Issuer string `envconfig:"JWT_ISSUER"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"MINIO_ACCESS_KEY"`
	SecretAccessKey string `envconfig:"MINIO_SECRET_KEY"`
	BucketName      string `envconfig:"MINIO_BUCKET" default:"transcripts"`
	UseSSL          bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

// LLMConfig selects and configures the language-model backend
type LLMConfig struct {
	Provider    string        `envconfig:"LLM_PROVIDER" default:"openai"`
	BaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://api.groq.com/openai/v1"`
	APIKey      string        `envconfig:"LLM_API_KEY"`
	Model       string        `envconfig:"LLM_MODEL" default:"llama-3.3-70b-versatile"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	// AttemptTimeout bounds one model call; 0 splits Timeout across the retry attempts
	AttemptTimeout time.Duration `envconfig:"LLM_ATTEMPT_TIMEOUT" default:"0s"`
}

// RetryConfig controls the backoff policy around external calls
type RetryConfig struct {
	MaxAttempts  int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	BaseInterval time.Duration `envconfig:"RETRY_BASE_INTERVAL" default:"1s"`
	MaxInterval  time.Duration `envconfig:"RETRY_MAX_INTERVAL" default:"10s"`
}

// AnalysisConfig holds pipeline tuning
type AnalysisConfig struct {
	LockTTL        time.Duration `envconfig:"ANALYSIS_LOCK_TTL" default:"3m"`
	CacheTTL       time.Duration `envconfig:"ANALYSIS_CACHE_TTL" default:"10m"`
	PersistTimeout time.Duration `envconfig:"ANALYSIS_PERSIST_TIMEOUT" default:"15s"`
	ReconcileCron  string        `envconfig:"ANALYSIS_RECONCILE_CRON" default:"@every 5m"`
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads the environment without validating it. Commands that only
// touch the database use it so they run without LLM credentials.
func Parse() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.LLM.Provider)
	}
	if c.Database.Driver != "" && c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Storage.Enabled && (c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when storage is enabled")
	}
	return nil
}

// LLMAttemptTimeout is the deadline of a single model call. It stays below
// LLM_TIMEOUT so a timed-out attempt leaves room for a retry.
func (c *Config) LLMAttemptTimeout() time.Duration {
	if c.LLM.AttemptTimeout > 0 && (c.LLM.Timeout <= 0 || c.LLM.AttemptTimeout < c.LLM.Timeout) {
		return c.LLM.AttemptTimeout
	}
	attempts := c.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return c.LLM.Timeout / time.Duration(attempts)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
