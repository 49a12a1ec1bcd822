package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Extractor     ExtractorConfig
	Notifications NotificationsConfig
	Matching      MatchingConfig
	Exports       ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExtractorConfig configures the document-understanding model client.
type ExtractorConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxFileSize int64
}

// NotificationsConfig controls substitute notification dispatch.
type NotificationsConfig struct {
	Enabled           bool
	MockMode          bool
	BaseURL           string
	APIToken          string
	SenderID          string
	Timeout           time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// MatchingConfig tunes the substitute matching pass.
type MatchingConfig struct {
	Enabled      bool
	PoolCacheTTL time.Duration
}

// ExportsConfig governs leave record exports.
type ExportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("EXTRACTOR_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Extractor = ExtractorConfig{
		BaseURL:     v.GetString("EXTRACTOR_BASE_URL"),
		APIKey:      v.GetString("EXTRACTOR_API_KEY"),
		Model:       v.GetString("EXTRACTOR_MODEL"),
		Timeout:     parseDuration(v.GetString("EXTRACTOR_TIMEOUT"), 30*time.Second),
		MaxFileSize: maxUploadSize,
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:           v.GetBool("ENABLE_NOTIFICATIONS"),
		MockMode:          v.GetBool("NOTIFICATIONS_MOCK_MODE"),
		BaseURL:           v.GetString("NOTIFICATIONS_BASE_URL"),
		APIToken:          v.GetString("NOTIFICATIONS_API_TOKEN"),
		SenderID:          v.GetString("NOTIFICATIONS_SENDER_ID"),
		Timeout:           parseDuration(v.GetString("NOTIFICATIONS_TIMEOUT"), 10*time.Second),
		WorkerConcurrency: v.GetInt("NOTIFICATIONS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFICATIONS_WORKER_RETRIES"),
	}

	cfg.Matching = MatchingConfig{
		Enabled:      v.GetBool("ENABLE_MATCHING"),
		PoolCacheTTL: parseDuration(v.GetString("MATCHING_POOL_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot start with. The extractor
// API key is checked up front so a missing key fails at boot, not on the
// first upload.
func (c *Config) Validate() error {
	if c.Extractor.APIKey == "" {
		return fmt.Errorf("EXTRACTOR_API_KEY is required")
	}
	if c.Extractor.Model == "" {
		return fmt.Errorf("EXTRACTOR_MODEL is required")
	}
	if c.Notifications.Enabled && !c.Notifications.MockMode && c.Notifications.APIToken == "" {
		return fmt.Errorf("NOTIFICATIONS_API_TOKEN is required when notifications are live")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "scholarflow")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXTRACTOR_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("EXTRACTOR_API_KEY", "")
	v.SetDefault("EXTRACTOR_MODEL", "gemini-2.0-flash-exp")
	v.SetDefault("EXTRACTOR_TIMEOUT", "30s")
	v.SetDefault("EXTRACTOR_MAX_FILE_SIZE", 10*1024*1024)

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATIONS_MOCK_MODE", true)
	v.SetDefault("NOTIFICATIONS_BASE_URL", "https://graph.facebook.com")
	v.SetDefault("NOTIFICATIONS_API_TOKEN", "")
	v.SetDefault("NOTIFICATIONS_SENDER_ID", "")
	v.SetDefault("NOTIFICATIONS_TIMEOUT", "10s")
	v.SetDefault("NOTIFICATIONS_WORKER_CONCURRENCY", 1)
	v.SetDefault("NOTIFICATIONS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_MATCHING", true)
	v.SetDefault("MATCHING_POOL_CACHE_TTL", "2m")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
