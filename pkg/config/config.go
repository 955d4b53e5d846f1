package config

import (
	"errors"
	"strconv"
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

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Escalation EscalationConfig
	Notifier   NotifierConfig
	Catalog    CatalogConfig
	Archive    ArchiveConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EscalationConfig governs the automatic reprimand thresholds.
type EscalationConfig struct {
	// DefaultDivisor triggers a reprimand on every Nth report of a category.
	DefaultDivisor int
	// EveningDivisor applies to service absences whose service name matches
	// one of EveningKeywords.
	EveningDivisor  int
	EveningKeywords []string
	// CategoryDivisors overrides the divisor per category code, e.g.
	// "discipline=3,damages=2". Takes precedence over name matching.
	CategoryDivisors map[string]int
}

// NotifierConfig configures best-effort push notification delivery.
type NotifierConfig struct {
	Enabled    bool
	Endpoint   string
	ServerKey  string
	Timeout    time.Duration
	Workers    int
	BufferSize int
	MaxRetries int
}

// CatalogConfig tunes read-side caching of slow-changing catalogs.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// ArchiveConfig controls on-disk retention of generated slip documents
// and the lifetime of signed download links.
type ArchiveConfig struct {
	Dir        string
	LinkSecret string
	LinkTTL    time.Duration
	Retention  time.Duration
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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Escalation = EscalationConfig{
		DefaultDivisor:   v.GetInt("ESCALATION_DEFAULT_DIVISOR"),
		EveningDivisor:   v.GetInt("ESCALATION_EVENING_DIVISOR"),
		EveningKeywords:  splitAndTrim(v.GetString("ESCALATION_EVENING_KEYWORDS")),
		CategoryDivisors: parseDivisors(v.GetString("ESCALATION_CATEGORY_DIVISORS")),
	}

	cfg.Notifier = NotifierConfig{
		Enabled:    v.GetBool("NOTIFIER_ENABLED"),
		Endpoint:   v.GetString("NOTIFIER_ENDPOINT"),
		ServerKey:  v.GetString("NOTIFIER_SERVER_KEY"),
		Timeout:    parseDuration(v.GetString("NOTIFIER_TIMEOUT"), 5*time.Second),
		Workers:    v.GetInt("NOTIFIER_WORKERS"),
		BufferSize: v.GetInt("NOTIFIER_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFIER_MAX_RETRIES"),
	}

	cfg.Catalog = CatalogConfig{
		CacheTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Archive = ArchiveConfig{
		Dir:        v.GetString("ARCHIVE_DIR"),
		LinkSecret: v.GetString("ARCHIVE_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("ARCHIVE_LINK_TTL"), 24*time.Hour),
		Retention:  parseDuration(v.GetString("ARCHIVE_RETENTION"), 30*24*time.Hour),
	}
	if cfg.Archive.LinkSecret == "" {
		cfg.Archive.LinkSecret = cfg.JWT.Secret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "dormi")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ESCALATION_DEFAULT_DIVISOR", 3)
	v.SetDefault("ESCALATION_EVENING_DIVISOR", 2)
	v.SetDefault("ESCALATION_EVENING_KEYWORDS", "vespertin,evening")
	v.SetDefault("ESCALATION_CATEGORY_DIVISORS", "")

	v.SetDefault("NOTIFIER_ENABLED", false)
	v.SetDefault("NOTIFIER_ENDPOINT", "")
	v.SetDefault("NOTIFIER_SERVER_KEY", "")
	v.SetDefault("NOTIFIER_TIMEOUT", "5s")
	v.SetDefault("NOTIFIER_WORKERS", 2)
	v.SetDefault("NOTIFIER_BUFFER_SIZE", 64)
	v.SetDefault("NOTIFIER_MAX_RETRIES", 2)

	v.SetDefault("CATALOG_CACHE_TTL", "10m")

	v.SetDefault("ARCHIVE_DIR", "./archive")
	v.SetDefault("ARCHIVE_LINK_SECRET", "")
	v.SetDefault("ARCHIVE_LINK_TTL", "24h")
	v.SetDefault("ARCHIVE_RETENTION", "720h")
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

func parseDivisors(raw string) map[string]int {
	entries := splitAndTrim(raw)
	if len(entries) == 0 {
		return nil
	}

	result := make(map[string]int, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		divisor, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || divisor <= 0 {
			continue
		}
		result[strings.TrimSpace(key)] = divisor
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
