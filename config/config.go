package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AWS      AWSConfig
	Auth     AuthConfig
	Cache    CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	RememberDays  int // lifetime of a token issued with remember_me
}

// AWSConfig holds AWS credentials and the archive bucket. An empty DocumentsBucket disables archiving.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	DocumentsBucket string
	Endpoint        string
	UsePathStyle    bool
}

// AuthConfig holds the API key gate and the seeded administrator.
type AuthConfig struct {
	APIKey               string
	DefaultAdminUsername string
	DefaultAdminPassword string
}

// CacheConfig holds read-through cache settings.
type CacheConfig struct {
	FormTTL time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads the API server configuration from environment, with optional .env file.
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWorker reads the archive worker configuration. Redis and the documents bucket are required.
func LoadWorker() (*Config, error) {
	cfg := read()
	var missing []string
	if cfg.Redis.Addr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if cfg.AWS.DocumentsBucket == "" {
		missing = append(missing, "AWS_S3_DOCUMENTS_BUCKET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func read() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "guestdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 30),
			RememberDays:  getEnvInt("JWT_REMEMBER_DAYS", 7),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			DocumentsBucket: os.Getenv("AWS_S3_DOCUMENTS_BUCKET"),
			Endpoint:        os.Getenv("AWS_S3_ENDPOINT"),
			UsePathStyle:    getEnvBool("AWS_S3_USE_PATH_STYLE", false),
		},
		Auth: AuthConfig{
			APIKey:               os.Getenv("API_KEY"),
			DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
			DefaultAdminPassword: os.Getenv("DEFAULT_ADMIN_PASSWORD"),
		},
		Cache: CacheConfig{
			FormTTL: time.Duration(getEnvInt("FORM_CACHE_TTL_SEC", 300)) * time.Second,
		},
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Auth.DefaultAdminPassword == "" {
		missing = append(missing, "DEFAULT_ADMIN_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	if c.JWT.ExpireMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRE_MINUTES must be positive")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
