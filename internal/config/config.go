package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"dev"`
	// Debug enables verbose logging and dev-only routes
	Debug       bool   `yaml:"debug" env:"DEBUG" env-default:"false"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	LLM      LLMConfig      `yaml:"llm"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port          string        `yaml:"port" env:"PORT" env-default:"8080"`
	PublicURL     string        `yaml:"public_url" env:"PUBLIC_URL" env-default:"http://localhost:8080"`
	CORSOrigins   []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace" env:"SERVER_SHUTDOWN_GRACE" env-default:"10s"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url" env:"DATABASE_URL"`
	MaxConns    int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"25"`
	MinConns    int32  `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"5"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"docvault"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"168h"`
	// JWKSURL switches verification to an external identity provider
	JWKSURL   string        `yaml:"jwks_url" env:"AUTH_JWKS_URL"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"local"`
	LocalDir  string `yaml:"local_dir" env:"STORAGE_LOCAL_DIR" env-default:"uploads"`
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"documents"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type LLMConfig struct {
	AnthropicAPIKey string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	DefaultModel    string        `yaml:"default_model" env:"DEFAULT_MODEL" env-default:"claude-haiku"`
	MaxTokens       int64         `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"300"`
	Timeout         time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"20s"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format   string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	Dir      string `yaml:"dir" env:"LOG_DIR"`
	MaxFiles int    `yaml:"max_files" env:"LOG_MAX_FILES" env-default:"10"`
}

// Load reads configuration from the YAML file named by CONFIG_PATH when set,
// falling back to environment variables only. Environment always wins over file values.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if cfg.Environment == "dev" && cfg.Log.Format == "json" && os.Getenv("LOG_FORMAT") == "" {
		cfg.Log.Format = "text"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET or AUTH_JWKS_URL is required in prod"))
		} else {
			c.Auth.JWTSecret = "dev-secret-change-me"
		}
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) > 0 && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in prod"))
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "local", "minio":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.Storage.Driver == "minio" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio driver"))
	}
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, errors.New("DB_MIN_CONNS cannot exceed DB_MAX_CONNS"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}
