package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/johnquangdev/ifocus/pkg/validator"
)

// Config holds application configuration
type Config struct {
	Environment string `default:"development" validate:"oneof=development staging production test"`

	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Storage  StorageConfig  `envconfig:"STORAGE"`
	Kafka    KafkaConfig    `envconfig:"KAFKA"`
	LLM      LLMConfig      `envconfig:"LLM"`
	Worker   WorkerConfig   `envconfig:"WORKER"`
	Heatmap  HeatmapConfig  `envconfig:"HEATMAP"`
	Log      LogConfig      `envconfig:"LOG"`
}

// DatabaseConfig holds database configuration. Path is only used by the
// sqlite driver.
type DatabaseConfig struct {
	Driver      string `default:"postgres" validate:"oneof=postgres sqlite"`
	Host        string `default:"localhost"`
	Port        string `default:"5432"`
	User        string `default:"postgres"`
	Password    string `default:"postgres"`
	Name        string `default:"ifocus"`
	SSLMode     string `default:"disable"`
	MaxConns    int    `split_words:"true" default:"25" validate:"min=1"`
	MinConns    int    `split_words:"true" default:"5" validate:"min=0"`
	Path        string `default:"instance/ifocus.db" validate:"required_if=Driver sqlite"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration. An empty Addr disables Redis and
// pair claims fall back to an in-process lock.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `default:"0"`
}

// StorageConfig holds heatmap storage configuration
type StorageConfig struct {
	Type      string `default:"local" validate:"oneof=local minio"`
	Dir       string `default:"static" validate:"required_if=Type local"`
	Endpoint  string `validate:"required_if=Type minio"`
	AccessKey string `split_words:"true"`
	SecretKey string `split_words:"true"`
	Bucket    string `default:"ifocus"`
	UseSSL    bool   `split_words:"true" default:"false"`
}

// KafkaConfig holds report event configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string `default:"ifocus.focus-reports"`
}

// LLMConfig selects and configures the text generation backend
type LLMConfig struct {
	Backend     string `default:"openai" validate:"oneof=openai groq ollama"`
	BaseURL     string `split_words:"true"`
	APIKey      string `split_words:"true" validate:"required_if=Backend openai,required_if=Backend groq"`
	Model       string
	Temperature float64       `default:"0" validate:"min=0,max=2"`
	MaxTokens   int           `split_words:"true" default:"1024" validate:"min=1"`
	Timeout     time.Duration `default:"60s"`
}

// WorkerConfig controls the insight batch run
type WorkerConfig struct {
	Concurrency int           `default:"4" validate:"min=1,max=64"`
	JobTimeout  time.Duration `split_words:"true" default:"5m"`
	MaxRetries  int           `split_words:"true" default:"3" validate:"min=1,max=10"`
	ClaimTTL    time.Duration `split_words:"true" default:"10m"`
}

// HeatmapConfig holds heatmap rendering configuration
type HeatmapConfig struct {
	Bins int `default:"50" validate:"min=1,max=500"`
}

// LogConfig holds logger configuration. An empty Dir disables file output.
type LogConfig struct {
	Level      string `default:"info" validate:"oneof=debug info warn error"`
	Dir        string
	MaxSizeMB  int  `split_words:"true" default:"100"`
	MaxBackups int  `split_words:"true" default:"5"`
	MaxAgeDays int  `split_words:"true" default:"30"`
	Compress   bool `default:"true"`
}

// Load loads configuration from the given .env files (".env" when none are
// given) and the process environment. Missing .env files are ignored;
// variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Validate(c)
}

// GetDatabaseDSN returns the Postgres connection string
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

// RedisEnabled reports whether a Redis address is configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// KafkaEnabled reports whether report events should be published
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
