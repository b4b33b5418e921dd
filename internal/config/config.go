package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ADVENT_SERVER_PORT.
const EnvPrefix = "ADVENT"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Content  ContentConfig  `mapstructure:"content"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Template TemplateConfig `mapstructure:"template"`
	Store    StoreConfig    `mapstructure:"store"`
	Snow     SnowConfig     `mapstructure:"snow"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CalendarConfig controls gating. Year 0 means the current year at startup.
type CalendarConfig struct {
	Year          int           `mapstructure:"year" validate:"min=0,max=9999"`
	Timezone      string        `mapstructure:"timezone"`
	NoticeDismiss time.Duration `mapstructure:"notice_dismiss" validate:"gt=0"`
}

// ContentConfig points at the DayEntry document (file path or http(s) URL)
type ContentConfig struct {
	Source  string        `mapstructure:"source" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// AssetsConfig is the directory photos are served from
type AssetsConfig struct {
	Dir string `mapstructure:"dir"`
}

// TemplateConfig optionally replaces the embedded host document
type TemplateConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig selects where opened windows are persisted
type StoreConfig struct {
	Driver        string `mapstructure:"driver" validate:"oneof=file sqlite redis"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"min=0"`
}

// SnowConfig holds the ambient animation parameters
type SnowConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval" validate:"gt=0"`
	InitialBatch int           `mapstructure:"initial_batch" validate:"min=0"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Output   string `mapstructure:"output" validate:"oneof=stdout file"`
	Filename string `mapstructure:"filename"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SecurityConfig holds per-client rate limits for the open endpoints
type SecurityConfig struct {
	RateLimitRequests int `mapstructure:"rate_limit_requests" validate:"min=0"`
	RateLimitBurst    int `mapstructure:"rate_limit_burst" validate:"min=0"`
}

// Load loads configuration from defaults, an optional config file, .env and the environment.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Location resolves the configured time zone; empty or "Local" is the host zone.
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	// The snow stream is long-lived, so writes are not bounded by default.
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "120s")

	v.SetDefault("calendar.year", 0)
	v.SetDefault("calendar.timezone", "Local")
	v.SetDefault("calendar.notice_dismiss", "3s")

	v.SetDefault("content.source", "content.json")
	v.SetDefault("content.timeout", "10s")

	v.SetDefault("assets.dir", "static")
	v.SetDefault("template.path", "")

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "data")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)

	v.SetDefault("snow.enabled", true)
	v.SetDefault("snow.interval", "300ms")
	v.SetDefault("snow.initial_batch", 30)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("security.rate_limit_requests", 10)
	v.SetDefault("security.rate_limit_burst", 20)
}

func validateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if _, err := cfg.Calendar.Location(); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", cfg.Calendar.Timezone, err)
	}

	if cfg.Store.Driver != "redis" && cfg.Store.Path == "" {
		return errors.New("store path is required for file and sqlite stores")
	}

	if cfg.Logger.Output == "file" && cfg.Logger.Filename == "" {
		return errors.New("logger filename is required when output is file")
	}

	return nil
}
