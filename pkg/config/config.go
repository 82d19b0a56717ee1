package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" env:"PORT" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" env:"SLOW_THRESHOLD" default:"2s"`
		CORS            bool          `yaml:"cors" env:"CORS"`
	} `yaml:"server" envPrefix:"SERVER_"`
	Logger struct {
		Level  string `yaml:"level" env:"LEVEL" default:"info"`
		Format string `yaml:"format" env:"FORMAT" default:"console"`
		Output string `yaml:"output" env:"OUTPUT" default:"stdout"`
		// errors are aggregated and shipped to Kafka when set and Kafka is enabled
		CollectorTopic    string        `yaml:"collector_topic" env:"COLLECTOR_TOPIC"`
		CollectorInterval time.Duration `yaml:"collector_interval" env:"COLLECTOR_INTERVAL" default:"30s"`
	} `yaml:"logger" envPrefix:"LOG_"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"ENABLED" default:"true"`
		Path    string `yaml:"path" env:"PATH" default:"/metrics"`
	} `yaml:"metrics" envPrefix:"METRICS_"`
	Database struct {
		Driver          string        `yaml:"driver" env:"DRIVER" default:"sqlite"`
		DSN             string        `yaml:"dsn" env:"DSN" default:"data/trendwatch.db"`
		MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS" default:"10"`
		MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" default:"30m"`
	} `yaml:"database" envPrefix:"DB_"`
	Session struct {
		CookieName string        `yaml:"cookie_name" env:"COOKIE_NAME" default:"trendwatch_session"`
		TTL        time.Duration `yaml:"ttl" env:"TTL" default:"24h"`
		Secure     bool          `yaml:"secure" env:"SECURE"`
	} `yaml:"session" envPrefix:"SESSION_"`
	Cache struct {
		Backend       string        `yaml:"backend" env:"BACKEND" default:"memory"`
		PriceTTL      time.Duration `yaml:"price_ttl" env:"PRICE_TTL" default:"15m"`
		MemoryMaxSize int           `yaml:"memory_max_size" env:"MEMORY_MAX_SIZE" default:"1000"`
		L1TTL         time.Duration `yaml:"l1_ttl" env:"L1_TTL" default:"30s"`
		Redis         struct {
			Host     string `yaml:"host" env:"HOST" default:"localhost"`
			Port     int    `yaml:"port" env:"PORT" default:"6379"`
			Password string `yaml:"password" env:"PASSWORD"`
			DB       int    `yaml:"db" env:"DB"`
			Prefix   string `yaml:"prefix" env:"PREFIX" default:"trendwatch"`
		} `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"cache" envPrefix:"CACHE_"`
	MarketData struct {
		BaseURL      string        `yaml:"base_url" env:"BASE_URL" default:"https://query1.finance.yahoo.com"`
		Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT" default:"15s"`
		PeriodMonths int           `yaml:"period_months" env:"PERIOD_MONTHS" default:"6"`
		UserAgent    string        `yaml:"user_agent" env:"USER_AGENT" default:"Mozilla/5.0"`
	} `yaml:"market_data" envPrefix:"MARKET_DATA_"`
	Forecast struct {
		MinPoints   int `yaml:"min_points" env:"MIN_POINTS" default:"30"`
		HorizonDays int `yaml:"horizon_days" env:"HORIZON_DAYS" default:"30"`
	} `yaml:"forecast" envPrefix:"FORECAST_"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity" env:"CAPACITY" default:"10"`
		RefillPerSec float64 `yaml:"refill_per_sec" env:"REFILL_PER_SEC" default:"0.2"`
	} `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled" env:"ENABLED"`
		Brokers      []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
		Topic        string   `yaml:"topic" env:"TOPIC" default:"trendwatch.watchlist"`
		RequiredAcks int      `yaml:"required_acks" env:"REQUIRED_ACKS" default:"-1"`
		Compression  string   `yaml:"compression" env:"COMPRESSION" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" env:"MAX_ATTEMPTS" default:"3"`
			Linger       time.Duration `yaml:"linger" env:"LINGER" default:"100ms"`
			BatchSize    int           `yaml:"batch_size" env:"BATCH_SIZE" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"10s"`
			Async        bool          `yaml:"async" env:"ASYNC"`
		} `yaml:"producer" envPrefix:"PRODUCER_"`
	} `yaml:"kafka" envPrefix:"KAFKA_"`
}

// EnvPrefix is prepended to every environment override, e.g. TW_SERVER_PORT.
const EnvPrefix = "TW_"

// Load applies struct defaults, then the YAML file at path if it exists.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(b) > 0 {
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides it with TW_* environment variables
// and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got '%s'", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if c.MarketData.PeriodMonths <= 0 {
		return fmt.Errorf("market_data.period_months must be positive")
	}
	if c.Forecast.MinPoints < 2 {
		return fmt.Errorf("forecast.min_points must be at least 2")
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizon_days must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
