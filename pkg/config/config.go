package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Market struct {
		Benchmark      string        `yaml:"benchmark"`
		Universe       []string      `yaml:"universe"`
		Stage          int           `yaml:"stage"`
		TaskTimeout    time.Duration `yaml:"task_timeout"`
		MaxConcurrency int           `yaml:"max_concurrency"`
		NewsLimit      int           `yaml:"news_limit"`
		TrendLookback  int           `yaml:"trend_lookback_days"`
	} `yaml:"market"`
	QuoteSource struct {
		BaseURL       string        `yaml:"base_url"`
		CookieURL     string        `yaml:"cookie_url"`
		UserAgent     string        `yaml:"user_agent"`
		Timeout       time.Duration `yaml:"timeout"`
		RateLimitRPS  float64       `yaml:"rate_limit_rps"`
		Burst         int           `yaml:"burst"`
		RetryAttempts int           `yaml:"retry_attempts"`
		RetryBackoff  time.Duration `yaml:"retry_backoff"`
		Crumb         bool          `yaml:"crumb"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
	} `yaml:"quote_source"`
	Cache struct {
		Backend     string        `yaml:"backend"`
		ScannerTTL  time.Duration `yaml:"scanner_ttl"`
		ResponseTTL time.Duration `yaml:"response_ttl"`
		Redis       struct {
			Addr     string        `yaml:"addr"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			Prefix   string        `yaml:"prefix"`
			Timeout  time.Duration `yaml:"timeout"`
			LocalTTL time.Duration `yaml:"local_ttl"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Capacity float64 `yaml:"capacity"`
		Refill   float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
	Refresh struct {
		Enabled         bool   `yaml:"enabled"`
		Schedule        string `yaml:"schedule"`
		MarketHoursOnly bool   `yaml:"market_hours_only"`
	} `yaml:"refresh"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		ScanTopic    string   `yaml:"scan_topic"`
		TrendTopic   string   `yaml:"trend_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"tracing"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("UNIVERSE"); v != "" {
		c.Market.Universe = splitList(v)
	}
	if v := os.Getenv("BENCHMARK"); v != "" {
		c.Market.Benchmark = strings.ToUpper(strings.TrimSpace(v))
	}
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		c.QuoteSource.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		if c.Cache.Backend == "memory" {
			c.Cache.Backend = "redis"
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Market.Benchmark == "" {
		c.Market.Benchmark = "SPY"
	}
	if c.Market.Stage == 0 {
		c.Market.Stage = 2
	}
	if c.Market.TaskTimeout == 0 {
		c.Market.TaskTimeout = 20 * time.Second
	}
	if c.Market.MaxConcurrency == 0 {
		c.Market.MaxConcurrency = len(c.Market.Universe)
	}
	if c.Market.NewsLimit == 0 {
		c.Market.NewsLimit = 5
	}
	if c.Market.TrendLookback == 0 {
		c.Market.TrendLookback = 400
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.ScannerTTL == 0 {
		c.Cache.ScannerTTL = 60 * time.Second
	}
	if c.Cache.ResponseTTL == 0 {
		c.Cache.ResponseTTL = 30 * time.Second
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.Refill == 0 {
		c.RateLimit.Refill = 1
	}
	if c.Refresh.Schedule == "" {
		c.Refresh.Schedule = "@every 60s"
	}
	if c.Kafka.ScanTopic == "" {
		c.Kafka.ScanTopic = "swingarrow.scans"
	}
	if c.Kafka.TrendTopic == "" {
		c.Kafka.TrendTopic = "swingarrow.market"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "swingarrow"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Market.Benchmark == "" {
		return fmt.Errorf("market.benchmark is required")
	}
	if len(c.Market.Universe) == 0 {
		return fmt.Errorf("market.universe cannot be empty")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis", "layered":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the %s backend", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.QuoteSource.RateLimitRPS < 0 {
		return fmt.Errorf("quote_source.rate_limit_rps must be >= 0")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
