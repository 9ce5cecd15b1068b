package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"FxPulse/pkg/logger"
	"FxPulse/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FREDSeries maps one FRED series to a currency and indicator title.
type FREDSeries struct {
	ID       string `yaml:"id" validate:"required"`
	Currency string `yaml:"currency" validate:"required,len=3"`
	Title    string `yaml:"title" validate:"required"`
}

// RSSFeed is one news feed. Currency is the default tag for items that name no currency.
type RSSFeed struct {
	URL      string `yaml:"url" validate:"required,url"`
	Currency string `yaml:"currency"`
}

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Backend struct {
		Type         string        `yaml:"type" default:"sqlite" validate:"oneof=kafka clickhouse sqlite"`
		BatchSize    int           `yaml:"batch_size" default:"500" validate:"gte=1"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"2s"`
	} `yaml:"backend"`
	Collector struct {
		Mode           string        `yaml:"mode" default:"live" validate:"oneof=live demo"`
		Schedule       string        `yaml:"schedule" default:"@every 15m" validate:"required"`
		Currencies     []string      `yaml:"currencies" default:"[\"USD\",\"EUR\",\"GBP\",\"JPY\",\"AUD\",\"CAD\",\"CHF\",\"NZD\"]" validate:"min=1,dive,len=3,uppercase"`
		MaxConcurrency int           `yaml:"max_concurrency" default:"4" validate:"gte=1,lte=64"`
		DelayMin       time.Duration `yaml:"delay_min" default:"1s"`
		DelayMax       time.Duration `yaml:"delay_max" default:"5s"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"20s"`
		RateLimitRPM   int           `yaml:"rate_limit_rpm" default:"30" validate:"gte=1"`
		MaxRetries     int           `yaml:"max_retries" default:"2" validate:"gte=0,lte=10"`
		Window         time.Duration `yaml:"window" default:"2160h"`
		UserAgent      string        `yaml:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`
	} `yaml:"collector"`
	Sources struct {
		CalendarJSON struct {
			Disabled bool     `yaml:"disabled"`
			URLs     []string `yaml:"urls" default:"[\"https://nfs.faireconomy.media/ff_calendar_thisweek.json\",\"https://nfs.faireconomy.media/ff_calendar_nextweek.json\"]" validate:"dive,url"`
		} `yaml:"calendar_json"`
		CalendarHTML struct {
			Disabled bool     `yaml:"disabled"`
			URLs     []string `yaml:"urls" default:"[\"https://www.investing.com/economic-calendar/\",\"https://sslecal2.investing.com/?columns=exc_flags,exc_currency,exc_importance,exc_actual,exc_forecast,exc_previous&importance=2,3\"]" validate:"dive,url"`
		} `yaml:"calendar_html"`
		FRED struct {
			APIKey  string       `yaml:"api_key"`
			BaseURL string       `yaml:"base_url" default:"https://api.stlouisfed.org/fred/series/observations" validate:"url"`
			Series  []FREDSeries `yaml:"series" validate:"dive"`
		} `yaml:"fred"`
		AlphaVantage struct {
			APIKey    string   `yaml:"api_key"`
			BaseURL   string   `yaml:"base_url" default:"https://www.alphavantage.co/query" validate:"url"`
			Functions []string `yaml:"functions" default:"[\"FEDERAL_FUNDS_RATE\",\"CPI\",\"INFLATION\",\"REAL_GDP\",\"UNEMPLOYMENT\",\"RETAIL_SALES\",\"NONFARM_PAYROLL\"]"`
		} `yaml:"alphavantage"`
		RSS struct {
			Feeds []RSSFeed `yaml:"feeds" validate:"dive"`
		} `yaml:"rss"`
		Simulated struct {
			Seed              int64 `yaml:"seed" default:"42"`
			EventsPerCurrency int   `yaml:"events_per_currency" default:"12" validate:"gte=1"`
		} `yaml:"simulated"`
	} `yaml:"sources"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		EventsTopic   string   `yaml:"events_topic" default:"fxpulse.events"`
		StrengthTopic string   `yaml:"strength_topic" default:"fxpulse.strength"`
		RequiredAcks  int      `yaml:"required_acks" default:"-1"`
		Compression   string   `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"fxpulse-sink"`
			Workers    int           `yaml:"workers" default:"2" validate:"gte=1"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"fxpulse.events.dlq"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"fxpulse"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		AsyncInsert  bool          `yaml:"async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		MaxOpenConns int           `yaml:"max_open_conns" default:"10"`
	} `yaml:"clickhouse"`
	SQLite struct {
		Path string `yaml:"path" default:"fxpulse.db"`
	} `yaml:"sqlite"`
	Cache struct {
		MaxSize int           `yaml:"max_size" default:"512" validate:"gte=1"`
		TTL     time.Duration `yaml:"ttl" default:"24h"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"fxpulse"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file. A missing file is not an error:
// defaults plus environment are enough to run.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML (and .env when present), overrides with
// environment variables and validates the result.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Sources.FRED.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Sources.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		c.Collector.RateLimitRPM = util.ParseIntDefault(v, c.Collector.RateLimitRPM)
	}
	if v := os.Getenv("REQUEST_TIMEOUT_MS"); v != "" {
		ms := util.ParseIntDefault(v, int(c.Collector.RequestTimeout.Milliseconds()))
		c.Collector.RequestTimeout = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("COLLECTOR_MODE"); v != "" {
		c.Collector.Mode = v
	}
	if v := os.Getenv("CURRENCIES"); v != "" {
		c.Collector.Currencies = util.SplitNonEmpty(strings.ToUpper(v), ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitNonEmpty(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.EventsTopic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Redis.Enabled = true
	}
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Collector.DelayMin > c.Collector.DelayMax {
		return fmt.Errorf("collector.delay_min (%s) must be <= collector.delay_max (%s)", c.Collector.DelayMin, c.Collector.DelayMax)
	}
	switch c.Backend.Type {
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers required for backend 'kafka'")
		}
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host required for backend 'kafka' (sink and strength history)")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host required for backend 'clickhouse'")
		}
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path required for backend 'sqlite'")
		}
	}
	return nil
}
