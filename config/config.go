package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/screen"
	"github.com/banachtech/statarb/signals"
	"github.com/banachtech/statarb/util"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the bot, the API and the CLI.
type Config struct {
	Universe []string           `yaml:"universe"`
	Start    string             `yaml:"start"`
	End      string             `yaml:"end"`
	Lookback int                `yaml:"lookback"`
	Pair     PairConfig         `yaml:"pair"`
	Screen   screen.Params      `yaml:"screen"`
	Signals  signals.Thresholds `yaml:"signals"`
	Backtest backtest.Config    `yaml:"backtest"`
	Data     DataConfig         `yaml:"data"`
	Server   ServerConfig       `yaml:"server"`
	Broker   BrokerConfig       `yaml:"broker"`

	DatabaseURL string `yaml:"database_url"`
}

type PairConfig struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

type DataConfig struct {
	PolygonURL string        `yaml:"polygon_url"`
	PolygonKey string        `yaml:"-"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	CacheDir   string        `yaml:"cache_dir"`
	RedisAddr  string        `yaml:"redis_addr"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

type ServerConfig struct {
	Addr       string  `yaml:"addr"`
	APIKeyHash string  `yaml:"-"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
}

type BrokerConfig struct {
	BaseURL  string  `yaml:"base_url"`
	DataURL  string  `yaml:"data_url"`
	KeyID    string  `yaml:"-"`
	Secret   string  `yaml:"-"`
	Notional float64 `yaml:"notional"`
}

var DefaultUniverse = []string{
	"SPY", "IVV", "VOO",
	"IWM", "VTWO",
	"QQQ", "VGT",
	"XLK", "XLF", "XLE", "XLP", "XLV", "XLI", "XLY", "XLC",
	"SMH", "SOXX",
	"AAPL", "MSFT", "NVDA", "AMD", "META", "GOOG", "GOOGL",
	"XOM", "CVX", "BP", "SHEL",
	"JPM", "BAC", "GS", "MS", "WFC", "C",
	"V", "MA", "AXP",
	"EEM", "VWO",
	"EFA", "IEFA",
}

func Default() *Config {
	return &Config{
		Universe: append([]string(nil), DefaultUniverse...),
		Start:    "2022-01-01",
		End:      "2025-11-26",
		Lookback: 90,
		Pair:     PairConfig{X: "XLF", Y: "KRE"},
		Screen:   screen.DefaultParams(),
		Signals:  signals.Thresholds{Entry: 2.5, Exit: 0.8, Stop: 4.0},
		Backtest: backtest.DefaultConfig(),
		Data: DataConfig{
			PolygonURL: "https://api.polygon.io",
			RatePerSec: 5,
			CacheDir:   "storage",
			CacheTTL:   12 * time.Hour,
		},
		Server: ServerConfig{Addr: ":8080", RatePerSec: 1, Burst: 5},
		Broker: BrokerConfig{
			BaseURL:  "https://paper-api.alpaca.markets",
			DataURL:  "https://data.alpaca.markets",
			Notional: 10000,
		},
	}
}

/*
load the configuration

args:
1. path : YAML file layered over the defaults; empty means defaults only

returns:
1. configuration with secrets taken from the environment (and .env when present)
2. error
*/
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.Data.PolygonKey, "POLYGON_API_KEY")
	setString(&c.Data.RedisAddr, "REDIS_ADDR")
	setString(&c.Broker.KeyID, "APCA_API_KEY_ID")
	setString(&c.Broker.Secret, "APCA_API_SECRET_KEY")
	setString(&c.Broker.BaseURL, "APCA_API_BASE_URL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Server.APIKeyHash, "STATARB_API_KEY_HASH")
}

func (c *Config) Validate() error {
	start, err := util.ParseDate(c.Start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := util.ParseDate(c.End)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end %v must be after start %v", c.End, c.Start)
	}
	if c.Lookback < 2 {
		return fmt.Errorf("lookback %d must be at least 2", c.Lookback)
	}
	if err := c.Signals.Validate(); err != nil {
		return err
	}
	if err := c.Screen.Validate(); err != nil {
		return err
	}
	if err := c.Backtest.Validate(); err != nil {
		return err
	}
	if c.Data.RatePerSec <= 0 {
		return fmt.Errorf("data rate %v must be positive", c.Data.RatePerSec)
	}
	if c.Broker.Notional < 0 {
		return fmt.Errorf("broker notional %v must not be negative", c.Broker.Notional)
	}
	return nil
}

// Dates returns the parsed start and end dates.
func (c *Config) Dates() (start, end time.Time) {
	start, _ = util.ParseDate(c.Start)
	end, _ = util.ParseDate(c.End)
	return start, end
}
