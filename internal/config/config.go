package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"spot-breakout-bot/internal/pipeline"
)

type Config struct {
	Log       LoggingConfig   `yaml:"log"`
	Exchange  ExchangeConfig  `yaml:"exchange"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Risk      RiskConfig      `yaml:"risk"`
	State     StateConfig     `yaml:"state"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Timescale TimescaleConfig `yaml:"timescale"`
	Report    ReportConfig    `yaml:"report"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ExchangeConfig struct {
	Mode      string        `yaml:"mode"` // binance or sim
	BaseURL   string        `yaml:"base_url"`
	WSURL     string        `yaml:"ws_url"`
	WSEnabled bool          `yaml:"ws_enabled"`
	Timeout   time.Duration `yaml:"timeout"`
}

type StrategyConfig struct {
	Symbol          string        `yaml:"symbol"`
	QuoteAsset      string        `yaml:"quote_asset"`
	ShortPeriod     int           `yaml:"short_period"`
	LongPeriod      int           `yaml:"long_period"`
	RSIPeriod       int           `yaml:"rsi_period"`
	VolumeThreshold float64       `yaml:"volume_threshold"`
	TickInterval    time.Duration `yaml:"tick_interval"`
}

type RiskConfig struct {
	RiskFraction   float64 `yaml:"risk_fraction"`
	StopLossPct    float64 `yaml:"stop_loss_pct"`
	MinNotionalUSD float64 `yaml:"min_notional_usd"`
}

type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

type TimescaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	DSN       string `yaml:"dsn"`
	Schema    string `yaml:"schema"`
	QueueSize int    `yaml:"queue_size"`
}

type ReportConfig struct {
	Schedule string `yaml:"schedule"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, pipeline.E(pipeline.KindConfig, "config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.KindConfig, "read config", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, pipeline.Wrap(pipeline.KindConfig, "parse config", err)
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Exchange.Mode == "" {
		cfg.Exchange.Mode = "binance"
	}
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://api.binance.com"
	}
	if cfg.Exchange.WSURL == "" {
		cfg.Exchange.WSURL = "wss://stream.binance.com:9443/ws"
	}
	if cfg.Exchange.Timeout == 0 {
		cfg.Exchange.Timeout = 10 * time.Second
	}
	if cfg.Strategy.QuoteAsset == "" {
		cfg.Strategy.QuoteAsset = "USDT"
	}
	if cfg.Strategy.ShortPeriod == 0 {
		cfg.Strategy.ShortPeriod = 5
	}
	if cfg.Strategy.LongPeriod == 0 {
		cfg.Strategy.LongPeriod = 20
	}
	if cfg.Strategy.RSIPeriod == 0 {
		cfg.Strategy.RSIPeriod = 14
	}
	if cfg.Strategy.VolumeThreshold == 0 {
		cfg.Strategy.VolumeThreshold = 2500
	}
	if cfg.Strategy.TickInterval == 0 {
		cfg.Strategy.TickInterval = 2 * time.Second
	}
	if cfg.Risk.RiskFraction == 0 {
		cfg.Risk.RiskFraction = 0.02
	}
	if cfg.Risk.StopLossPct == 0 {
		cfg.Risk.StopLossPct = 0.015
	}
	if cfg.Risk.MinNotionalUSD == 0 {
		cfg.Risk.MinNotionalUSD = 10
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/spot-breakout-bot.db"
	}
	if cfg.Timescale.QueueSize == 0 {
		cfg.Timescale.QueueSize = 1024
	}
	if cfg.Report.Schedule == "" {
		cfg.Report.Schedule = "@every 1m"
	}
}

func validate(cfg *Config) error {
	if cfg.Strategy.Symbol == "" {
		return pipeline.E(pipeline.KindConfig, "strategy.symbol is required")
	}
	if cfg.Exchange.Mode != "binance" && cfg.Exchange.Mode != "sim" {
		return pipeline.Errorf(pipeline.KindConfig, "exchange.mode must be binance or sim, got %q", cfg.Exchange.Mode)
	}
	if cfg.Strategy.ShortPeriod >= cfg.Strategy.LongPeriod {
		return pipeline.E(pipeline.KindConfig, "strategy.short_period must be below strategy.long_period")
	}
	if cfg.Risk.RiskFraction <= 0 || cfg.Risk.RiskFraction > 1 {
		return pipeline.E(pipeline.KindConfig, "risk.risk_fraction must be in (0, 1]")
	}
	if cfg.Risk.StopLossPct <= 0 || cfg.Risk.StopLossPct >= 1 {
		return pipeline.E(pipeline.KindConfig, "risk.stop_loss_pct must be in (0, 1)")
	}
	if cfg.Risk.MinNotionalUSD < 0 {
		return pipeline.E(pipeline.KindConfig, "risk.min_notional_usd must not be negative")
	}
	return nil
}
