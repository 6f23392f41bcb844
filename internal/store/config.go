package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode             string `yaml:"mode"`
	SyncSeconds      int    `yaml:"sync_seconds"`
	HistoryFrom      string `yaml:"history_from"`
	UTCOffsetSeconds int    `yaml:"utc_offset_seconds"`
	LogRetentionDays int    `yaml:"log_retention_days"`

	Gateway struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`

	Database struct {
		Type               string `yaml:"type"`
		DSN                string `yaml:"dsn"`
		MaxOpenConns       int    `yaml:"max_open_conns"`
		MaxIdleConns       int    `yaml:"max_idle_conns"`
		ConnMaxLifetimeMin int    `yaml:"conn_max_lifetime_minutes"`
		LogLevel           string `yaml:"log_level"`
	} `yaml:"database"`

	Telegram struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"telegram"`

	MarketData struct {
		Symbol      string   `yaml:"symbol"`
		Variants    []string `yaml:"variants"`
		Timeframe   string   `yaml:"timeframe"`
		Candles     int      `yaml:"candles"`
		SyncSeconds int      `yaml:"sync_seconds"`
	} `yaml:"market_data"`

	AutoTrade struct {
		Symbol          string   `yaml:"symbol"`
		Variants        []string `yaml:"variants"`
		Volume          float64  `yaml:"volume"`
		TPSLPoints      float64  `yaml:"tp_sl_points"`
		CheckSeconds    int      `yaml:"check_seconds"`
		ParticipantsCSV string   `yaml:"participants_csv"`
	} `yaml:"autotrade"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.SyncSeconds <= 0 {
		return fmt.Errorf("sync_seconds must be positive, got %d", c.SyncSeconds)
	}
	if c.Mode == "LIVE" && c.Gateway.URL == "" {
		return errors.New("gateway.url is required in LIVE mode")
	}
	if c.Database.Type != "sqlite" && c.Database.Type != "postgres" {
		return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", c.Database.Type)
	}
	if _, err := time.Parse("2006-01-02", c.HistoryFrom); err != nil {
		return fmt.Errorf("history_from must be YYYY-MM-DD: %w", err)
	}
	return nil
}

// HistoryFromTime returns the parsed start of the history window.
// Validate guarantees the format, so parse errors are ignored here.
func (c *Config) HistoryFromTime() time.Time {
	t, _ := time.Parse("2006-01-02", c.HistoryFrom)
	return t.UTC()
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.SyncSeconds == 0 {
		c.SyncSeconds = 60
	}
	if c.HistoryFrom == "" {
		c.HistoryFrom = "2024-01-01"
	}
	if c.UTCOffsetSeconds == 0 {
		// Most MT5 brokers run server time at UTC+3.
		c.UTCOffsetSeconds = 10800
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = 15
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Type == "sqlite" {
		c.Database.DSN = "bridge.db"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 2
	}
	if c.Database.ConnMaxLifetimeMin == 0 {
		c.Database.ConnMaxLifetimeMin = 60
	}
	if c.MarketData.Symbol == "" {
		c.MarketData.Symbol = "XAUUSD"
	}
	if len(c.MarketData.Variants) == 0 {
		c.MarketData.Variants = []string{"XAUUSD", "XAUUSD.s", "GOLD"}
	}
	if c.MarketData.Timeframe == "" {
		c.MarketData.Timeframe = "M15"
	}
	if c.MarketData.Candles == 0 {
		c.MarketData.Candles = 1000
	}
	if c.MarketData.SyncSeconds == 0 {
		c.MarketData.SyncSeconds = 60
	}
	if c.AutoTrade.Symbol == "" {
		c.AutoTrade.Symbol = "XAUUSD"
	}
	if len(c.AutoTrade.Variants) == 0 {
		c.AutoTrade.Variants = []string{"XAUUSD", "XAUUSDm", "XAUUSDc", "GOLD", "GOLDm"}
	}
	if c.AutoTrade.Volume == 0 {
		c.AutoTrade.Volume = 0.01
	}
	if c.AutoTrade.TPSLPoints == 0 {
		c.AutoTrade.TPSLPoints = 500
	}
	if c.AutoTrade.CheckSeconds == 0 {
		c.AutoTrade.CheckSeconds = 10
	}
	if c.AutoTrade.ParticipantsCSV == "" {
		c.AutoTrade.ParticipantsCSV = "participants.csv"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9105"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
