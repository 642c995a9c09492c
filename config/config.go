package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/risk"
	"github.com/rustyeddy/torb/sim"
	"github.com/rustyeddy/torb/strategies/torb"
)

// Config represents the complete engine configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	OANDA    OANDAConfig    `json:"oanda" yaml:"oanda"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Tracing  TracingConfig  `json:"tracing" yaml:"tracing"`
}

// AccountConfig is the virtual account trades are sized against
type AccountConfig struct {
	Currency    string  `json:"currency" yaml:"currency"`
	Notional    float64 `json:"notional" yaml:"notional"`
	RiskPercent float64 `json:"risk_percent" yaml:"risk_percent"`
}

// StrategyConfig holds the opening range breakout thresholds that are
// commonly tuned. Everything else uses torb.DefaultParams.
type StrategyConfig struct {
	Instrument         string  `json:"instrument" yaml:"instrument"`
	MinDailyATRPips    float64 `json:"min_daily_atr_pips" yaml:"min_daily_atr_pips"`
	MaxDailyATRPips    float64 `json:"max_daily_atr_pips" yaml:"max_daily_atr_pips"`
	MinWidthPips       float64 `json:"min_width_pips" yaml:"min_width_pips"`
	MaxWidthPips       float64 `json:"max_width_pips" yaml:"max_width_pips"`
	BreakoutBufferPips float64 `json:"breakout_buffer_pips" yaml:"breakout_buffer_pips"`
	RetestTimeout      string  `json:"retest_timeout" yaml:"retest_timeout"`             // e.g. "30m"
}

// EngineConfig contains polling and trade management parameters
type EngineConfig struct {
	Interval     string     `json:"interval" yaml:"interval"`           // e.g. "5m"
	MaxPositions int        `json:"max_positions" yaml:"max_positions"`
	MaxHold      string     `json:"max_hold" yaml:"max_hold"`           // e.g. "4h"
	Gate         GateConfig `json:"gate" yaml:"gate"`
}

// GateConfig lists the JST hour windows and UTC weekdays entries are
// evaluated in.
type GateConfig struct {
	Days    []string     `json:"days" yaml:"days"`       // "Mon".."Sun"
	Windows []sim.Window `json:"windows" yaml:"windows"`
}

// RiskConfig holds the circuit breakers; zero disables one.
type RiskConfig struct {
	MaxConsecutiveLosses int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	MaxDailyLossPct      float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"`                             // "csv", "sqlite" or "none"
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OANDAConfig holds API credentials. Token and account are usually supplied
// through the environment.
type OANDAConfig struct {
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	AccountID string `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Practice  bool   `json:"practice" yaml:"practice"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // console or json
}

type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"` // stdout when empty
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides credentials and log level from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OANDA_TOKEN"); v != "" {
		c.OANDA.Token = v
	}
	if v := os.Getenv("OANDA_ACCOUNT_ID"); v != "" {
		c.OANDA.AccountID = v
	}
	if v := os.Getenv("TORB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Notional <= 0 {
		return fmt.Errorf("account.notional must be positive")
	}
	if c.Account.RiskPercent <= 0 || c.Account.RiskPercent > 1 {
		return fmt.Errorf("account.risk_percent must be between 0 and 1")
	}

	if c.Strategy.Instrument == "" {
		return fmt.Errorf("strategy.instrument is required")
	}
	meta, err := market.Lookup(c.Strategy.Instrument)
	if err != nil {
		return fmt.Errorf("strategy.instrument: %w", err)
	}
	if meta.QuoteCurrency != c.Account.Currency && meta.BaseCurrency != c.Account.Currency {
		return fmt.Errorf("cannot convert %s P/L into %s", c.Strategy.Instrument, c.Account.Currency)
	}
	if c.Strategy.MinDailyATRPips > c.Strategy.MaxDailyATRPips {
		return fmt.Errorf("strategy daily ATR band is inverted")
	}
	if c.Strategy.MinWidthPips > c.Strategy.MaxWidthPips {
		return fmt.Errorf("strategy width band is inverted")
	}
	if _, err := parsePositive("strategy.retest_timeout", c.Strategy.RetestTimeout); err != nil {
		return err
	}

	if _, err := parsePositive("engine.interval", c.Engine.Interval); err != nil {
		return err
	}
	if _, err := parsePositive("engine.max_hold", c.Engine.MaxHold); err != nil {
		return err
	}
	if c.Engine.MaxPositions <= 0 {
		return fmt.Errorf("engine.max_positions must be positive")
	}
	if _, err := c.Engine.Gate.build(); err != nil {
		return err
	}

	if c.Risk.MaxConsecutiveLosses < 0 {
		return fmt.Errorf("risk.max_consecutive_losses must not be negative")
	}
	if c.Risk.MaxDailyLossPct < 0 || c.Risk.MaxDailyLossPct > 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be between 0 and 1")
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal csv_path required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

func parsePositive(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", field)
	}
	return d, nil
}

func (g GateConfig) build() (sim.TradingGate, error) {
	var gate sim.TradingGate
	for _, d := range g.Days {
		key := strings.ToLower(strings.TrimSpace(d))
		if len(key) > 3 {
			key = key[:3]
		}
		wd, ok := weekdays[key]
		if !ok {
			return gate, fmt.Errorf("engine.gate: unknown day %q", d)
		}
		gate.Days = append(gate.Days, wd)
	}
	for _, w := range g.Windows {
		if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 24 {
			return gate, fmt.Errorf("engine.gate: window %d-%d out of range", w.StartHour, w.EndHour)
		}
		gate.Windows = append(gate.Windows, w)
	}
	return gate, nil
}

// Params returns the strategy parameters with the configured overrides
// applied.
func (c *Config) Params() torb.Params {
	p := torb.DefaultParams()
	s := c.Strategy
	p.MinDailyATRPips = s.MinDailyATRPips
	p.MaxDailyATRPips = s.MaxDailyATRPips
	p.MinWidthPips = s.MinWidthPips
	p.MaxWidthPips = s.MaxWidthPips
	p.BreakoutBufferPips = s.BreakoutBufferPips
	if d, err := time.ParseDuration(s.RetestTimeout); err == nil {
		p.RetestTimeout = d
	}
	return p
}

// EngineConfig converts a validated configuration into sim.Config.
func (c *Config) EngineConfig() (sim.Config, error) {
	ec := sim.DefaultConfig()

	interval, err := parsePositive("engine.interval", c.Engine.Interval)
	if err != nil {
		return ec, err
	}
	maxHold, err := parsePositive("engine.max_hold", c.Engine.MaxHold)
	if err != nil {
		return ec, err
	}
	gate, err := c.Engine.Gate.build()
	if err != nil {
		return ec, err
	}

	ec.Interval = interval
	ec.MaxHold = maxHold
	ec.MaxPositions = c.Engine.MaxPositions
	ec.Gate = gate
	ec.Notional = c.Account.Notional
	ec.RiskPct = c.Account.RiskPercent
	ec.AccountCurrency = c.Account.Currency
	ec.Risk = risk.Policy{
		MaxConsecutiveLosses: c.Risk.MaxConsecutiveLosses,
		MaxDailyLossPct:      c.Risk.MaxDailyLossPct,
	}
	ec.Params = c.Params()
	return ec, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := torb.DefaultParams()
	return &Config{
		Account: AccountConfig{
			Currency:    "JPY",
			Notional:    1_000_000,
			RiskPercent: 0.02,
		},
		Strategy: StrategyConfig{
			Instrument:         "USD_JPY",
			MinDailyATRPips:    p.MinDailyATRPips,
			MaxDailyATRPips:    p.MaxDailyATRPips,
			MinWidthPips:       p.MinWidthPips,
			MaxWidthPips:       p.MaxWidthPips,
			BreakoutBufferPips: p.BreakoutBufferPips,
			RetestTimeout:      p.RetestTimeout.String(),
		},
		Engine: EngineConfig{
			Interval:     "5m",
			MaxPositions: 1,
			MaxHold:      "4h",
			Gate: GateConfig{
				Days:    []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
				Windows: []sim.Window{{StartHour: 16, EndHour: 18}, {StartHour: 21, EndHour: 23}},
			},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./torb.db",
		},
		OANDA: OANDAConfig{
			Practice: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
