// Package config holds the full run configuration: account, fee schedule,
// sizing rules, protection limits, strategy selection and journal sinks.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/daytrader/costs"
	"github.com/rustyeddy/daytrader/protect"
	"github.com/rustyeddy/daytrader/risk"
)

// Config represents the complete run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Costs    CostsConfig    `json:"costs" yaml:"costs"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Protect  ProtectConfig  `json:"protect" yaml:"protect"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains the capital book parameters.
type AccountConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// CostsConfig mirrors the Taiwan fee schedule. Rates are decimal fractions.
type CostsConfig struct {
	CommissionRate     float64 `json:"commission_rate" yaml:"commission_rate"`
	CommissionDiscount float64 `json:"commission_discount" yaml:"commission_discount"`
	MinCommission      float64 `json:"min_commission" yaml:"min_commission"`
	TaxRateStandard    float64 `json:"tax_rate_standard" yaml:"tax_rate_standard"`
	TaxRateIntraday    float64 `json:"tax_rate_intraday" yaml:"tax_rate_intraday"`
	SlippageBps        float64 `json:"slippage_bps" yaml:"slippage_bps"`
}

// RiskConfig contains the sizing rules.
type RiskConfig struct {
	RiskPctPerTrade   float64 `json:"risk_pct_per_trade" yaml:"risk_pct_per_trade"`
	StopATRMultiplier float64 `json:"stop_atr_multiplier" yaml:"stop_atr_multiplier"`
	FixedStopPct      float64 `json:"fixed_stop_pct" yaml:"fixed_stop_pct"`
	MinStopPct        float64 `json:"min_stop_pct" yaml:"min_stop_pct"`
	MaxStopPct        float64 `json:"max_stop_pct" yaml:"max_stop_pct"`
	MaxPositionPct    float64 `json:"max_position_pct" yaml:"max_position_pct"`
	RewardRisk        float64 `json:"reward_risk" yaml:"reward_risk"`
	MaxLotsPerTrade   int     `json:"max_lots_per_trade" yaml:"max_lots_per_trade"`
	MaxOpenPositions  int     `json:"max_open_positions" yaml:"max_open_positions"`
	LotSize           int64   `json:"lot_size" yaml:"lot_size"`
	ATRPeriod         int     `json:"atr_period" yaml:"atr_period"`
}

// ProtectConfig contains the equity protection limits.
type ProtectConfig struct {
	MaxDrawdownPct       float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	MaxDailyLossPct      float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`
	ConsecutiveLossLimit int     `json:"consecutive_loss_limit" yaml:"consecutive_loss_limit"`
	ReducedMultiplier    float64 `json:"reduced_multiplier" yaml:"reduced_multiplier"`
}

// StrategyConfig selects the signal generator by registry name.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`
}

// JournalConfig contains the journal sink parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
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

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Costs.CommissionRate <= 0 || c.Costs.CommissionRate >= 0.01 {
		return fmt.Errorf("costs.commission_rate %v out of (0, 0.01)", c.Costs.CommissionRate)
	}
	if c.Costs.CommissionDiscount <= 0 || c.Costs.CommissionDiscount > 1 {
		return fmt.Errorf("costs.commission_discount must be in (0, 1]")
	}
	if c.Costs.MinCommission < 0 {
		return fmt.Errorf("costs.min_commission must not be negative")
	}
	if c.Costs.TaxRateStandard <= 0 || c.Costs.TaxRateIntraday <= 0 {
		return fmt.Errorf("costs tax rates must be positive")
	}
	if c.Costs.TaxRateIntraday > c.Costs.TaxRateStandard {
		return fmt.Errorf("costs.tax_rate_intraday must not exceed tax_rate_standard")
	}
	if c.Costs.SlippageBps < 0 {
		return fmt.Errorf("costs.slippage_bps must not be negative")
	}
	if c.Risk.ATRPeriod < 1 {
		return fmt.Errorf("risk.atr_period must be >= 1")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	// The component constructors enforce their own ranges; run them here so
	// a bad file fails at load time, not mid-run.
	if _, err := risk.New(c.RiskConfig()); err != nil {
		return err
	}
	if _, err := protect.New(c.Account.InitialCapital, c.ProtectConfig()); err != nil {
		return err
	}
	return nil
}

// CostParams converts the costs section to the cost model's parameters.
func (c *Config) CostParams() costs.Params {
	return costs.Params{
		CommissionRate:     c.Costs.CommissionRate,
		CommissionDiscount: c.Costs.CommissionDiscount,
		MinCommission:      c.Costs.MinCommission,
		TaxRateStandard:    c.Costs.TaxRateStandard,
		TaxRateIntraday:    c.Costs.TaxRateIntraday,
		SlippageBps:        c.Costs.SlippageBps,
	}
}

// RiskConfig converts the risk section to the sizing manager's config.
func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		RiskPctPerTrade:   c.Risk.RiskPctPerTrade,
		StopATRMultiplier: c.Risk.StopATRMultiplier,
		FixedStopPct:      c.Risk.FixedStopPct,
		MinStopPct:        c.Risk.MinStopPct,
		MaxStopPct:        c.Risk.MaxStopPct,
		MaxPositionPct:    c.Risk.MaxPositionPct,
		RewardRisk:        c.Risk.RewardRisk,
		MaxLotsPerTrade:   c.Risk.MaxLotsPerTrade,
		MaxOpenPositions:  c.Risk.MaxOpenPositions,
		LotSize:           c.Risk.LotSize,
	}
}

// ProtectConfig converts the protect section to the controller's config.
func (c *Config) ProtectConfig() protect.Config {
	return protect.Config{
		MaxDrawdownPct:       c.Protect.MaxDrawdownPct,
		MaxDailyLossPct:      c.Protect.MaxDailyLossPct,
		ConsecutiveLossLimit: c.Protect.ConsecutiveLossLimit,
		ReducedMultiplier:    c.Protect.ReducedMultiplier,
	}
}

// Default returns the standard Taiwan day-trading configuration.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 1_000_000,
		},
		Costs: CostsConfig{
			CommissionRate:     0.001425,
			CommissionDiscount: 0.6,
			MinCommission:      20,
			TaxRateStandard:    0.003,
			TaxRateIntraday:    0.0015,
			SlippageBps:        2,
		},
		Risk: RiskConfig{
			RiskPctPerTrade:   0.02,
			StopATRMultiplier: 2.0,
			FixedStopPct:      0.02,
			MinStopPct:        0.01,
			MaxStopPct:        0.05,
			MaxPositionPct:    0.10,
			RewardRisk:        2.0,
			MaxLotsPerTrade:   10,
			MaxOpenPositions:  3,
			LotSize:           1000,
			ATRPeriod:         14,
		},
		Protect: ProtectConfig{
			MaxDrawdownPct:       0.10,
			MaxDailyLossPct:      0.02,
			ConsecutiveLossLimit: 3,
			ReducedMultiplier:    0.5,
		},
		Strategy: StrategyConfig{
			Name: "sma-cross",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
