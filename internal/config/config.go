// Package config provides configuration management for the paper trading engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "paper-trader/internal/errors"
)

// Config holds all application configuration. It is immutable per run.
type Config struct {
	Trading    TradingConfig   `mapstructure:"trading"`
	Indicators IndicatorConfig `mapstructure:"indicators"`
	Signals    SignalConfig    `mapstructure:"signals"`
	Risk       RiskConfig      `mapstructure:"risk"`
	Logging    LoggingConfig   `mapstructure:"logging"`
}

// TradingConfig holds the symbol, timeframe and account parameters.
type TradingConfig struct {
	Symbol         string  `mapstructure:"symbol"`
	Timeframe      string  `mapstructure:"timeframe"`
	RiskPercent    float64 `mapstructure:"risk_percent"`
	InitialBalance float64 `mapstructure:"initial_balance"`
	Leverage       float64 `mapstructure:"leverage"`
}

// IndicatorConfig holds technical indicator periods and levels.
type IndicatorConfig struct {
	RSIPeriod     int     `mapstructure:"rsi_period"`
	RSIOverbought float64 `mapstructure:"rsi_overbought"`
	RSIOversold   float64 `mapstructure:"rsi_oversold"`
	ATRPeriod     int     `mapstructure:"atr_period"`
	EMAFast       int     `mapstructure:"ema_fast"`
	EMASlow       int     `mapstructure:"ema_slow"`
	EMATrend      int     `mapstructure:"ema_trend"`
}

// SignalConfig holds entry signal thresholds and filter toggles.
type SignalConfig struct {
	VolumeThreshold     float64 `mapstructure:"volume_threshold"`
	MinConditions       int     `mapstructure:"min_conditions"`
	UseVolumeFilter     bool    `mapstructure:"use_volume_filter"`
	UseTrendFilter      bool    `mapstructure:"use_trend_filter"`
	UseVolatilityFilter bool    `mapstructure:"use_volatility_filter"`
}

// RiskConfig holds exit thresholds.
type RiskConfig struct {
	ProfitTarget    float64 `mapstructure:"profit_target"`
	StopLoss        float64 `mapstructure:"stop_loss"`
	TrailingStop    bool    `mapstructure:"trailing_stop"`
	TrailingStopATR float64 `mapstructure:"trailing_stop_atr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/papertrader"
	}
	return filepath.Join(home, ".config", "papertrader")
}

// DefaultDataDir returns the directory holding the account snapshot, trade
// results and trade journal.
func DefaultDataDir() string {
	return filepath.Join(DefaultConfigDir(), "data")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if terr := createTemplateConfig(configDir); terr != nil {
				return nil, fmt.Errorf("creating config template: %w", terr)
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Conservative()
	v.SetDefault("trading.symbol", def.Trading.Symbol)
	v.SetDefault("trading.timeframe", def.Trading.Timeframe)
	v.SetDefault("trading.risk_percent", def.Trading.RiskPercent)
	v.SetDefault("trading.initial_balance", def.Trading.InitialBalance)
	v.SetDefault("trading.leverage", def.Trading.Leverage)
	v.SetDefault("indicators.rsi_period", def.Indicators.RSIPeriod)
	v.SetDefault("indicators.rsi_overbought", def.Indicators.RSIOverbought)
	v.SetDefault("indicators.rsi_oversold", def.Indicators.RSIOversold)
	v.SetDefault("indicators.atr_period", def.Indicators.ATRPeriod)
	v.SetDefault("indicators.ema_fast", def.Indicators.EMAFast)
	v.SetDefault("indicators.ema_slow", def.Indicators.EMASlow)
	v.SetDefault("indicators.ema_trend", def.Indicators.EMATrend)
	v.SetDefault("signals.volume_threshold", def.Signals.VolumeThreshold)
	v.SetDefault("signals.min_conditions", def.Signals.MinConditions)
	v.SetDefault("signals.use_volume_filter", def.Signals.UseVolumeFilter)
	v.SetDefault("signals.use_trend_filter", def.Signals.UseTrendFilter)
	v.SetDefault("signals.use_volatility_filter", def.Signals.UseVolatilityFilter)
	v.SetDefault("risk.profit_target", def.Risk.ProfitTarget)
	v.SetDefault("risk.stop_loss", def.Risk.StopLoss)
	v.SetDefault("risk.trailing_stop", def.Risk.TrailingStop)
	v.SetDefault("risk.trailing_stop_atr", def.Risk.TrailingStopATR)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAPERTRADER_SYMBOL"); v != "" {
		cfg.Trading.Symbol = v
	}
	if v := os.Getenv("PAPERTRADER_TIMEFRAME"); v != "" {
		cfg.Trading.Timeframe = v
	}
	if v := os.Getenv("PAPERTRADER_LEVERAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.Leverage = f
		}
	}
	if v := os.Getenv("PAPERTRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "symbol must not be empty")
	}
	if c.Trading.RiskPercent <= 0 || c.Trading.RiskPercent >= 100 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "risk_percent must be in (0, 100), got %.2f", c.Trading.RiskPercent)
	}
	if c.Trading.InitialBalance <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "initial_balance must be positive, got %.2f", c.Trading.InitialBalance)
	}
	if c.Trading.Leverage < 1 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "leverage must be >= 1, got %.2f", c.Trading.Leverage)
	}
	if c.Signals.MinConditions < 1 || c.Signals.MinConditions > 4 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "min_conditions must be in [1, 4], got %d", c.Signals.MinConditions)
	}
	for name, period := range map[string]int{
		"rsi_period": c.Indicators.RSIPeriod,
		"atr_period": c.Indicators.ATRPeriod,
		"ema_fast":   c.Indicators.EMAFast,
		"ema_slow":   c.Indicators.EMASlow,
		"ema_trend":  c.Indicators.EMATrend,
	} {
		if period <= 0 {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "%s must be positive, got %d", name, period)
		}
	}
	if c.Risk.ProfitTarget <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "profit_target must be positive, got %.2f", c.Risk.ProfitTarget)
	}
	if c.Risk.StopLoss <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "stop_loss must be positive, got %.2f", c.Risk.StopLoss)
	}
	if c.Risk.TrailingStop && c.Risk.TrailingStopATR <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "trailing_stop_atr must be positive, got %.2f", c.Risk.TrailingStopATR)
	}
	if c.Signals.VolumeThreshold <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "volume_threshold must be positive, got %.2f", c.Signals.VolumeThreshold)
	}
	return nil
}
