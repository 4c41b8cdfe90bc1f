package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Paper Trader Configuration

[trading]
# Instrument to trade, e.g. "BTC-USD"
symbol = "BTC-USD"
# Bar timeframe: 1m, 5m, 15m, 30m, 1h, 4h
timeframe = "1h"
# Percent of balance risked per trade
risk_percent = 1.0
# Starting paper balance
initial_balance = 10000.0
# Leverage multiplier (1 = unleveraged)
leverage = 1.0

[indicators]
rsi_period = 14
rsi_overbought = 70.0
rsi_oversold = 30.0
atr_period = 14
ema_fast = 50
ema_slow = 200
ema_trend = 20

[signals]
# Volume ratio over its 20-bar average required for the volume condition
volume_threshold = 1.5
# Entry conditions required to enter (1-4)
min_conditions = 4
use_volume_filter = true
use_trend_filter = true
use_volatility_filter = true

[risk]
# Exit when unrealized profit reaches this percent
profit_target = 2.0
# Exit when unrealized loss reaches this percent
stop_loss = 1.0
# Also exit on retracement from the rolling 20-bar high
trailing_stop = true
trailing_stop_atr = 2.5

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true
`

// createTemplateConfig writes a template config file for first-run setup.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}

// Conservative returns the conservative profile: longer periods, all four
// entry conditions required, filters enabled.
func Conservative() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbol:         "BTC-USD",
			Timeframe:      "1h",
			RiskPercent:    1.0,
			InitialBalance: 10000,
			Leverage:       1,
		},
		Indicators: IndicatorConfig{
			RSIPeriod:     14,
			RSIOverbought: 70,
			RSIOversold:   30,
			ATRPeriod:     14,
			EMAFast:       50,
			EMASlow:       200,
			EMATrend:      20,
		},
		Signals: SignalConfig{
			VolumeThreshold:     1.5,
			MinConditions:       4,
			UseVolumeFilter:     true,
			UseTrendFilter:      true,
			UseVolatilityFilter: true,
		},
		Risk: RiskConfig{
			ProfitTarget:    2.0,
			StopLoss:        1.0,
			TrailingStop:    true,
			TrailingStopATR: 2.5,
		},
		Logging: LoggingConfig{Level: "info", Console: true, File: true},
	}
}

// Aggressive returns the scalping profile: short periods, a single entry
// condition suffices, filters disabled, high leverage.
func Aggressive() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbol:         "BTC-INR",
			Timeframe:      "1m",
			RiskPercent:    2.0,
			InitialBalance: 10000,
			Leverage:       100,
		},
		Indicators: IndicatorConfig{
			RSIPeriod:     7,
			RSIOverbought: 70,
			RSIOversold:   30,
			ATRPeriod:     14,
			EMAFast:       8,
			EMASlow:       13,
			EMATrend:      21,
		},
		Signals: SignalConfig{
			VolumeThreshold:     0.1,
			MinConditions:       1,
			UseVolumeFilter:     false,
			UseTrendFilter:      false,
			UseVolatilityFilter: false,
		},
		Risk: RiskConfig{
			ProfitTarget:    0.3,
			StopLoss:        0.2,
			TrailingStop:    true,
			TrailingStopATR: 1.5,
		},
		Logging: LoggingConfig{Level: "info", Console: true, File: true},
	}
}

// Preset returns a named configuration preset.
func Preset(name string) (*Config, error) {
	switch name {
	case "conservative":
		return Conservative(), nil
	case "aggressive":
		return Aggressive(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q (want conservative or aggressive)", name)
	}
}
