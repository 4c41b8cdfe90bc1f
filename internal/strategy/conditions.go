// Package strategy turns indicator snapshots into trading signals.
package strategy

import (
	"paper-trader/internal/config"
	"paper-trader/internal/models"
)

// EntryConditions holds the result of evaluating the four entry conditions
// against the latest bar.
type EntryConditions struct {
	Trend      bool
	Momentum   bool
	Volume     bool
	Volatility bool
}

// Met returns the number of satisfied conditions.
func (c EntryConditions) Met() int {
	n := 0
	for _, ok := range []bool{c.Trend, c.Momentum, c.Volume, c.Volatility} {
		if ok {
			n++
		}
	}
	return n
}

// EvaluateEntry evaluates the four independent entry conditions for the
// latest bar. It is a pure function; callers report the result.
func EvaluateEntry(snap *models.IndicatorSnapshot, cfg *config.Config) EntryConditions {
	return EntryConditions{
		Trend:      snap.Close > snap.EMAFast && snap.EMAFast > snap.EMASlow,
		Momentum:   snap.RSI < cfg.Indicators.RSIOversold || snap.MACD > snap.MACDSignal,
		Volume:     snap.VolumeRatio > cfg.Signals.VolumeThreshold,
		Volatility: snap.Close > snap.BollMiddle && snap.ATR < snap.ATRAverage,
	}
}
