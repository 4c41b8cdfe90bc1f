// Package models provides domain models for the paper trading engine.
package models

import (
	"time"
)

// TradeType represents the side of an executed trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Signal represents the outcome of one strategy evaluation cycle.
type Signal int

const (
	SignalNone Signal = iota
	SignalEnter
	SignalExit
)

func (s Signal) String() string {
	switch s {
	case SignalEnter:
		return "ENTER"
	case SignalExit:
		return "EXIT"
	default:
		return "NONE"
	}
}

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// IndicatorSnapshot holds the latest bar and its derived indicator values.
// It is produced fresh each cycle and never persisted.
type IndicatorSnapshot struct {
	Timestamp   time.Time
	Close       float64
	High        float64
	Low         float64
	Volume      int64
	EMAFast     float64
	EMASlow     float64
	RSI         float64
	MACD        float64
	MACDSignal  float64
	ATR         float64
	ATRAverage  float64 // 10-period moving average of ATR
	BollUpper   float64
	BollMiddle  float64
	BollLower   float64
	VolumeRatio float64
	// TrailingHigh is the highest High over the most recent 20 bars
	// (or all bars when fewer are available).
	TrailingHigh float64
}
