package indicators

import (
	"fmt"

	"paper-trader/internal/models"
)

// ATR calculates the Average True Range.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR_%d", a.period)
}

func (a *ATR) Period() int {
	return a.period
}

func (a *ATR) Calculate(candles []models.Candle) ([]float64, error) {
	if a.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < a.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	tr := make([]float64, n)

	// First TR is just high - low
	tr[0] = candles[0].High - candles[0].Low

	for i := 1; i < n; i++ {
		tr[i] = trueRange(candles[i], candles[i-1])
	}

	// First ATR is SMA of TR
	result[a.period-1] = mean(tr[:a.period])

	// Subsequent ATR using Wilder smoothing
	for i := a.period; i < n; i++ {
		result[i] = (result[i-1]*float64(a.period-1) + tr[i]) / float64(a.period)
	}

	return result, nil
}

// BollingerBands calculates Bollinger Bands.
type BollingerBands struct {
	period    int
	stdDevMul float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDevMul float64) *BollingerBands {
	return &BollingerBands{
		period:    period,
		stdDevMul: stdDevMul,
	}
}

func (b *BollingerBands) Name() string {
	return fmt.Sprintf("BollingerBands_%d_%.1f", b.period, b.stdDevMul)
}

func (b *BollingerBands) Period() int {
	return b.period
}

func (b *BollingerBands) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if b.period <= 0 || b.stdDevMul <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < b.period {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	closes := closePrices(candles)

	middle := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)

	for i := b.period - 1; i < n; i++ {
		slice := closes[i-b.period+1 : i+1]
		sma := mean(slice)
		sd := stdDev(slice)

		middle[i] = sma
		upper[i] = sma + b.stdDevMul*sd
		lower[i] = sma - b.stdDevMul*sd
	}

	return map[string][]float64{
		"middle": middle,
		"upper":  upper,
		"lower":  lower,
	}, nil
}
