package indicators

import (
	"errors"
	"math"

	"paper-trader/internal/models"
)

var (
	// ErrInsufficientData is returned when there's not enough data for calculation.
	ErrInsufficientData = errors.New("insufficient data for calculation")
	// ErrInvalidPeriod is returned when the period is invalid.
	ErrInvalidPeriod = errors.New("invalid period")
)

// sum calculates the sum of a slice of float64.
func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean of a slice of float64.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// stdDev calculates the standard deviation of a slice of float64.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// trueRange calculates the true range for a candle.
func trueRange(current, previous models.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)
	return max(highLow, highClose, lowClose)
}

// closePrices extracts close prices from candles.
func closePrices(candles []models.Candle) []float64 {
	prices := make([]float64, len(candles))
	for i, c := range candles {
		prices[i] = c.Close
	}
	return prices
}

// volumes extracts volumes from candles as floats.
func volumes(candles []models.Candle) []float64 {
	vols := make([]float64, len(candles))
	for i, c := range candles {
		vols[i] = float64(c.Volume)
	}
	return vols
}

// HighestHigh returns the highest High over the most recent window bars.
// When fewer than window bars are available, all bars are used.
func HighestHigh(candles []models.Candle, window int) float64 {
	if len(candles) == 0 {
		return 0
	}
	start := len(candles) - window
	if start < 0 {
		start = 0
	}
	h := candles[start].High
	for _, c := range candles[start+1:] {
		if c.High > h {
			h = c.High
		}
	}
	return h
}
