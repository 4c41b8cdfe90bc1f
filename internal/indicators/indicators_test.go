package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-trader/internal/models"
)

// makeCandles builds an ascending bar series from closing prices. High and
// Low are offset so range-based indicators have something to chew on.
func makeCandles(closes []float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return candles
}

func constantCloses(n int, value float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = value
	}
	return closes
}

func TestSMA(t *testing.T) {
	candles := makeCandles([]float64{1, 2, 3, 4, 5})
	values, err := NewSMA(3).Calculate(candles)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, values[2], 1e-9)
	assert.InDelta(t, 3.0, values[3], 1e-9)
	assert.InDelta(t, 4.0, values[4], 1e-9)
}

func TestSMAInsufficientData(t *testing.T) {
	candles := makeCandles([]float64{1, 2})
	_, err := NewSMA(3).Calculate(candles)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEMAStartsAtSMA(t *testing.T) {
	candles := makeCandles([]float64{10, 20, 30, 40})
	values, err := NewEMA(3).Calculate(candles)
	require.NoError(t, err)

	// Seed value is the SMA of the first period
	assert.InDelta(t, 20.0, values[2], 1e-9)
	// Next: (40-20)*0.5 + 20
	assert.InDelta(t, 30.0, values[3], 1e-9)
}

func TestEMAConstantSeries(t *testing.T) {
	candles := makeCandles(constantCloses(30, 42))
	values, err := NewEMA(10).Calculate(candles)
	require.NoError(t, err)

	for i := 9; i < len(values); i++ {
		assert.InDelta(t, 42.0, values[i], 1e-9)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	values, err := NewRSI(14).Calculate(makeCandles(closes))
	require.NoError(t, err)

	assert.InDelta(t, 100.0, values[len(values)-1], 1e-9)
}

func TestRSIAllLosses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	values, err := NewRSI(14).Calculate(makeCandles(closes))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, values[len(values)-1], 1e-9)
}

func TestATRFlatRange(t *testing.T) {
	// Every candle has High-Low == 2 and identical closes, so TR is
	// constant and ATR converges to it immediately.
	candles := makeCandles(constantCloses(20, 50))
	values, err := NewATR(14).Calculate(candles)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, values[len(values)-1], 1e-9)
}

func TestBollingerBandsConstantSeries(t *testing.T) {
	candles := makeCandles(constantCloses(25, 100))
	bands, err := NewBollingerBands(20, 2.0).Calculate(candles)
	require.NoError(t, err)

	last := len(candles) - 1
	assert.InDelta(t, 100.0, bands["middle"][last], 1e-9)
	assert.InDelta(t, 100.0, bands["upper"][last], 1e-9)
	assert.InDelta(t, 100.0, bands["lower"][last], 1e-9)
}

func TestVolumeRatio(t *testing.T) {
	candles := makeCandles(constantCloses(25, 100))
	// Spike the last bar's volume to 3x the average of the rest
	candles[len(candles)-1].Volume = 3000

	values, err := NewVolumeRatio(20).Calculate(candles)
	require.NoError(t, err)

	last := len(values) - 1
	assert.Greater(t, values[last], 1.0)
}

func TestMACDInvalidPeriods(t *testing.T) {
	candles := makeCandles(constantCloses(50, 100))
	_, err := NewMACD(26, 12, 9).Calculate(candles)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestHighestHigh(t *testing.T) {
	candles := makeCandles([]float64{10, 50, 20, 30})
	// Highs are close+1
	assert.InDelta(t, 51.0, HighestHigh(candles, 20), 1e-9)
	assert.InDelta(t, 31.0, HighestHigh(candles, 2), 1e-9)
}

func TestSnapshotParamsMinBars(t *testing.T) {
	p := SnapshotParams{RSIPeriod: 14, ATRPeriod: 14, EMAFast: 50, EMASlow: 200}
	assert.Equal(t, 200, p.MinBars())

	p = SnapshotParams{RSIPeriod: 7, ATRPeriod: 14, EMAFast: 8, EMASlow: 13}
	// MACD slow+signal dominates when the EMAs are short
	assert.Equal(t, 35, p.MinBars())
}

func TestBuildSnapshot(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/10)
	}
	candles := makeCandles(closes)

	params := SnapshotParams{RSIPeriod: 14, ATRPeriod: 14, EMAFast: 50, EMASlow: 200}
	snap, err := BuildSnapshot(candles, params)
	require.NoError(t, err)

	last := candles[len(candles)-1]
	assert.Equal(t, last.Timestamp, snap.Timestamp)
	assert.Equal(t, last.Close, snap.Close)
	assert.GreaterOrEqual(t, snap.RSI, 0.0)
	assert.LessOrEqual(t, snap.RSI, 100.0)
	assert.Greater(t, snap.ATR, 0.0)
	assert.Greater(t, snap.ATRAverage, 0.0)
	assert.GreaterOrEqual(t, snap.BollUpper, snap.BollMiddle)
	assert.GreaterOrEqual(t, snap.BollMiddle, snap.BollLower)
	assert.GreaterOrEqual(t, snap.TrailingHigh, last.High)
}

func TestBuildSnapshotInsufficientData(t *testing.T) {
	candles := makeCandles(constantCloses(10, 100))
	params := SnapshotParams{RSIPeriod: 14, ATRPeriod: 14, EMAFast: 50, EMASlow: 200}
	_, err := BuildSnapshot(candles, params)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
