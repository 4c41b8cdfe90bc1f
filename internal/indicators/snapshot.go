// Package indicators provides technical indicator calculations over OHLCV bars.
package indicators

import (
	"paper-trader/internal/models"
)

const (
	bollingerPeriod  = 20
	bollingerStdDev  = 2.0
	volumePeriod     = 20
	atrAveragePeriod = 10

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	// TrailingWindow is the lookback used for the rolling trailing-stop high.
	TrailingWindow = 20
)

// SnapshotParams holds the configurable indicator periods.
type SnapshotParams struct {
	RSIPeriod int
	ATRPeriod int
	EMAFast   int
	EMASlow   int
}

// MinBars returns the minimum number of bars required to produce a snapshot.
func (p SnapshotParams) MinBars() int {
	min := p.EMASlow
	for _, n := range []int{
		p.EMAFast,
		p.RSIPeriod + 1,
		p.ATRPeriod + atrAveragePeriod,
		macdSlow + macdSignal,
		bollingerPeriod,
		volumePeriod,
	} {
		if n > min {
			min = n
		}
	}
	return min
}

// BuildSnapshot computes all indicator values over the bar series and returns
// the latest bar's snapshot. Bars must be ordered ascending by timestamp.
func BuildSnapshot(candles []models.Candle, params SnapshotParams) (*models.IndicatorSnapshot, error) {
	if len(candles) < params.MinBars() {
		return nil, ErrInsufficientData
	}

	last := len(candles) - 1
	latest := candles[last]

	emaFast, err := NewEMA(params.EMAFast).Calculate(candles)
	if err != nil {
		return nil, err
	}
	emaSlow, err := NewEMA(params.EMASlow).Calculate(candles)
	if err != nil {
		return nil, err
	}
	rsi, err := NewRSI(params.RSIPeriod).Calculate(candles)
	if err != nil {
		return nil, err
	}
	macd, err := NewMACD(macdFast, macdSlow, macdSignal).Calculate(candles)
	if err != nil {
		return nil, err
	}
	atr, err := NewATR(params.ATRPeriod).Calculate(candles)
	if err != nil {
		return nil, err
	}
	boll, err := NewBollingerBands(bollingerPeriod, bollingerStdDev).Calculate(candles)
	if err != nil {
		return nil, err
	}
	volRatio, err := NewVolumeRatio(volumePeriod).Calculate(candles)
	if err != nil {
		return nil, err
	}

	// ATR moving average over the defined tail of the ATR series
	atrAvg := CalculateSMA(atr[params.ATRPeriod-1:], atrAveragePeriod)
	atrAverage := 0.0
	if len(atrAvg) > 0 {
		atrAverage = atrAvg[len(atrAvg)-1]
	}

	return &models.IndicatorSnapshot{
		Timestamp:    latest.Timestamp,
		Close:        latest.Close,
		High:         latest.High,
		Low:          latest.Low,
		Volume:       latest.Volume,
		EMAFast:      emaFast[last],
		EMASlow:      emaSlow[last],
		RSI:          rsi[last],
		MACD:         macd["macd"][last],
		MACDSignal:   macd["signal"][last],
		ATR:          atr[last],
		ATRAverage:   atrAverage,
		BollUpper:    boll["upper"][last],
		BollMiddle:   boll["middle"][last],
		BollLower:    boll["lower"][last],
		VolumeRatio:  volRatio[last],
		TrailingHigh: HighestHigh(candles, TrailingWindow),
	}, nil
}
