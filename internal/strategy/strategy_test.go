package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"paper-trader/internal/config"
	"paper-trader/internal/models"
)

func testConfig() *config.Config {
	cfg := config.Conservative()
	cfg.Indicators.RSIOversold = 35
	cfg.Indicators.RSIOverbought = 70
	cfg.Signals.VolumeThreshold = 1.2
	cfg.Signals.MinConditions = 4
	cfg.Risk.ProfitTarget = 5.0
	cfg.Risk.StopLoss = 3.0
	cfg.Risk.TrailingStop = true
	return cfg
}

// allConditionsSnap satisfies all four entry conditions under testConfig.
func allConditionsSnap() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Close:       110,
		EMAFast:     105,
		EMASlow:     100,
		RSI:         30,
		MACD:        1.0,
		MACDSignal:  0.5,
		VolumeRatio: 1.5,
		BollMiddle:  108,
		ATR:         2.0,
		ATRAverage:  3.0,
	}
}

func TestEvaluateEntryAllMet(t *testing.T) {
	cfg := testConfig()
	conds := EvaluateEntry(allConditionsSnap(), cfg)

	assert.True(t, conds.Trend)
	assert.True(t, conds.Momentum)
	assert.True(t, conds.Volume)
	assert.True(t, conds.Volatility)
	assert.Equal(t, 4, conds.Met())
}

func TestEvaluateEntryConditions(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name   string
		mutate func(*models.IndicatorSnapshot)
		check  func(t *testing.T, c EntryConditions)
	}{
		{
			name:   "trend fails when close below fast EMA",
			mutate: func(s *models.IndicatorSnapshot) { s.Close = 104; s.BollMiddle = 100 },
			check:  func(t *testing.T, c EntryConditions) { assert.False(t, c.Trend) },
		},
		{
			name:   "trend fails when fast EMA below slow EMA",
			mutate: func(s *models.IndicatorSnapshot) { s.EMASlow = 106 },
			check:  func(t *testing.T, c EntryConditions) { assert.False(t, c.Trend) },
		},
		{
			name: "momentum passes on MACD alone",
			mutate: func(s *models.IndicatorSnapshot) {
				s.RSI = 50 // not oversold
			},
			check: func(t *testing.T, c EntryConditions) { assert.True(t, c.Momentum) },
		},
		{
			name: "momentum passes on RSI alone",
			mutate: func(s *models.IndicatorSnapshot) {
				s.MACD = 0.1
				s.MACDSignal = 0.5
			},
			check: func(t *testing.T, c EntryConditions) { assert.True(t, c.Momentum) },
		},
		{
			name: "momentum fails when neither holds",
			mutate: func(s *models.IndicatorSnapshot) {
				s.RSI = 50
				s.MACD = 0.1
				s.MACDSignal = 0.5
			},
			check: func(t *testing.T, c EntryConditions) { assert.False(t, c.Momentum) },
		},
		{
			name:   "volume fails at the threshold",
			mutate: func(s *models.IndicatorSnapshot) { s.VolumeRatio = 1.2 },
			check:  func(t *testing.T, c EntryConditions) { assert.False(t, c.Volume) },
		},
		{
			name:   "volatility fails when ATR elevated",
			mutate: func(s *models.IndicatorSnapshot) { s.ATR = 4.0 },
			check:  func(t *testing.T, c EntryConditions) { assert.False(t, c.Volatility) },
		},
		{
			name:   "volatility fails below band middle",
			mutate: func(s *models.IndicatorSnapshot) { s.BollMiddle = 115 },
			check:  func(t *testing.T, c EntryConditions) { assert.False(t, c.Volatility) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := allConditionsSnap()
			tt.mutate(snap)
			tt.check(t, EvaluateEntry(snap, cfg))
		})
	}
}

func openPosition(entry float64) models.Position {
	return models.Position{
		Size:          2,
		EntryPrice:    entry,
		StopLossPrice: entry * 0.97,
		Margin:        200,
		Leverage:      1,
		OpenedAt:      time.Now(),
	}
}

// holdSnap triggers no exit for a position entered at 100 under testConfig.
func holdSnap() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Close:        101,
		EMAFast:      100,
		RSI:          55,
		TrailingHigh: 102,
	}
}

func TestEvaluateExit(t *testing.T) {
	cfg := testConfig()
	pos := openPosition(100)

	tests := []struct {
		name      string
		mutate    func(*models.IndicatorSnapshot)
		triggered bool
		reason    string
	}{
		{
			name:      "holds when nothing triggers",
			mutate:    func(s *models.IndicatorSnapshot) {},
			triggered: false,
		},
		{
			name:      "RSI overbought",
			mutate:    func(s *models.IndicatorSnapshot) { s.RSI = 75 },
			triggered: true,
			reason:    ExitReasonMomentum,
		},
		{
			name: "close below fast EMA",
			mutate: func(s *models.IndicatorSnapshot) {
				s.Close = 99.5
				s.EMAFast = 100
			},
			triggered: true,
			reason:    ExitReasonTrend,
		},
		{
			name: "profit target reached exactly",
			mutate: func(s *models.IndicatorSnapshot) {
				s.Close = 105
				s.EMAFast = 100
				s.TrailingHigh = 105
			},
			triggered: true,
			reason:    ExitReasonProfitTarget,
		},
		{
			name: "stop loss reached",
			mutate: func(s *models.IndicatorSnapshot) {
				s.Close = 97
				s.EMAFast = 95 // keep trend exit out of the way
			},
			triggered: true,
			reason:    ExitReasonStopLoss,
		},
		{
			name: "trailing stop from recent high",
			mutate: func(s *models.IndicatorSnapshot) {
				// 3.85% below the 20-bar high but only 1% loss from entry
				s.Close = 101
				s.EMAFast = 100
				s.TrailingHigh = 105
			},
			triggered: true,
			reason:    ExitReasonTrailingStop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := holdSnap()
			tt.mutate(snap)
			triggered, reason := EvaluateExit(pos, snap, cfg)
			assert.Equal(t, tt.triggered, triggered)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestEvaluateExitTrailingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Risk.TrailingStop = false

	snap := holdSnap()
	snap.TrailingHigh = 105 // would trigger the trailing stop if enabled

	triggered, _ := EvaluateExit(openPosition(100), snap, cfg)
	assert.False(t, triggered)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		conditionsMet int
		hasPosition   bool
		exitTriggered bool
		minConditions int
		want          models.Signal
	}{
		{"enter at threshold", 4, false, false, 4, models.SignalEnter},
		{"enter above threshold", 3, false, false, 1, models.SignalEnter},
		{"hold below threshold", 3, false, false, 4, models.SignalNone},
		{"exit when triggered", 0, true, true, 4, models.SignalExit},
		{"hold open position", 4, true, false, 4, models.SignalNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.conditionsMet, tt.hasPosition, tt.exitTriggered, tt.minConditions)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateNeverEntersWithOpenPosition(t *testing.T) {
	cfg := testConfig()

	// All entry conditions satisfied and no exit trigger: holding an open
	// position must still yield NONE, never ENTER.
	snap := allConditionsSnap()
	snap.TrailingHigh = snap.Close

	eval := Evaluate(snap, openPosition(snap.Close), true, cfg)
	assert.NotEqual(t, models.SignalEnter, eval.Signal)
}

func TestEvaluateEntersWithoutPosition(t *testing.T) {
	cfg := testConfig()
	eval := Evaluate(allConditionsSnap(), models.Position{}, false, cfg)

	assert.Equal(t, models.SignalEnter, eval.Signal)
	assert.Equal(t, 4, eval.ConditionsMet)
	assert.Empty(t, eval.ExitReason)
}
