package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-trader/internal/config"
	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/ledger"
	"paper-trader/internal/models"
	"paper-trader/internal/risk"
	"paper-trader/internal/store"
)

// fakeProvider serves synthetic bars, or fails a set number of times first.
type fakeProvider struct {
	step     float64 // per-bar close increment, negative for a downtrend
	failures int
	calls    int
}

func (f *fakeProvider) Bars(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, apperrors.NewDataError("fake", symbol, "synthetic outage", nil)
	}

	end := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bars := make([]models.Candle, limit)
	for i := range bars {
		c := 100 + f.step*float64(i)
		bars[i] = models.Candle{
			Timestamp: end.Add(-time.Duration(limit-1-i) * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars, nil
}

// memStore is a minimal in-memory AccountStore.
type memStore struct {
	account *models.Account
	results *store.TradeResults
}

func (m *memStore) Load() (*models.Account, error) { return m.account, nil }
func (m *memStore) Save(a *models.Account) error {
	cp := *a
	m.account = &cp
	return nil
}
func (m *memStore) SaveResults(r *store.TradeResults) error {
	m.results = r
	return nil
}

func newTestEngine(t *testing.T, cfg *config.Config, provider *fakeProvider) (*Engine, *ledger.Ledger) {
	t.Helper()
	led, err := ledger.Open(&memStore{}, nil, cfg.Trading.InitialBalance, zerolog.Nop())
	require.NoError(t, err)
	return New(cfg, provider, led, zerolog.Nop()), led
}

func TestCycleWait(t *testing.T) {
	assert.Equal(t, time.Minute, CycleWait("1m"))
	assert.Equal(t, 15*time.Minute, CycleWait("15m"))
	assert.Equal(t, 4*time.Hour, CycleWait("4h"))
	assert.Equal(t, time.Hour, CycleWait("2w"))
}

func TestRunOnceEntersOnSignal(t *testing.T) {
	cfg := config.Aggressive()
	provider := &fakeProvider{step: 0.1} // steady uptrend
	eng, led := newTestEngine(t, cfg, provider)

	require.NoError(t, eng.RunOnce(context.Background()))

	pos, ok := led.Position(cfg.Trading.Symbol)
	require.True(t, ok, "uptrend should satisfy min_conditions=1 and open a position")
	assert.Greater(t, pos.Size, 0.0)
	assert.Equal(t, cfg.Trading.Leverage, pos.Leverage)

	// Margin was deducted
	assert.Less(t, led.Balance(), cfg.Trading.InitialBalance)

	history := led.History()
	require.Len(t, history, 1)
	assert.Equal(t, models.TradeBuy, history[0].Type)
	// Trade timestamp comes from the latest bar, not the wall clock
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), history[0].Timestamp)
}

func TestRunOnceHoldsBelowThreshold(t *testing.T) {
	// Conservative requires all four conditions; a flat market meets none.
	cfg := config.Conservative()
	provider := &fakeProvider{step: 0}
	eng, led := newTestEngine(t, cfg, provider)

	require.NoError(t, eng.RunOnce(context.Background()))

	_, ok := led.Position(cfg.Trading.Symbol)
	assert.False(t, ok)
	assert.Equal(t, cfg.Trading.InitialBalance, led.Balance())
	assert.Empty(t, led.History())
}

func TestRunOnceExitsOpenPosition(t *testing.T) {
	cfg := config.Aggressive()
	provider := &fakeProvider{step: 0.1}
	eng, led := newTestEngine(t, cfg, provider)

	// Entry cycle, then a second cycle against the same uptrend: RSI is
	// pinned overbought, which must close the position.
	require.NoError(t, eng.RunOnce(context.Background()))
	_, ok := led.Position(cfg.Trading.Symbol)
	require.True(t, ok)

	require.NoError(t, eng.RunOnce(context.Background()))
	_, ok = led.Position(cfg.Trading.Symbol)
	assert.False(t, ok)

	history := led.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.TradeSell, history[1].Type)
}

func TestCycleRetriesTransientFetchFailure(t *testing.T) {
	cfg := config.Aggressive()
	provider := &fakeProvider{step: 0.1, failures: 1}
	eng, _ := newTestEngine(t, cfg, provider)

	require.NoError(t, eng.RunOnce(context.Background()))
	assert.Equal(t, 2, provider.calls)
}

func TestCycleReturnsRecoverableDataError(t *testing.T) {
	cfg := config.Aggressive()
	provider := &fakeProvider{failures: 10} // outlives every retry
	eng, led := newTestEngine(t, cfg, provider)

	err := eng.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoData)
	assert.True(t, apperrors.IsRecoverable(err))

	// Nothing was mutated
	assert.Equal(t, cfg.Trading.InitialBalance, led.Balance())
	assert.Empty(t, led.History())
}

func TestCycleRejectsEntryWithoutMutation(t *testing.T) {
	cfg := config.Aggressive()
	provider := &fakeProvider{step: 0.1}
	eng, led := newTestEngine(t, cfg, provider)

	// Drive the balance negative with a catastrophic leveraged loss so the
	// next entry cannot post margin.
	sizing, err := risk.SizeEntry(led.Balance(), 100, cfg.Trading.RiskPercent, cfg.Trading.Leverage, cfg.Risk.StopLoss)
	require.NoError(t, err)
	baseTime := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	_, err = led.OpenPosition(cfg.Trading.Symbol, baseTime, 100, sizing, cfg.Trading.Leverage)
	require.NoError(t, err)
	_, _, err = led.ClosePosition(cfg.Trading.Symbol, baseTime.Add(time.Minute), 90)
	require.NoError(t, err)
	require.Negative(t, led.Balance())

	balance := led.Balance()
	require.NoError(t, eng.RunOnce(context.Background()))

	// Entry was rejected for margin, nothing mutated, cycle still succeeds
	_, ok := led.Position(cfg.Trading.Symbol)
	assert.False(t, ok)
	assert.Equal(t, balance, led.Balance())
	assert.Len(t, led.History(), 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Conservative()
	provider := &fakeProvider{step: 0} // flat: no trades, straight to waiting
	eng, _ := newTestEngine(t, cfg, provider)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := eng.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIdle, eng.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "FETCHING", StateFetching.String())
	assert.Equal(t, "EXECUTING", StateExecuting.String())
}
