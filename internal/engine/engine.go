// Package engine runs the polling trade decision loop.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/config"
	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/indicators"
	"paper-trader/internal/ledger"
	"paper-trader/internal/marketdata"
	"paper-trader/internal/models"
	"paper-trader/internal/risk"
	"paper-trader/internal/strategy"
	"paper-trader/pkg/utils"
)

// State identifies where the engine is within a cycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateEvaluating
	StateExecuting
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateEvaluating:
		return "EVALUATING"
	case StateExecuting:
		return "EXECUTING"
	case StateWaiting:
		return "WAITING"
	default:
		return "IDLE"
	}
}

// errBackoff is the wait after a recoverable cycle failure. It is shorter
// than any normal cycle wait so a transient hiccup does not cost a full bar.
const errBackoff = 30 * time.Second

// Engine orchestrates one trading cycle at a time: fetch bars, evaluate the
// strategy, execute through the ledger, persist, wait. Cycles never overlap.
type Engine struct {
	cfg    *config.Config
	data   marketdata.Provider
	ledger *ledger.Ledger
	logger zerolog.Logger
	retry  utils.RetryConfig
	state  State
}

// New creates a new trading engine.
func New(cfg *config.Config, data marketdata.Provider, led *ledger.Ledger, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		data:   data,
		ledger: led,
		logger: logger,
		retry:  utils.DefaultRetryConfig(),
		state:  StateIdle,
	}
}

// State returns the engine's current state.
func (e *Engine) State() State {
	return e.state
}

// CycleWait returns the wait between cycles for a timeframe. Unrecognized
// timeframes default to one hour.
func CycleWait(timeframe string) time.Duration {
	switch timeframe {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	default:
		return time.Hour
	}
}

// Run loops indefinitely until ctx is cancelled. Recoverable cycle errors
// are logged and followed by a short backoff; invariant violations and
// persistence failures stop the loop, since the ledger's integrity is at
// risk and retrying could double-execute.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info().
		Str("symbol", e.cfg.Trading.Symbol).
		Str("timeframe", e.cfg.Trading.Timeframe).
		Float64("balance", e.ledger.Balance()).
		Float64("leverage", e.cfg.Trading.Leverage).
		Msg("Starting paper trading")

	for {
		wait := CycleWait(e.cfg.Trading.Timeframe)

		if err := e.Cycle(ctx); err != nil {
			if !apperrors.IsRecoverable(err) {
				e.logger.Error().Err(err).Msg("Ledger integrity at risk, stopping")
				return err
			}
			e.logger.Warn().Err(err).Dur("backoff", errBackoff).Msg("Cycle failed, backing off")
			wait = errBackoff
		}

		e.state = StateWaiting
		e.logger.Debug().Dur("wait", wait).Msg("Waiting for next cycle")
		select {
		case <-ctx.Done():
			e.state = StateIdle
			return ctx.Err()
		case <-time.After(wait):
		}
		e.state = StateIdle
	}
}

// RunOnce executes exactly one cycle, for externally scheduled invocation.
func (e *Engine) RunOnce(ctx context.Context) error {
	err := e.Cycle(ctx)
	e.state = StateIdle
	return err
}

// Cycle performs one full fetch-evaluate-execute pass. Either the full
// entry/exit mutation plus persistence completes, or nothing is mutated.
func (e *Engine) Cycle(ctx context.Context) error {
	symbol := e.cfg.Trading.Symbol

	e.state = StateFetching
	bars, err := utils.RetryWithResult(ctx, e.retry, func() ([]models.Candle, error) {
		return e.data.Bars(ctx, symbol, e.cfg.Trading.Timeframe, e.barLimit())
	})
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return apperrors.NewDataError("engine", symbol, "empty bar window", nil)
	}

	e.state = StateEvaluating
	snap, err := indicators.BuildSnapshot(bars, e.snapshotParams())
	if err != nil {
		return apperrors.NewDataError("engine", symbol, "building indicator snapshot", err)
	}

	pos, hasPosition := e.ledger.Position(symbol)
	eval := strategy.Evaluate(snap, pos, hasPosition, e.cfg)

	e.logger.Info().
		Str("symbol", symbol).
		Time("bar", snap.Timestamp).
		Float64("close", snap.Close).
		Float64("rsi", snap.RSI).
		Float64("volume_ratio", snap.VolumeRatio).
		Int("conditions_met", eval.ConditionsMet).
		Str("signal", eval.Signal.String()).
		Msg("Cycle evaluated")

	switch eval.Signal {
	case models.SignalEnter:
		err = e.executeEntry(symbol, snap)
	case models.SignalExit:
		err = e.executeExit(symbol, snap, eval.ExitReason)
	default:
		e.state = StateWaiting
	}
	if err != nil {
		return err
	}

	e.reportOpenPosition(symbol, snap.Close)
	return nil
}

func (e *Engine) executeEntry(symbol string, snap *models.IndicatorSnapshot) error {
	e.state = StateExecuting

	sizing, err := risk.SizeEntry(
		e.ledger.Balance(),
		snap.Close,
		e.cfg.Trading.RiskPercent,
		e.cfg.Trading.Leverage,
		e.cfg.Risk.StopLoss,
	)
	if err != nil {
		// Entry rejected, nothing mutated. Report and carry on.
		e.logger.Warn().Err(err).Str("symbol", symbol).Msg("Entry rejected")
		return nil
	}

	record, err := e.ledger.OpenPosition(symbol, snap.Timestamp, snap.Close, sizing, e.cfg.Trading.Leverage)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("symbol", symbol).
		Float64("size", record.Size).
		Float64("price", record.Price).
		Float64("margin", record.Margin).
		Float64("leverage", record.Leverage).
		Float64("balance", record.BalanceAfter).
		Msg("Executed BUY")
	return nil
}

func (e *Engine) executeExit(symbol string, snap *models.IndicatorSnapshot, reason string) error {
	e.state = StateExecuting

	record, result, err := e.ledger.ClosePosition(symbol, snap.Timestamp, snap.Close)
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("symbol", symbol).
		Str("reason", reason).
		Float64("size", record.Size).
		Float64("price", record.Price).
		Float64("profit", result.LeveragedProfit).
		Float64("balance", record.BalanceAfter).
		Msg("Executed SELL")

	summary := e.ledger.Summary()
	e.logger.Info().
		Int("total_trades", summary.TotalTrades).
		Int("winning", summary.WinningTrades).
		Float64("total_profit", summary.TotalProfit).
		Float64("win_rate", summary.WinRate).
		Msg("Performance summary")
	return nil
}

func (e *Engine) reportOpenPosition(symbol string, currentPrice float64) {
	pnl, ok := e.ledger.UnrealizedPnL(symbol, currentPrice)
	if !ok {
		return
	}
	e.logger.Info().
		Str("symbol", symbol).
		Float64("entry", pnl.EntryPrice).
		Float64("current", pnl.CurrentPrice).
		Float64("unrealized_pnl", pnl.PnL).
		Float64("pnl_pct", pnl.PnLPercent).
		Msg("Open position")
}

func (e *Engine) snapshotParams() indicators.SnapshotParams {
	return indicators.SnapshotParams{
		RSIPeriod: e.cfg.Indicators.RSIPeriod,
		ATRPeriod: e.cfg.Indicators.ATRPeriod,
		EMAFast:   e.cfg.Indicators.EMAFast,
		EMASlow:   e.cfg.Indicators.EMASlow,
	}
}

// barLimit sizes the fetch window: enough bars for every indicator plus the
// trailing-stop lookback, with headroom for partial leading values.
func (e *Engine) barLimit() int {
	limit := e.snapshotParams().MinBars() + indicators.TrailingWindow + 30
	if limit < 120 {
		limit = 120
	}
	return limit
}
