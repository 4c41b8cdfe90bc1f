package strategy

import (
	"paper-trader/internal/config"
	"paper-trader/internal/models"
)

// Exit reasons reported alongside a triggered exit.
const (
	ExitReasonMomentum     = "rsi_overbought"
	ExitReasonTrend        = "close_below_ema_fast"
	ExitReasonProfitTarget = "profit_target"
	ExitReasonStopLoss     = "stop_loss"
	ExitReasonTrailingStop = "trailing_stop"
)

// EvaluateExit checks whether an open position should be closed at the
// latest bar. The stop decision is re-derived live from the current close,
// not from the stop price stored on the position. Returns the first
// triggered reason; any single condition suffices.
func EvaluateExit(pos models.Position, snap *models.IndicatorSnapshot, cfg *config.Config) (bool, string) {
	if snap.RSI > cfg.Indicators.RSIOverbought {
		return true, ExitReasonMomentum
	}
	if snap.Close < snap.EMAFast {
		return true, ExitReasonTrend
	}

	profitPct := (snap.Close - pos.EntryPrice) / pos.EntryPrice * 100
	if profitPct >= cfg.Risk.ProfitTarget {
		return true, ExitReasonProfitTarget
	}

	lossPct := (pos.EntryPrice - snap.Close) / pos.EntryPrice * 100
	if lossPct >= cfg.Risk.StopLoss {
		return true, ExitReasonStopLoss
	}

	if cfg.Risk.TrailingStop && snap.TrailingHigh > 0 {
		trailLossPct := (snap.TrailingHigh - snap.Close) / snap.TrailingHigh * 100
		if trailLossPct >= cfg.Risk.StopLoss {
			return true, ExitReasonTrailingStop
		}
	}

	return false, ""
}
