// Package risk computes leveraged position sizing and P&L.
package risk

import (
	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// Sizing describes a proposed leveraged entry.
type Sizing struct {
	RiskAmount    float64 // balance fraction put at risk
	Exposure      float64 // risk amount scaled by leverage
	Size          float64 // quantity = exposure / entry price
	Margin        float64 // capital set aside; algebraically equals RiskAmount
	StopLossPrice float64 // reference stop price stored on the position
}

// SizeEntry computes position size, required margin and the reference stop
// price for an entry at entryPrice. Returns a MarginError when the required
// margin exceeds the available balance; no state is changed in that case.
func SizeEntry(balance, entryPrice, riskPercent, leverage, stopLossPct float64) (Sizing, error) {
	riskAmount := balance * (riskPercent / 100)
	exposure := riskAmount * leverage
	size := exposure / entryPrice
	margin := (size * entryPrice) / leverage

	if margin > balance {
		return Sizing{}, apperrors.NewMarginError(margin, balance)
	}

	return Sizing{
		RiskAmount:    riskAmount,
		Exposure:      exposure,
		Size:          size,
		Margin:        margin,
		StopLossPrice: entryPrice * (1 - stopLossPct/100),
	}, nil
}

// CloseResult describes the realized outcome of closing a position.
type CloseResult struct {
	RawProfit       float64 // size * (exit - entry)
	LeveragedProfit float64 // raw profit scaled by leverage
	BalanceDelta    float64 // margin returned in full plus leveraged P&L
}

// SizeExit computes the realized P&L for closing pos at exitPrice. Losses
// beyond the returned margin are not capped: there is no liquidation model,
// so the balance delta can go negative.
func SizeExit(pos models.Position, exitPrice float64) CloseResult {
	raw := pos.Size * (exitPrice - pos.EntryPrice)
	leveraged := raw * pos.Leverage
	return CloseResult{
		RawProfit:       raw,
		LeveragedProfit: leveraged,
		BalanceDelta:    pos.Margin + leveraged,
	}
}
