// Package marketdata provides historical bar retrieval for the trading engine.
package marketdata

import (
	"context"

	"paper-trader/internal/models"
)

// Provider delivers OHLCV bars for a symbol and timeframe, ordered ascending
// by timestamp. Implementations must return a DataError (wrapping ErrNoData)
// on failed or empty fetches so the engine can skip the cycle.
type Provider interface {
	Bars(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}
