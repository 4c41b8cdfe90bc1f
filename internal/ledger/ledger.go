// Package ledger owns the durable paper trading account. All account
// mutation goes through its operations, giving a single choke point for
// persistence and invariant checks.
package ledger

import (
	"time"

	"github.com/rs/zerolog"

	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
	"paper-trader/internal/risk"
	"paper-trader/internal/store"
	"paper-trader/pkg/id"
)

// Ledger holds the account and its persistence backends. Execution is
// single-threaded by design; operations are not safe for concurrent use.
type Ledger struct {
	account *models.Account
	store   store.AccountStore
	journal store.TradeJournal
	logger  zerolog.Logger
}

// Open loads the last committed account snapshot, or creates and persists a
// fresh account with initialBalance when none exists. journal may be nil.
func Open(st store.AccountStore, journal store.TradeJournal, initialBalance float64, logger zerolog.Logger) (*Ledger, error) {
	account, err := st.Load()
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = models.NewAccount(initialBalance)
		if err := st.Save(account); err != nil {
			return nil, err
		}
		logger.Info().Float64("balance", initialBalance).Msg("Created fresh paper account")
	} else {
		logger.Info().
			Float64("balance", account.Balance).
			Int("trades", len(account.TradeHistory)).
			Int("open_positions", len(account.Positions)).
			Msg("Resumed paper account")
	}

	return &Ledger{
		account: account,
		store:   st,
		journal: journal,
		logger:  logger,
	}, nil
}

// Balance returns the current account balance.
func (l *Ledger) Balance() float64 {
	return l.account.Balance
}

// Position returns the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (models.Position, bool) {
	pos, ok := l.account.Positions[symbol]
	return pos, ok
}

// History returns a copy of the trade history.
func (l *Ledger) History() []models.TradeRecord {
	history := make([]models.TradeRecord, len(l.account.TradeHistory))
	copy(history, l.account.TradeHistory)
	return history
}

// OpenPosition executes a BUY: it deducts the margin, records the position
// and appends a trade record, then persists the full account snapshot before
// returning. Fails with ErrPositionAlreadyOpen when a position exists for
// the symbol. On a persistence failure the in-memory mutation is rolled
// back, so the account never diverges from the last committed snapshot.
func (l *Ledger) OpenPosition(symbol string, ts time.Time, entryPrice float64, sizing risk.Sizing, leverage float64) (models.TradeRecord, error) {
	if _, exists := l.account.Positions[symbol]; exists {
		return models.TradeRecord{}, apperrors.NewLedgerError("open", symbol, apperrors.ErrPositionAlreadyOpen)
	}

	prevBalance := l.account.Balance

	l.account.Balance -= sizing.Margin
	l.account.Positions[symbol] = models.Position{
		Size:          sizing.Size,
		EntryPrice:    entryPrice,
		StopLossPrice: sizing.StopLossPrice,
		Margin:        sizing.Margin,
		Leverage:      leverage,
		OpenedAt:      ts,
	}

	record := models.TradeRecord{
		ID:            id.New(),
		Timestamp:     ts,
		Symbol:        symbol,
		Type:          models.TradeBuy,
		Price:         entryPrice,
		Size:          sizing.Size,
		Leverage:      leverage,
		Margin:        sizing.Margin,
		PositionValue: sizing.Size * entryPrice,
		BalanceAfter:  l.account.Balance,
	}
	l.account.TradeHistory = append(l.account.TradeHistory, record)

	if err := l.store.Save(l.account); err != nil {
		l.account.Balance = prevBalance
		delete(l.account.Positions, symbol)
		l.account.TradeHistory = l.account.TradeHistory[:len(l.account.TradeHistory)-1]
		return models.TradeRecord{}, err
	}

	l.journalInsert(record)
	return record, nil
}

// ClosePosition executes a SELL at exitPrice: the margin is returned in full
// and the leveraged profit or loss is applied on top. The position is
// destroyed, a trade record appended, and both the account snapshot and the
// trade-results document are persisted before returning. Fails with
// ErrNoOpenPosition when no position exists for the symbol.
func (l *Ledger) ClosePosition(symbol string, ts time.Time, exitPrice float64) (models.TradeRecord, risk.CloseResult, error) {
	pos, exists := l.account.Positions[symbol]
	if !exists {
		return models.TradeRecord{}, risk.CloseResult{}, apperrors.NewLedgerError("close", symbol, apperrors.ErrNoOpenPosition)
	}

	result := risk.SizeExit(pos, exitPrice)
	prevBalance := l.account.Balance

	l.account.Balance += result.BalanceDelta
	delete(l.account.Positions, symbol)

	record := models.TradeRecord{
		ID:           id.New(),
		Timestamp:    ts,
		Symbol:       symbol,
		Type:         models.TradeSell,
		Price:        exitPrice,
		Size:         pos.Size,
		Leverage:     pos.Leverage,
		Profit:       result.LeveragedProfit,
		BalanceAfter: l.account.Balance,
	}
	l.account.TradeHistory = append(l.account.TradeHistory, record)

	rollback := func() {
		l.account.Balance = prevBalance
		l.account.Positions[symbol] = pos
		l.account.TradeHistory = l.account.TradeHistory[:len(l.account.TradeHistory)-1]
	}

	if err := l.store.Save(l.account); err != nil {
		rollback()
		return models.TradeRecord{}, risk.CloseResult{}, err
	}
	if err := l.store.SaveResults(&store.TradeResults{
		Trades:  l.History(),
		Summary: l.Summary(),
	}); err != nil {
		rollback()
		return models.TradeRecord{}, risk.CloseResult{}, err
	}

	l.journalInsert(record)
	return record, result, nil
}

// journalInsert appends to the sqlite journal. The journal is a queryable
// copy of the history, not the source of truth, so failures are logged
// rather than rolled back.
func (l *Ledger) journalInsert(record models.TradeRecord) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Insert(record); err != nil {
		l.logger.Warn().Err(err).Str("trade_id", record.ID).Msg("Trade journal insert failed")
	}
}

// Summary derives the performance summary by scanning SELL records. BUY
// records are never counted.
func (l *Ledger) Summary() models.PerformanceSummary {
	return Summarize(l.account.TradeHistory)
}

// Summarize computes performance statistics over a trade history. Only
// closing trades count; an open position is not yet a result.
func Summarize(history []models.TradeRecord) models.PerformanceSummary {
	var s models.PerformanceSummary
	for _, record := range history {
		if record.Type != models.TradeSell {
			continue
		}
		s.TotalTrades++
		s.TotalProfit += record.Profit
		if record.Profit > 0 {
			s.WinningTrades++
		} else {
			s.LosingTrades++
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	return s
}

// UnrealizedPnL computes the mark-to-market P&L of the open position for
// symbol at currentPrice.
func (l *Ledger) UnrealizedPnL(symbol string, currentPrice float64) (models.UnrealizedPnL, bool) {
	pos, ok := l.account.Positions[symbol]
	if !ok {
		return models.UnrealizedPnL{}, false
	}

	costBasis := pos.Size * pos.EntryPrice
	pnl := pos.Size*currentPrice - costBasis
	pnlPct := 0.0
	if costBasis > 0 {
		pnlPct = pnl / costBasis * 100
	}

	return models.UnrealizedPnL{
		EntryPrice:   pos.EntryPrice,
		CurrentPrice: currentPrice,
		Size:         pos.Size,
		PnL:          pnl,
		PnLPercent:   pnlPct,
	}, true
}
