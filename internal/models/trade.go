package models

import "time"

// Position represents the single open leveraged position for a symbol.
// It is created whole by a BUY and destroyed whole by a SELL; it is never
// partially filled or modified in place.
type Position struct {
	Size          float64   `json:"size"`
	EntryPrice    float64   `json:"entry_price"`
	StopLossPrice float64   `json:"stop_loss"`
	Margin        float64   `json:"margin"`
	Leverage      float64   `json:"leverage"`
	OpenedAt      time.Time `json:"opened_at"`
}

// TradeRecord is an immutable, append-only entry in the trade history.
// Margin is set on BUY records only, Profit on SELL records only.
type TradeRecord struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol"`
	Type          TradeType `json:"type"`
	Price         float64   `json:"price"`
	Size          float64   `json:"size"`
	Leverage      float64   `json:"leverage"`
	Margin        float64   `json:"margin,omitempty"`
	PositionValue float64   `json:"position_value,omitempty"`
	Profit        float64   `json:"profit"`
	BalanceAfter  float64   `json:"balance_after"`
}

// Account is the durable paper trading account. It is owned exclusively by
// the ledger; nothing else mutates it.
type Account struct {
	Balance      float64             `json:"balance"`
	Positions    map[string]Position `json:"positions"`
	TradeHistory []TradeRecord       `json:"trade_history"`
}

// NewAccount creates a fresh account with the given starting balance.
func NewAccount(initialBalance float64) *Account {
	return &Account{
		Balance:      initialBalance,
		Positions:    make(map[string]Position),
		TradeHistory: make([]TradeRecord, 0),
	}
}

// PerformanceSummary holds running statistics derived from SELL records.
type PerformanceSummary struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	TotalProfit   float64 `json:"total_profit"`
	WinRate       float64 `json:"win_rate"`
}

// UnrealizedPnL describes the mark-to-market state of an open position.
type UnrealizedPnL struct {
	EntryPrice   float64
	CurrentPrice float64
	Size         float64
	PnL          float64
	PnLPercent   float64
}
