// Package store provides data persistence for the paper trading ledger.
package store

import (
	"paper-trader/internal/models"
)

// TradeResults is the trade-results document rewritten on every SELL: the
// full trade list plus the derived performance summary.
type TradeResults struct {
	Trades  []models.TradeRecord      `json:"trades"`
	Summary models.PerformanceSummary `json:"summary"`
}

// AccountStore persists the account snapshot and the trade-results document.
// Writes must be all-or-nothing: a failed write must not leave a half-written
// document behind.
type AccountStore interface {
	// Load reads the last committed account snapshot. It returns (nil, nil)
	// when no snapshot exists yet.
	Load() (*models.Account, error)
	// Save writes the full account snapshot.
	Save(account *models.Account) error
	// SaveResults rewrites the trade-results document.
	SaveResults(results *TradeResults) error
}

// TradeJournal is an append-only record of executed trades, queryable from
// the CLI.
type TradeJournal interface {
	Insert(record models.TradeRecord) error
	List(limit int) ([]models.TradeRecord, error)
	Close() error
}
