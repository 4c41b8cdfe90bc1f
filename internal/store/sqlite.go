package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// SQLiteJournal implements TradeJournal using SQLite. ULID primary keys make
// rows time-sortable without a separate index.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (or creates) the trade journal at dbPath.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		type TEXT NOT NULL,
		price REAL NOT NULL,
		size REAL NOT NULL,
		leverage REAL NOT NULL,
		margin REAL,
		profit REAL,
		balance_after REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Insert appends a trade record to the journal.
func (j *SQLiteJournal) Insert(record models.TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (id, timestamp, symbol, type, price, size, leverage, margin, profit, balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format(time.RFC3339Nano),
		record.Symbol,
		string(record.Type),
		record.Price,
		record.Size,
		record.Leverage,
		record.Margin,
		record.Profit,
		record.BalanceAfter,
	)
	if err != nil {
		return apperrors.NewPersistenceError("trade journal", err)
	}
	return nil
}

// List returns the most recent trades, newest first. A non-positive limit
// returns all trades.
func (j *SQLiteJournal) List(limit int) ([]models.TradeRecord, error) {
	query := `
		SELECT id, timestamp, symbol, type, price, size, leverage, margin, profit, balance_after
		FROM trades ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("trade journal", err)
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var r models.TradeRecord
		var ts, tradeType string
		if err := rows.Scan(&r.ID, &ts, &r.Symbol, &tradeType, &r.Price, &r.Size,
			&r.Leverage, &r.Margin, &r.Profit, &r.BalanceAfter); err != nil {
			return nil, apperrors.NewPersistenceError("trade journal", err)
		}
		r.Type = models.TradeType(tradeType)
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			r.Timestamp = t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("trade journal", err)
	}

	return records, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
