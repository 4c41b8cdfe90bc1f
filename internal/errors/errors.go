// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoData              = errors.New("no market data available")
	ErrInsufficientMargin  = errors.New("insufficient margin")
	ErrPositionAlreadyOpen = errors.New("position already open")
	ErrNoOpenPosition      = errors.New("no open position")
	ErrPersistence         = errors.New("persistence failed")
	ErrConfigInvalid       = errors.New("invalid configuration")
)

// DataError represents a failed or empty market data fetch. The engine
// recovers from it by skipping the cycle.
type DataError struct {
	Source  string
	Symbol  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Source, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Source, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNoData, e.Err}
	}
	return []error{ErrNoData}
}

// NewDataError creates a new DataError.
func NewDataError(source, symbol, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// MarginError reports an entry rejected because the required margin exceeds
// the available balance. No account state has changed when it is returned.
type MarginError struct {
	Required  float64
	Available float64
}

func (e *MarginError) Error() string {
	return fmt.Sprintf("insufficient margin: required %.2f, available %.2f", e.Required, e.Available)
}

func (e *MarginError) Unwrap() error {
	return ErrInsufficientMargin
}

// NewMarginError creates a new MarginError.
func NewMarginError(required, available float64) *MarginError {
	return &MarginError{Required: required, Available: available}
}

// LedgerError represents an invariant violation inside a ledger operation.
type LedgerError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger error [%s] %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(op, symbol string, err error) *LedgerError {
	return &LedgerError{Op: op, Symbol: symbol, Err: err}
}

// PersistenceError reports a failed write of the account snapshot or trade
// results. It must never be treated as success by callers.
type PersistenceError struct {
	Target string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error [%s]: %v", e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPersistence, e.Err}
	}
	return []error{ErrPersistence}
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(target string, err error) *PersistenceError {
	return &PersistenceError{Target: target, Err: err}
}

// IsRecoverable reports whether an error is a per-cycle condition the engine
// may retry after a backoff, as opposed to an invariant violation or a
// persistence failure that puts ledger integrity at risk.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPersistence) {
		return false
	}
	if errors.Is(err, ErrPositionAlreadyOpen) || errors.Is(err, ErrNoOpenPosition) {
		return false
	}
	return true
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
