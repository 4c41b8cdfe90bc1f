package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	apperrors "paper-trader/internal/errors"
	"paper-trader/internal/models"
)

const (
	accountFile = "paper_account.json"
	resultsFile = "trade_results.json"
)

// JSONStore persists the account snapshot and trade results as JSON
// documents in a directory. Writes go to a temporary file which is then
// atomically renamed over the target, so a crashed write never corrupts
// the last committed state.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a JSON store rooted at dir, creating it if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewPersistenceError(dir, err)
	}
	return &JSONStore{dir: dir}, nil
}

// Load reads the last committed account snapshot.
func (s *JSONStore) Load() (*models.Account, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, accountFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, apperrors.NewPersistenceError(accountFile, err)
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, apperrors.NewPersistenceError(accountFile, err)
	}
	if account.Positions == nil {
		account.Positions = make(map[string]models.Position)
	}
	return &account, nil
}

// Save writes the full account snapshot.
func (s *JSONStore) Save(account *models.Account) error {
	return s.writeAtomic(accountFile, account)
}

// SaveResults rewrites the trade-results document.
func (s *JSONStore) SaveResults(results *TradeResults) error {
	return s.writeAtomic(resultsFile, results)
}

func (s *JSONStore) writeAtomic(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewPersistenceError(name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return apperrors.NewPersistenceError(name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewPersistenceError(name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.NewPersistenceError(name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.NewPersistenceError(name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return apperrors.NewPersistenceError(name, err)
	}
	return nil
}
