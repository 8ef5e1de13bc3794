// Package resumestore backs the scheduler's crash-resumable chunking
// contract: a sqlite ledger of which targets a generation run has already
// completed, keyed by run id, so a resumed run can skip finished work.
package resumestore

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/marketloop/pathfinder/internal/lexicon"
)

// Store wraps a sqlite-backed completed_targets ledger.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

const schema = `
CREATE TABLE IF NOT EXISTS completed_targets (
	run_id TEXT NOT NULL,
	exchange INTEGER NOT NULL,
	currency INTEGER NOT NULL,
	completed_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, exchange, currency)
);
`

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("resumestore: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("resumestore: ping database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("resumestore: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID generates a fresh run id for a "network generate" invocation.
func NewRunID() string {
	return uuid.NewString()
}

// MarkDone records target as complete under runID.
func (s *Store) MarkDone(runID string, target lexicon.ExchangeCurrency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO completed_targets (run_id, exchange, currency, completed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (run_id, exchange, currency) DO NOTHING`,
		runID, target.Exchange, target.Currency, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("resumestore: mark done: %w", err)
	}
	return nil
}

// IsDone reports whether target was already completed under runID.
func (s *Store) IsDone(runID string, target lexicon.ExchangeCurrency) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(1) FROM completed_targets WHERE run_id = ? AND exchange = ? AND currency = ?`,
		runID, target.Exchange, target.Currency,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("resumestore: is done: %w", err)
	}
	return count > 0, nil
}

// Pending filters targets down to those not yet marked done under runID,
// preserving input order.
func (s *Store) Pending(runID string, targets []lexicon.ExchangeCurrency) ([]lexicon.ExchangeCurrency, error) {
	var pending []lexicon.ExchangeCurrency
	for _, target := range targets {
		done, err := s.IsDone(runID, target)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, target)
		}
	}
	return pending, nil
}
