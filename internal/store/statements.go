package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Statement sources.
const (
	SourceCorpus       = "corpus"
	SourceConversation = "conversation"
)

// Statement is a response paired with the input that prompted it.
type Statement struct {
	Text         string
	InResponseTo string
	Category     string
	Source       string
	CreatedAt    time.Time
}

// hash identifies a statement by its content, ignoring category and source.
func (st Statement) hash() string {
	h := sha256.New()
	h.Write([]byte(st.InResponseTo))
	h.Write([]byte{0x1f})
	h.Write([]byte(st.Text))
	return hex.EncodeToString(h.Sum(nil))
}

// SeedStatements inserts statements in one transaction, skipping any whose
// content is already stored. Returns the number actually inserted, so
// re-training on an unchanged corpus reports zero new statements.
func (s *Store) SeedStatements(statements []Statement) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO statements (text, in_response_to, category, source, content_hash)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, st := range statements {
		source := st.Source
		if source == "" {
			source = SourceCorpus
		}
		res, err := stmt.Exec(st.Text, st.InResponseTo, st.Category, source, st.hash())
		if err != nil {
			return inserted, fmt.Errorf("failed to insert statement: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Debug("seeded statements",
		zap.Int("offered", len(statements)),
		zap.Int("inserted", inserted))
	return inserted, nil
}

// LearnStatement records a single statement from a live conversation.
// Duplicate content is silently skipped.
func (s *Store) LearnStatement(st Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source := st.Source
	if source == "" {
		source = SourceConversation
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO statements (text, in_response_to, category, source, content_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		st.Text, st.InResponseTo, st.Category, source, st.hash(),
	)
	if err != nil {
		return fmt.Errorf("failed to learn statement: %w", err)
	}
	return nil
}

// Exemplars returns up to limit corpus statements in training order.
// These prime the response provider with the corpus's conversational tone.
func (s *Store) Exemplars(limit int) ([]Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT text, in_response_to, category, source, created_at
		 FROM statements
		 WHERE source = ? AND in_response_to != ''
		 ORDER BY id
		 LIMIT ?`,
		SourceCorpus, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exemplars: %w", err)
	}
	defer rows.Close()

	var statements []Statement
	for rows.Next() {
		var st Statement
		if err := rows.Scan(&st.Text, &st.InResponseTo, &st.Category, &st.Source, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	return statements, rows.Err()
}

// CountStatements returns the number of stored statements.
func (s *Store) CountStatements() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM statements").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count statements: %w", err)
	}
	return count, nil
}
