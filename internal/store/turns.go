package store

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Turn is one recorded exchange in a session.
type Turn struct {
	SessionID  string
	TurnNumber int
	UserInput  string
	Response   string
	CreatedAt  time.Time
}

// RecordTurn logs a conversation turn.
// Uses INSERT OR IGNORE so replaying a turn number is a no-op.
func (s *Store) RecordTurn(sessionID string, turnNumber int, userInput, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO turns (session_id, turn_number, user_input, response)
		 VALUES (?, ?, ?, ?)`,
		sessionID, turnNumber, userInput, response,
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}

	s.logger.Debug("turn recorded",
		zap.String("session", sessionID),
		zap.Int("turn", turnNumber))
	return nil
}

// SessionHistory returns the most recent turns of a session in
// chronological order, capped at limit.
func (s *Store) SessionHistory(sessionID string, limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT session_id, turn_number, user_input, response, created_at
		 FROM turns
		 WHERE session_id = ?
		 ORDER BY turn_number DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session history: %w", err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}

	// Newest-first from the query; flip to chronological for callers
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// RecentTurns returns the latest turns across all sessions, newest first.
func (s *Store) RecentTurns(limit int) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT session_id, turn_number, user_input, response, created_at
		 FROM turns
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// CountTurns returns the number of recorded turns.
func (s *Store) CountTurns() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return count, nil
}

func scanTurns(rows *sql.Rows) ([]Turn, error) {
	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.SessionID, &t.TurnNumber, &t.UserInput, &t.Response, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
