package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Session is one stored connection lifetime.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   *time.Time
	EndReason string
}

// CreateSession records a new session.
func (s *Store) CreateSession(id string) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, started_at) VALUES (?, ?)
	`, id, time.Now().UTC())
	return err
}

// EndSession marks a session as ended with the given reason.
func (s *Store) EndSession(id, reason string) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET ended_at = ?, end_reason = ? WHERE id = ?
	`, time.Now().UTC(), reason, id)
	return err
}

// RecentSessions returns the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]*Session, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, ended_at, end_reason
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		var ended sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &ended, &sess.EndReason); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if ended.Valid {
			t := ended.Time
			sess.EndedAt = &t
		}
		sessions = append(sessions, &sess)
	}

	return sessions, rows.Err()
}

// SessionCount returns how many sessions have been recorded.
func (s *Store) SessionCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}
