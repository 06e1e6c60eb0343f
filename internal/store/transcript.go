package store

import (
	"fmt"
	"time"
)

// Direction marks which way a transcript line travelled.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Channel marks which chat surface carried a transcript line.
type Channel string

const (
	ChannelChat    Channel = "chat"
	ChannelWhisper Channel = "whisper"
)

// Line is one stored chat line.
type Line struct {
	ID        int64
	SessionID string
	Direction Direction
	Channel   Channel
	Sender    string
	Content   string
	CreatedAt time.Time
}

// AddLine appends a chat line to the transcript.
func (s *Store) AddLine(sessionID string, dir Direction, ch Channel, sender, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO transcript (session_id, direction, channel, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, dir, ch, sender, content, time.Now().UTC())
	return err
}

// RecentLines returns the most recent transcript lines for a session in
// chronological order.
func (s *Store) RecentLines(sessionID string, limit int) ([]*Line, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, direction, channel, sender, content, created_at
		FROM (
			SELECT id, session_id, direction, channel, sender, content, created_at
			FROM transcript
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		)
		ORDER BY id ASC
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Direction, &l.Channel, &l.Sender, &l.Content, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, &l)
	}

	return lines, rows.Err()
}

// SearchLines returns transcript lines containing the query substring,
// newest first.
func (s *Store) SearchLines(query string, limit int) ([]*Line, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, direction, channel, sender, content, created_at
		FROM transcript
		WHERE content LIKE '%' || ? || '%'
		ORDER BY id DESC
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search transcript: %w", err)
	}
	defer rows.Close()

	var lines []*Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Direction, &l.Channel, &l.Sender, &l.Content, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, &l)
	}

	return lines, rows.Err()
}
