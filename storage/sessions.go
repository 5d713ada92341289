package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Session records one dictation attempt from hotkey press to injected
// text.
type Session struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	RecordingMs     int64 `json:"recording_ms"`
	TranscriptionMs int64 `json:"transcription_ms"`
	InjectionMs     int64 `json:"injection_ms"`

	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`

	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
	CharCount int    `json:"char_count"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CountText fills the word and character counts from the text.
func (s *Session) CountText() {
	s.WordCount = len(strings.Fields(s.Text))
	s.CharCount = utf8.RuneCountInString(s.Text)
}

// SaveSession inserts a session, filling its ID.
func (db *DB) SaveSession(s *Session) error {
	query := `
		INSERT INTO sessions (
			recording_ms, transcription_ms, injection_ms,
			provider, model, language,
			text, word_count, char_count,
			success, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		s.RecordingMs, s.TranscriptionMs, s.InjectionMs,
		s.Provider, s.Model, s.Language,
		s.Text, s.WordCount, s.CharCount,
		s.Success, s.Error,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading insert id: %w", err)
	}
	s.ID = id
	return nil
}

// RecentSessions returns the newest sessions first.
func (db *DB) RecentSessions(limit, offset int) ([]Session, error) {
	query := `
		SELECT
			id, timestamp, recording_ms, transcription_ms, injection_ms,
			provider, model, language, text, word_count, char_count,
			success, error
		FROM sessions
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var errMsg sql.NullString

		err := rows.Scan(
			&s.ID, &s.Timestamp, &s.RecordingMs, &s.TranscriptionMs, &s.InjectionMs,
			&s.Provider, &s.Model, &s.Language, &s.Text, &s.WordCount, &s.CharCount,
			&s.Success, &errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.Error = errMsg.String
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session by ID.
func (db *DB) DeleteSession(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %d not found", id)
	}
	return nil
}

// SessionCount returns the total number of stored sessions.
func (db *DB) SessionCount() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}
