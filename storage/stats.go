package storage

import "fmt"

// Stats summarizes sessions over a time window.
type Stats struct {
	Sessions         int     `json:"sessions"`
	Words            int     `json:"words"`
	Characters       int     `json:"characters"`
	Successes        int     `json:"successes"`
	Failures         int     `json:"failures"`
	AvgRecordingMs   float64 `json:"avg_recording_ms"`
	AvgTranscribeMs  float64 `json:"avg_transcribe_ms"`
	TotalRecordingMs int64   `json:"total_recording_ms"`
}

const statsQuery = `
	SELECT
		COUNT(*),
		COALESCE(SUM(word_count), 0),
		COALESCE(SUM(char_count), 0),
		COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(recording_ms), 0),
		COALESCE(AVG(transcription_ms), 0),
		COALESCE(SUM(recording_ms), 0)
	FROM sessions
`

func (db *DB) scanStats(query string, args ...any) (*Stats, error) {
	var s Stats
	err := db.conn.QueryRow(query, args...).Scan(
		&s.Sessions, &s.Words, &s.Characters,
		&s.Successes, &s.Failures,
		&s.AvgRecordingMs, &s.AvgTranscribeMs,
		&s.TotalRecordingMs,
	)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	return &s, nil
}

// TodayStats summarizes sessions recorded today (local time).
func (db *DB) TodayStats() (*Stats, error) {
	return db.scanStats(statsQuery + ` WHERE DATE(timestamp, 'localtime') = DATE('now', 'localtime')`)
}

// OverallStats summarizes every stored session.
func (db *DB) OverallStats() (*Stats, error) {
	return db.scanStats(statsQuery)
}

// RecentStats summarizes sessions from the last N days.
func (db *DB) RecentStats(days int) (*Stats, error) {
	return db.scanStats(statsQuery+` WHERE timestamp >= datetime('now', '-' || ? || ' days')`, days)
}
