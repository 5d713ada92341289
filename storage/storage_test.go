package storage

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenFile(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndRecentSessions(t *testing.T) {
	db := openTestDB(t)

	first := &Session{
		RecordingMs:     2100,
		TranscriptionMs: 640,
		InjectionMs:     120,
		Provider:        "whisper-server",
		Model:           "base.en",
		Language:        "en",
		Text:            "hello there, general",
		Success:         true,
	}
	first.CountText()
	if err := db.SaveSession(first); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if first.ID == 0 {
		t.Error("SaveSession did not fill the ID")
	}

	second := &Session{
		Provider: "whisper-server",
		Model:    "base.en",
		Language: "en",
		Success:  false,
		Error:    "server unreachable",
	}
	if err := db.SaveSession(second); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	sessions, err := db.RecentSessions(10, 0)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	// Newest first.
	if sessions[0].ID != second.ID {
		t.Errorf("first returned session ID = %d, want %d", sessions[0].ID, second.ID)
	}
	if sessions[0].Error != "server unreachable" {
		t.Errorf("error = %q", sessions[0].Error)
	}
	if sessions[1].Text != first.Text || sessions[1].WordCount != 3 {
		t.Errorf("stored session = %+v", sessions[1])
	}
}

func TestDeleteSession(t *testing.T) {
	db := openTestDB(t)

	s := &Session{Provider: "openai", Model: "whisper-1", Language: "en", Success: true}
	if err := db.SaveSession(s); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteSession(s.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := db.DeleteSession(s.ID); err == nil {
		t.Error("deleting a missing session should fail")
	}

	count, err := db.SessionCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count = %d after delete, want 0", count)
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)

	for _, s := range []*Session{
		{RecordingMs: 2000, TranscriptionMs: 500, Provider: "p", Model: "m", Language: "en", Text: "one two three", Success: true},
		{RecordingMs: 4000, TranscriptionMs: 700, Provider: "p", Model: "m", Language: "en", Text: "four five", Success: true},
		{Provider: "p", Model: "m", Language: "en", Success: false, Error: "boom"},
	} {
		s.CountText()
		if err := db.SaveSession(s); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.OverallStats()
	if err != nil {
		t.Fatalf("OverallStats: %v", err)
	}
	if stats.Sessions != 3 || stats.Successes != 2 || stats.Failures != 1 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.Words != 5 {
		t.Errorf("words = %d, want 5", stats.Words)
	}
	if stats.TotalRecordingMs != 6000 {
		t.Errorf("total recording = %d, want 6000", stats.TotalRecordingMs)
	}

	today, err := db.TodayStats()
	if err != nil {
		t.Fatalf("TodayStats: %v", err)
	}
	if today.Sessions != 3 {
		t.Errorf("today sessions = %d, want 3", today.Sessions)
	}
}

func TestStatsEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.OverallStats()
	if err != nil {
		t.Fatalf("OverallStats on empty db: %v", err)
	}
	if stats.Sessions != 0 || stats.AvgRecordingMs != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
}

func TestCountText(t *testing.T) {
	s := &Session{Text: "  héllo   wörld  "}
	s.CountText()
	if s.WordCount != 2 {
		t.Errorf("words = %d, want 2", s.WordCount)
	}
	if s.CharCount != 17 {
		t.Errorf("chars = %d, want 17", s.CharCount)
	}
}
