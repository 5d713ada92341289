package web

import "voxtype/storage"

// Message is the envelope pushed to dashboard clients over the
// websocket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	MessageTypeState   = "state"
	MessageTypeSession = "session"
)

// StateMessage announces a dictation state change.
type StateMessage struct {
	State string `json:"state"`
}

// SessionMessage announces a completed dictation.
type SessionMessage struct {
	ID        int64  `json:"id"`
	WordCount int    `json:"word_count"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

func sessionMessage(s *storage.Session) SessionMessage {
	return SessionMessage{
		ID:        s.ID,
		WordCount: s.WordCount,
		Success:   s.Success,
		Timestamp: s.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
