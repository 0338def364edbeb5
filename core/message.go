package core

import (
	"time"

	"github.com/google/uuid"
)

// Message is one conversational turn: the user's question, the answer that was
// produced for it and the data source the answer was based on. After creation
// it should be treated as immutable; stores hand out copies only.
type Message struct {
	Timestamp    time.Time `json:"timestamp"`
	UserText     string    `json:"user_text"`
	ResponseText string    `json:"response_text"`
	SourceRef    string    `json:"source_ref,omitempty"`
	// SessionID points back at the owning session. Diagnostic only.
	SessionID string `json:"session_id"`
}

// NewMessage creates a message stamped with ts (normalized to UTC).
func NewMessage(sessionID, userText, responseText, sourceRef string, ts time.Time) Message {
	return Message{
		Timestamp:    ts.UTC(),
		UserText:     userText,
		ResponseText: responseText,
		SourceRef:    sourceRef,
		SessionID:    sessionID,
	}
}

// Age returns how long ago the message was created relative to now.
func (m Message) Age(now time.Time) time.Duration { return now.Sub(m.Timestamp) }

// NewID generates a new unique identifier, e.g. for sessions minted on behalf
// of callers that did not supply one.
func NewID() string { return uuid.NewString() }
