package core

import "time"

// SessionInfo is a diagnostic snapshot of a single session.
type SessionInfo struct {
	SessionID     string    `json:"session_id"`
	MessageCount  int       `json:"message_count"`
	CreatedAt     time.Time `json:"created_at"`    // timestamp of the oldest retained message
	LastActivity  time.Time `json:"last_activity"` // timestamp of the newest message
	LastSourceRef string    `json:"last_source_ref,omitempty"`
}

// Stats carries store wide gauges, cumulative counters and configured limits.
//
// Cumulative counters (Total*, SessionsEvicted, SessionsExpired) are monotonic
// for the lifetime of the store; removals never decrement them.
type Stats struct {
	ActiveSessions int `json:"active_sessions"`
	TotalMessages  int `json:"total_messages"`

	TotalSessionsCreated int64 `json:"total_sessions_created"`
	TotalMessagesStored  int64 `json:"total_messages_stored"`
	TotalSessionsRemoved int64 `json:"total_sessions_removed"`
	SessionsEvicted      int64 `json:"sessions_evicted"`
	SessionsExpired      int64 `json:"sessions_expired"`

	LastCleanup time.Time `json:"last_cleanup"`

	MaxSessions           int           `json:"max_sessions"`
	MaxMessagesPerSession int           `json:"max_messages_per_session"`
	SessionTimeout        time.Duration `json:"session_timeout"`
	CleanupInterval       time.Duration `json:"cleanup_interval"`
}

// SessionStore keeps bounded conversational history per opaque session key.
//
// Contract:
//   - All methods are safe for concurrent use and never fail for valid input
//   - Unknown session ids are a normal case answered with empty values
//   - Returned values are copies; no method exposes internal state
//   - AddMessage and context reads (GetSessionContext, RecentMessages) count
//     as activity for least-recently-used eviction; GetSessionInfo does not
type SessionStore interface {
	AddMessage(sessionID, userText, responseText, sourceRef string)
	GetSessionContext(sessionID string, maxMessages int) string
	RecentMessages(sessionID string, n int) []Message
	GetSessionInfo(sessionID string) (SessionInfo, bool)
	RemoveSession(sessionID string) bool
	CleanupExpiredSessions() int
	GetStats() Stats
	GetAllSessions() []SessionInfo
	ClearAllSessions() int
}
