package session

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned (wrapped) when a Config violates its constraints.
var ErrInvalidConfig = errors.New("invalid session config")

const (
	// DefaultContextMessages is the number of recent messages callers usually
	// request from GetSessionContext.
	DefaultContextMessages = 3

	// ResponsePreviewLimit bounds (in runes) how much of a stored answer is
	// repeated in formatted context.
	ResponsePreviewLimit = 200
)

// Config fixes the store limits at construction time.
type Config struct {
	// MaxSessions is the hard cap on concurrently held sessions.
	MaxSessions int `json:"max_sessions"`
	// MaxMessagesPerSession is the hard cap on history length per session.
	MaxMessagesPerSession int `json:"max_messages_per_session"`
	// SessionTimeout is the age of the newest message beyond which a session
	// counts as expired.
	SessionTimeout time.Duration `json:"session_timeout"`
	// CleanupInterval is the minimum spacing between expiry sweeps triggered
	// by AddMessage.
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// DefaultConfig returns limits suitable for a single process serving a few
// hundred concurrent users.
func DefaultConfig() Config {
	return Config{
		MaxSessions:           1000,
		MaxMessagesPerSession: 50,
		SessionTimeout:        24 * time.Hour,
		CleanupInterval:       time.Hour,
	}
}

// Validate reports the first violated constraint.
func (c Config) Validate() error {
	switch {
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be > 0, got %d", ErrInvalidConfig, c.MaxSessions)
	case c.MaxMessagesPerSession <= 0:
		return fmt.Errorf("%w: max_messages_per_session must be > 0, got %d", ErrInvalidConfig, c.MaxMessagesPerSession)
	case c.SessionTimeout <= 0:
		return fmt.Errorf("%w: session_timeout must be > 0, got %s", ErrInvalidConfig, c.SessionTimeout)
	case c.CleanupInterval <= 0:
		return fmt.Errorf("%w: cleanup_interval must be > 0, got %s", ErrInvalidConfig, c.CleanupInterval)
	}
	return nil
}
