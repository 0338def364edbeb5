package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/hupe1980/tubeanalyst/core"
	"github.com/hupe1980/tubeanalyst/logging"
)

// Options holds optional collaborators for NewLRUStore.
type Options struct {
	// Logger receives eviction and sweep diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Now is the time source. Defaults to time.Now.
	Now func() time.Time
}

// entry is the store-owned state of one session. It is only touched while
// holding LRUStore.mu.
type entry struct {
	id       string
	messages []core.Message
}

func (e *entry) info() core.SessionInfo {
	first, last := e.messages[0], e.messages[len(e.messages)-1]
	return core.SessionInfo{
		SessionID:     e.id,
		MessageCount:  len(e.messages),
		CreatedAt:     first.Timestamp,
		LastActivity:  last.Timestamp,
		LastSourceRef: last.SourceRef,
	}
}

func (e *entry) lastActivity() time.Time {
	if len(e.messages) == 0 {
		return time.Time{}
	}
	return e.messages[len(e.messages)-1].Timestamp
}

// LRUStore is a volatile, bounded SessionStore. Sessions live in a
// least-recently-used list (doubly-linked list plus hash index, O(1) amortized
// promote / peek-oldest / remove-oldest); each public method takes the single
// store mutex exactly once and helpers suffixed Locked assume it is held.
type LRUStore struct {
	mu       sync.Mutex
	cfg      Config
	sessions *simplelru.LRU[string, *entry]
	now      func() time.Time
	logger   logging.Logger

	lastCleanup  time.Time
	liveMessages int

	sessionsCreated int64
	messagesStored  int64
	sessionsRemoved int64
	sessionsEvicted int64
	sessionsExpired int64
}

// NewLRUStore constructs an empty store. It fails only when cfg is invalid.
func NewLRUStore(cfg Config, optFns ...func(o *Options)) (*LRUStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	// Eviction is done explicitly before insertion, so the list never evicts
	// on its own and needs no callback.
	sessions, err := simplelru.NewLRU[string, *entry](cfg.MaxSessions, nil)
	if err != nil {
		return nil, fmt.Errorf("create session list: %w", err)
	}

	return &LRUStore{
		cfg:         cfg,
		sessions:    sessions,
		now:         opts.Now,
		logger:      opts.Logger,
		lastCleanup: opts.Now(),
	}, nil
}

// Config returns the limits the store was built with.
func (s *LRUStore) Config() Config { return s.cfg }

// AddMessage appends a question/answer pair to the session, creating it (and
// evicting the least recently used session when at capacity) if needed. The
// history is trimmed oldest-first to MaxMessagesPerSession and the session
// becomes the most recently used. A due expiry sweep runs first.
func (s *LRUStore) AddMessage(sessionID, userText, responseText, sourceRef string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastCleanup) >= s.cfg.CleanupInterval {
		s.cleanupExpiredLocked(now)
	}

	e, ok := s.sessions.Get(sessionID)
	if !ok {
		if s.sessions.Len() >= s.cfg.MaxSessions {
			s.evictOldestLocked()
		}
		e = &entry{id: sessionID, messages: make([]core.Message, 0, 4)}
		s.sessions.Add(sessionID, e)
		s.sessionsCreated++
	}

	// Keep timestamps non-decreasing within a session even if the clock steps back.
	ts := now
	if last := e.lastActivity(); ts.Before(last) {
		ts = last
	}
	e.messages = append(e.messages, core.NewMessage(sessionID, userText, responseText, sourceRef, ts))
	s.messagesStored++
	s.liveMessages++

	if over := len(e.messages) - s.cfg.MaxMessagesPerSession; over > 0 {
		n := copy(e.messages, e.messages[over:])
		clear(e.messages[n:])
		e.messages = e.messages[:n]
		s.liveMessages -= over
	}
}

// GetSessionContext formats the last maxMessages messages of the session as
// question/answer pairs, oldest first. Unknown or empty sessions and
// maxMessages <= 0 yield "". Reading context marks the session as recently used.
func (s *LRUStore) GetSessionContext(sessionID string, maxMessages int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions.Get(sessionID)
	if !ok || len(e.messages) == 0 {
		return ""
	}
	return formatContext(tail(e.messages, maxMessages))
}

// RecentMessages returns a copy of the last n messages, oldest first. Like
// GetSessionContext it counts as activity.
func (s *LRUStore) RecentMessages(sessionID string, n int) []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	window := tail(e.messages, n)
	if len(window) == 0 {
		return nil
	}
	out := make([]core.Message, len(window))
	copy(out, window)
	return out
}

// GetSessionInfo returns a diagnostic snapshot without affecting recency.
func (s *LRUStore) GetSessionInfo(sessionID string) (core.SessionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions.Peek(sessionID)
	if !ok || len(e.messages) == 0 {
		return core.SessionInfo{}, false
	}
	return e.info(), true
}

// RemoveSession deletes the session and reports whether it existed.
func (s *LRUStore) RemoveSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions.Peek(sessionID)
	if !ok {
		return false
	}
	s.removeLocked(e)
	return true
}

// CleanupExpiredSessions removes every session whose newest message is older
// than SessionTimeout and returns how many were removed.
func (s *LRUStore) CleanupExpiredSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cleanupExpiredLocked(s.now())
}

// GetStats returns gauges, cumulative counters and configured limits.
func (s *LRUStore) GetStats() core.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return core.Stats{
		ActiveSessions:        s.sessions.Len(),
		TotalMessages:         s.liveMessages,
		TotalSessionsCreated:  s.sessionsCreated,
		TotalMessagesStored:   s.messagesStored,
		TotalSessionsRemoved:  s.sessionsRemoved,
		SessionsEvicted:       s.sessionsEvicted,
		SessionsExpired:       s.sessionsExpired,
		LastCleanup:           s.lastCleanup,
		MaxSessions:           s.cfg.MaxSessions,
		MaxMessagesPerSession: s.cfg.MaxMessagesPerSession,
		SessionTimeout:        s.cfg.SessionTimeout,
		CleanupInterval:       s.cfg.CleanupInterval,
	}
}

// GetAllSessions returns info for every session, most recently used first.
// Recency is not affected.
func (s *LRUStore) GetAllSessions() []core.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.sessions.Keys() // oldest first
	out := make([]core.SessionInfo, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if e, ok := s.sessions.Peek(keys[i]); ok && len(e.messages) > 0 {
			out = append(out, e.info())
		}
	}
	return out
}

// ClearAllSessions removes every session and returns how many there were.
func (s *LRUStore) ClearAllSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.sessions.Len()
	s.sessions.Purge()
	s.liveMessages = 0
	s.sessionsRemoved += int64(n)
	if n > 0 {
		s.logger.Info("All sessions cleared", "removed", n)
	}
	return n
}

// cleanupExpiredLocked removes expired sessions as of now and resets the
// sweep timestamp. Caller must hold s.mu.
func (s *LRUStore) cleanupExpiredLocked(now time.Time) int {
	start := time.Now()
	cutoff := now.Add(-s.cfg.SessionTimeout)

	removed := 0
	for _, key := range s.sessions.Keys() {
		e, ok := s.sessions.Peek(key)
		if !ok || !e.lastActivity().Before(cutoff) {
			continue
		}
		s.removeLocked(e)
		removed++
	}
	s.sessionsExpired += int64(removed)
	s.lastCleanup = now

	logging.Sweep(s.logger, removed, s.sessions.Len(), time.Since(start))
	return removed
}

// evictOldestLocked drops the least recently used session. Caller must hold s.mu.
func (s *LRUStore) evictOldestLocked() {
	_, e, ok := s.sessions.GetOldest()
	if !ok {
		return
	}
	s.removeLocked(e)
	s.sessionsEvicted++
	s.logger.Debug("Session evicted", "evicted_session_id", e.id, "message_count", len(e.messages))
}

// removeLocked unlinks e and updates the gauges. Caller must hold s.mu.
func (s *LRUStore) removeLocked(e *entry) {
	s.sessions.Remove(e.id)
	s.liveMessages -= len(e.messages)
	s.sessionsRemoved++
}

var _ core.SessionStore = (*LRUStore)(nil)
