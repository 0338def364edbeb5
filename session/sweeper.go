package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/tubeanalyst/logging"
	"github.com/robfig/cron/v3"
)

// Cleaner is the subset of core.SessionStore a Sweeper drives.
type Cleaner interface {
	CleanupExpiredSessions() int
}

// SweeperOptions configures a Sweeper.
type SweeperOptions struct {
	// Schedule is a cron spec (standard five fields or a descriptor such as
	// "@every 10m"). Defaults to "@every 1h".
	Schedule string
	Logger   logging.Logger
}

// EverySchedule returns the cron descriptor that fires every d.
func EverySchedule(d time.Duration) string { return "@every " + d.String() }

// Sweeper runs expiry sweeps on a cron schedule in the background. It is an
// optional complement to the sweeps AddMessage triggers on its own; the
// caller owns its lifecycle through Start and Stop.
type Sweeper struct {
	cleaner  Cleaner
	schedule string
	logger   logging.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewSweeper validates the schedule and returns a stopped Sweeper.
func NewSweeper(c Cleaner, optFns ...func(o *SweeperOptions)) (*Sweeper, error) {
	opts := SweeperOptions{
		Schedule: EverySchedule(time.Hour),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", opts.Schedule, err)
	}
	return &Sweeper{cleaner: c, schedule: opts.Schedule, logger: opts.Logger}, nil
}

// Start begins periodic sweeping. Calling Start on a running Sweeper is a no-op.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()

	s.cron = c
	s.running = true
	s.logger.Info("Session sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	c := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	<-c.Stop().Done()
	s.logger.Info("Session sweeper stopped")
}

// IsRunning reports whether the Sweeper is scheduled.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce performs a single sweep immediately and returns the number of
// sessions removed.
func (s *Sweeper) RunOnce() int {
	return s.cleaner.CleanupExpiredSessions()
}
