package expiry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrStopped is returned when starting a scheduler that was already stopped.
	ErrStopped = errors.New("scheduler stopped")
	// ErrRunning is returned when starting a scheduler twice.
	ErrRunning = errors.New("scheduler already running")
)

// Clock abstracts wall time so the scheduler can be driven in tests.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer used by the scheduler.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// SystemClock is the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// NewTimer starts a timer that fires after d.
func (SystemClock) NewTimer(d time.Duration) Timer { return systemTimer{time.NewTimer(d)} }

type systemTimer struct{ t *time.Timer }

func (s systemTimer) C() <-chan time.Time { return s.t.C }
func (s systemTimer) Stop() bool          { return s.t.Stop() }

// State is the lifecycle state of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateRepeating
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateRepeating:
		return "repeating"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// Location defines where midnight is. Defaults to time.Local.
	Location *time.Location
	// Clock defaults to SystemClock.
	Clock Clock
	// OnTick runs once on Start and once after every midnight. It must not
	// call Stop.
	OnTick func(ctx context.Context, now time.Time) error
	// OnRollover runs immediately before every midnight tick.
	OnRollover func()
	Logger     *slog.Logger
}

// Scheduler drives a daily evaluation: once at Start, then at every local
// midnight. The next midnight is recomputed after each firing so clock and
// DST changes do not accumulate drift.
type Scheduler struct {
	cfg SchedulerConfig

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates an idle scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{cfg: cfg}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start runs the first tick synchronously and arms the midnight timer.
// A stopped scheduler cannot be restarted; create a new one instead.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	case StateArmed, StateRepeating:
		s.mu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateArmed
	s.mu.Unlock()

	start := s.cfg.Clock.Now()
	target := NextMidnight(start, s.cfg.Location)
	s.tick(ctx, start)

	go s.loop(ctx, target)
	return nil
}

// Stop cancels pending timers and waits until no callback is running.
// No callback fires after Stop returns. Stop must not be called from OnTick
// or OnRollover: it would wait for the callback that is calling it. Cancel
// the context given to Start instead.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	wasIdle := s.state == StateIdle
	s.state = StateStopped
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if wasIdle {
		return
	}
	cancel()
	<-done
}

// loop fires at target and then at every following midnight. target is taken
// before the first tick so a tick running past midnight does not skip a day.
func (s *Scheduler) loop(ctx context.Context, target time.Time) {
	defer close(s.done)

	for {
		timer := s.cfg.Clock.NewTimer(target.Sub(s.cfg.Clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C():
		}
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		if s.state == StateArmed {
			s.state = StateRepeating
		}
		s.mu.Unlock()

		s.rollover()
		now := s.cfg.Clock.Now()
		s.tick(ctx, now)

		if now.Before(target) {
			now = target
		}
		target = NextMidnight(now, s.cfg.Location)
	}
}

func (s *Scheduler) rollover() {
	if s.cfg.OnRollover == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Logger.Error("expiry rollover panicked", "panic", r)
		}
	}()
	s.cfg.OnRollover()
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if s.cfg.OnTick == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Logger.Error("expiry tick panicked", "panic", r)
		}
	}()
	if err := s.cfg.OnTick(ctx, now); err != nil {
		s.cfg.Logger.Error("expiry tick failed", "error", err)
	}
}

// NextMidnight returns the first local midnight strictly after t.
func NextMidnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
