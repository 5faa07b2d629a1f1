package barrier

import (
	"sync"
	"time"
)

// Scheduler coalesces bursts of display-change signals into a single
// settle callback. Every Signal fires onSignal immediately (callers
// use it to hide stale geometry while the topology is in flux) and
// re-arms the settle timer; onSettle runs once the signals stop for
// the full delay. A generation counter guards the timer callback so a
// timer superseded by a newer Signal returns without effect.
type Scheduler struct {
	delay    time.Duration
	onSignal func()
	onSettle func()

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	stopped    bool
}

// NewScheduler creates a stopped-idle scheduler. Either callback may
// be nil.
func NewScheduler(delay time.Duration, onSignal, onSettle func()) *Scheduler {
	return &Scheduler{
		delay:    delay,
		onSignal: onSignal,
		onSettle: onSettle,
	}
}

// Signal records a topology change. onSignal runs immediately; any
// pending settle callback is superseded and onSettle is rescheduled
// for delay from now.
func (s *Scheduler) Signal() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.generation++
	gen := s.generation
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.settle(gen) })
	s.mu.Unlock()

	// Outside the lock: the callback may reach back into the owner.
	if s.onSignal != nil {
		s.onSignal()
	}
}

func (s *Scheduler) settle(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.generation {
		// A newer Signal or Stop superseded this timer.
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if s.onSettle != nil {
		s.onSettle()
	}
}

// Pending reports whether a settle callback is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Stop cancels any pending settle callback and ignores further
// signals.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
