package barrier

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_CoalescesBurstIntoOneSettle(t *testing.T) {
	var signals, settles atomic.Int32
	s := NewScheduler(50*time.Millisecond,
		func() { signals.Add(1) },
		func() { settles.Add(1) },
	)
	defer s.Stop()

	// Five signals inside one settle window: onSignal fires each
	// time, onSettle exactly once after the burst quiets down.
	for i := 0; i < 5; i++ {
		s.Signal()
		time.Sleep(5 * time.Millisecond)
	}

	if got := signals.Load(); got != 5 {
		t.Fatalf("expected 5 immediate signal callbacks, got %d", got)
	}
	if got := settles.Load(); got != 0 {
		t.Fatalf("expected no settle before the delay elapses, got %d", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for settles.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	// Allow a full extra window to catch a duplicate settle.
	time.Sleep(100 * time.Millisecond)

	if got := settles.Load(); got != 1 {
		t.Fatalf("expected exactly 1 settle callback, got %d", got)
	}
	if s.Pending() {
		t.Fatalf("expected no pending settle after the burst completed")
	}
}

func TestScheduler_SeparateBurstsEachSettle(t *testing.T) {
	var settles atomic.Int32
	s := NewScheduler(20*time.Millisecond, nil, func() { settles.Add(1) })
	defer s.Stop()

	s.Signal()
	waitFor(t, func() bool { return settles.Load() == 1 })

	s.Signal()
	waitFor(t, func() bool { return settles.Load() == 2 })
}

func TestScheduler_StopCancelsPending(t *testing.T) {
	var settles atomic.Int32
	s := NewScheduler(20*time.Millisecond, nil, func() { settles.Add(1) })

	s.Signal()
	if !s.Pending() {
		t.Fatalf("expected a pending settle after Signal")
	}
	s.Stop()
	if s.Pending() {
		t.Fatalf("expected no pending settle after Stop")
	}

	time.Sleep(100 * time.Millisecond)
	if got := settles.Load(); got != 0 {
		t.Fatalf("expected Stop to cancel the settle, got %d callbacks", got)
	}
}

func TestScheduler_SignalAfterStopIgnored(t *testing.T) {
	var signals atomic.Int32
	s := NewScheduler(20*time.Millisecond, func() { signals.Add(1) }, nil)

	s.Stop()
	s.Signal()

	if got := signals.Load(); got != 0 {
		t.Fatalf("expected signals after Stop to be ignored, got %d", got)
	}
	if s.Pending() {
		t.Fatalf("expected no pending settle after post-Stop Signal")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within 2s")
}
