package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// A silent connection produces exactly one warning, then the watchdog
// stops checking.
func TestWatchdogFiresOnce(t *testing.T) {
	var fired atomic.Int64
	w := NewWatchdog(50*time.Millisecond, 10*time.Millisecond, func(time.Duration) {
		fired.Add(1)
	})

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not fire")
	}

	// Continued silence after firing raises nothing further.
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("alarms: got %d, want 1", got)
	}
}

func TestWatchdogHeartbeatsDeferTheAlarm(t *testing.T) {
	var fired atomic.Int64
	w := NewWatchdog(80*time.Millisecond, 10*time.Millisecond, func(time.Duration) {
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Keep marking well inside the timeout.
	for i := 0; i < 8; i++ {
		time.Sleep(20 * time.Millisecond)
		w.Mark()
	}
	if fired.Load() != 0 {
		t.Error("watchdog fired despite heartbeats")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop on cancel")
	}
	if fired.Load() != 0 {
		t.Error("cancellation must not fire the alarm")
	}
}
