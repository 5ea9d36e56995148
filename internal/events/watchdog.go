package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTimeout is how long the watchdog tolerates silence before
	// declaring the connection lost.
	DefaultTimeout = 20 * time.Second

	// DefaultPoll is the check interval.
	DefaultPoll = 2 * time.Second
)

// Watchdog raises a single connection-lost alarm when no heartbeat is
// seen within the timeout. After firing it stops checking: one silence
// produces exactly one warning.
type Watchdog struct {
	timeout time.Duration
	poll    time.Duration
	onLost  func(sinceLast time.Duration)

	mu       sync.Mutex
	lastSeen time.Time
}

// NewWatchdog creates a watchdog. Non-positive durations fall back to
// the defaults.
func NewWatchdog(timeout, poll time.Duration, onLost func(sinceLast time.Duration)) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Watchdog{timeout: timeout, poll: poll, onLost: onLost}
}

// Mark records a heartbeat.
func (w *Watchdog) Mark() {
	w.mu.Lock()
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

// Run polls until the timeout elapses without a heartbeat or ctx is
// cancelled. The moment of starting counts as the first heartbeat.
func (w *Watchdog) Run(ctx context.Context) {
	w.Mark()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			silence := time.Since(w.lastSeen)
			w.mu.Unlock()
			if silence >= w.timeout {
				slog.Warn("no heartbeat from server", "silence", silence)
				if w.onLost != nil {
					w.onLost(silence)
				}
				return
			}
		}
	}
}
