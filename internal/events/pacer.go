package events

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/waylis/waycli/internal/chat"
)

const (
	// minSpacing is the floor between two delivered messages.
	minSpacing = 500 * time.Millisecond

	// maxSpacing caps the delay no matter how stale the conversation is.
	maxSpacing = 2 * time.Second
)

// Pacer spaces out delivery of pushed message batches so responses read
// like a conversation rather than an instant dump.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer at the minimum spacing.
func NewPacer() *Pacer {
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minSpacing), 1)}
}

// spacing derives the per-message delay from how long ago the user last
// replied: a fresh reply gets the floor, a stale conversation slows
// down, clamped to the cap.
func spacing(sinceReply time.Duration) time.Duration {
	if sinceReply < minSpacing {
		return minSpacing
	}
	if sinceReply > maxSpacing {
		return maxSpacing
	}
	return sinceReply
}

// Deliver hands the batch to deliver one message at a time, waiting out
// the derived spacing before each. A cancelled context stops mid-batch.
func (p *Pacer) Deliver(ctx context.Context, sinceReply time.Duration, msgs []chat.Message, deliver func(chat.Message)) error {
	p.limiter.SetLimit(rate.Every(spacing(sinceReply)))
	for _, m := range msgs {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		deliver(m)
	}
	return nil
}
