package events

import (
	"context"
	"testing"
	"time"

	"github.com/waylis/waycli/internal/chat"
)

func TestSpacingClamp(t *testing.T) {
	tests := []struct {
		sinceReply time.Duration
		want       time.Duration
	}{
		{0, minSpacing},
		{100 * time.Millisecond, minSpacing},
		{minSpacing, minSpacing},
		{1200 * time.Millisecond, 1200 * time.Millisecond},
		{maxSpacing, maxSpacing},
		{time.Minute, maxSpacing},
	}
	for _, tt := range tests {
		if got := spacing(tt.sinceReply); got != tt.want {
			t.Errorf("spacing(%v) = %v, want %v", tt.sinceReply, got, tt.want)
		}
	}
}

func TestDeliverKeepsOrderAndSpaces(t *testing.T) {
	p := NewPacer()
	batch := []chat.Message{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	var got []string
	var stamps []time.Time
	err := p.Deliver(context.Background(), 0, batch, func(m chat.Message) {
		got = append(got, m.ID)
		stamps = append(stamps, time.Now())
	})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order: got %v", got)
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < minSpacing-50*time.Millisecond {
			t.Errorf("gap %d too small: %v", i, gap)
		}
	}
}

func TestDeliverStopsOnCancel(t *testing.T) {
	p := NewPacer()
	ctx, cancel := context.WithCancel(context.Background())

	var delivered int
	err := p.Deliver(ctx, time.Minute, []chat.Message{{ID: "a"}, {ID: "b"}}, func(chat.Message) {
		delivered++
		cancel()
	})
	if err == nil {
		t.Fatal("cancelled delivery must error")
	}
	if delivered != 1 {
		t.Errorf("delivered: got %d, want 1", delivered)
	}
}
