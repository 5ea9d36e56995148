package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/chat"
)

// CurrentReply is the open question the user must answer next. A nil
// Expected means the server declared no restriction and the input
// surface should offer command selection instead.
type CurrentReply struct {
	To       string
	Expected *chat.ReplyRestriction
}

// Timeline is the per-chat message history: a chronological, append-only
// sequence with tail-ward pagination and the derived CurrentReply.
type Timeline struct {
	api *api.Client

	mu            sync.Mutex
	chatID        string
	messages      []chat.Message
	seen          map[string]bool
	currentReply  *CurrentReply
	limit         int
	endReached    bool
	lastUserReply time.Time
}

// NewTimeline creates a timeline with the given page size.
func NewTimeline(client *api.Client, limit int) *Timeline {
	if limit <= 0 {
		limit = 20
	}
	return &Timeline{api: client, seen: make(map[string]bool), limit: limit}
}

// Messages returns a snapshot of the visible sequence, oldest first.
func (t *Timeline) Messages() []chat.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]chat.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// CurrentReply returns the derived reply expectation, or nil.
func (t *Timeline) CurrentReply() *CurrentReply {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentReply == nil {
		return nil
	}
	cr := *t.currentReply
	return &cr
}

// ChatID returns the chat the timeline is currently bound to.
func (t *Timeline) ChatID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chatID
}

// EndReached reports whether older history has been fully paged.
func (t *Timeline) EndReached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.endReached
}

// LastUserReplyAt returns when the user last sent a message in this
// timeline; the zero time when they have not.
func (t *Timeline) LastUserReplyAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastUserReply
}

// Reset clears the sequence, the current reply and the pagination
// state, and binds the timeline to a new chat. Invoked on active-chat
// change.
func (t *Timeline) Reset(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chatID = chatID
	t.messages = nil
	t.seen = make(map[string]bool)
	t.currentReply = nil
	t.endReached = false
	t.lastUserReply = time.Time{}
}

// FetchMessages loads the next older page for the bound chat. The
// server returns newest-first within the page; pages are reversed to
// chronological order before merging. The first page derives the
// current reply from the most recent system message; older pages are
// prepended without touching it. A result arriving after the active
// chat changed is discarded.
func (t *Timeline) FetchMessages(ctx context.Context, chatID string) ([]chat.Message, error) {
	t.mu.Lock()
	offset := len(t.messages)
	limit := t.limit
	t.mu.Unlock()

	page, err := t.api.Messages(ctx, chatID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Late result for a superseded chat: drop it.
	if t.chatID != chatID {
		return nil, nil
	}

	if offset == 0 {
		t.currentReply = deriveReply(page)
	}

	fresh := make([]chat.Message, 0, len(page))
	for i := len(page) - 1; i >= 0; i-- { // reverse to chronological
		m := page[i]
		if t.seen[m.ID] {
			continue
		}
		t.seen[m.ID] = true
		fresh = append(fresh, m)
	}
	t.messages = append(fresh, t.messages...)
	t.endReached = len(page) < limit
	return fresh, nil
}

// deriveReply scans a newest-first page for the most recent system
// message and adopts its restriction as the open question.
func deriveReply(page []chat.Message) *CurrentReply {
	for _, m := range page {
		if m.IsSystem() {
			return &CurrentReply{To: m.ID, Expected: m.ReplyRestriction}
		}
	}
	return nil
}

// SendMessage submits a user-authored message and appends the
// server-confirmed result to the tail.
func (t *Timeline) SendMessage(ctx context.Context, params chat.CreateMessageParams) (chat.Message, error) {
	msg, err := t.api.SendMessage(ctx, params)
	if err != nil {
		return chat.Message{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.chatID == params.ChatID && !t.seen[msg.ID] {
		t.seen[msg.ID] = true
		t.messages = append(t.messages, msg)
	}
	t.lastUserReply = time.Now()
	return msg, nil
}

// Append adds a server-pushed message to the tail without a round trip
// and advances the current reply to its restriction. Messages for a
// chat other than the bound one are ignored.
func (t *Timeline) Append(msg chat.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.chatID != msg.ChatID || t.seen[msg.ID] {
		return
	}
	t.seen[msg.ID] = true
	t.messages = append(t.messages, msg)
	t.currentReply = &CurrentReply{To: msg.ID, Expected: msg.ReplyRestriction}
}
