// Package state holds the client's state containers: the chat
// directory, the message timeline and the command catalog. They are
// explicit objects owned by the application context, not globals.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/chat"
	"github.com/waylis/waycli/internal/settings"
)

// ChatList is the paginated chat directory. At most one loaded chat is
// active at any time; switching the active chat resets the timeline
// through the OnActiveChange hook.
type ChatList struct {
	api   *api.Client
	store *settings.Store

	// OnActiveChange is invoked (outside the lock) whenever the active
	// chat changes. nil means no chat is active.
	OnActiveChange func(active *chat.Chat)

	mu         sync.Mutex
	chats      []chat.Chat
	active     *chat.Chat
	limit      int
	endReached bool
}

// NewChatList creates a chat directory with the given page size.
func NewChatList(client *api.Client, store *settings.Store, limit int) *ChatList {
	if limit <= 0 {
		limit = 20
	}
	return &ChatList{api: client, store: store, limit: limit}
}

// Chats returns a snapshot of the loaded list, most recent first.
func (l *ChatList) Chats() []chat.Chat {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]chat.Chat, len(l.chats))
	copy(out, l.chats)
	return out
}

// Active returns the active chat, or nil.
func (l *ChatList) Active() *chat.Chat {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == nil {
		return nil
	}
	c := *l.active
	return &c
}

// EndReached reports whether the directory has been fully paged.
func (l *ChatList) EndReached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.endReached
}

// FetchChats loads the next page after the already loaded entries. On
// the very first successful fetch it resolves the active chat: the
// persisted last-active id when it matches a loaded chat, otherwise the
// first loaded chat; the resolved id is written back.
func (l *ChatList) FetchChats(ctx context.Context) ([]chat.Chat, error) {
	l.mu.Lock()
	offset := len(l.chats)
	limit := l.limit
	l.mu.Unlock()

	page, err := l.api.Chats(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch chats: %w", err)
	}

	l.mu.Lock()
	l.chats = append(l.chats, page...)
	l.endReached = len(page) < limit

	var activated *chat.Chat
	if l.active == nil && len(l.chats) > 0 {
		resolved := l.chats[0]
		if lastID := l.store.ActiveChatID(); lastID != "" {
			for _, c := range l.chats {
				if c.ID == lastID {
					resolved = c
					break
				}
			}
		}
		l.active = &resolved
		activated = &resolved
	}
	l.mu.Unlock()

	if activated != nil {
		l.persistActive(activated)
		l.notifyActive(activated)
	}
	return page, nil
}

// CreateChat creates a chat server-side and prepends it locally. When
// no chat is active, the new one becomes active.
func (l *ChatList) CreateChat(ctx context.Context, name string) (chat.Chat, error) {
	created, err := l.api.CreateChat(ctx, name)
	if err != nil {
		return chat.Chat{}, fmt.Errorf("create chat: %w", err)
	}

	l.mu.Lock()
	l.chats = append([]chat.Chat{created}, l.chats...)
	var activated *chat.Chat
	if l.active == nil {
		c := created
		l.active = &c
		activated = &c
	}
	l.mu.Unlock()

	if activated != nil {
		l.persistActive(activated)
		l.notifyActive(activated)
	}
	return created, nil
}

// DeleteChat deletes a chat server-side and removes it locally. When
// the deleted chat was active, the first remaining chat (or nil)
// becomes active.
func (l *ChatList) DeleteChat(ctx context.Context, id string) (chat.Chat, error) {
	deleted, err := l.api.DeleteChat(ctx, id)
	if err != nil {
		return chat.Chat{}, fmt.Errorf("delete chat: %w", err)
	}

	l.mu.Lock()
	remaining := l.chats[:0]
	for _, c := range l.chats {
		if c.ID != deleted.ID {
			remaining = append(remaining, c)
		}
	}
	l.chats = remaining

	var wasActive bool
	var next *chat.Chat
	if l.active != nil && l.active.ID == deleted.ID {
		wasActive = true
		if len(l.chats) > 0 {
			c := l.chats[0]
			next = &c
		}
		l.active = next
	}
	l.mu.Unlock()

	if wasActive {
		l.persistActive(next)
		l.notifyActive(next)
	}
	return deleted, nil
}

// RenameChat updates a chat's name server-side and replaces the local
// entry in place, without reordering.
func (l *ChatList) RenameChat(ctx context.Context, id, name string) (chat.Chat, error) {
	updated, err := l.api.RenameChat(ctx, id, name)
	if err != nil {
		return chat.Chat{}, fmt.Errorf("rename chat: %w", err)
	}

	l.mu.Lock()
	for i := range l.chats {
		if l.chats[i].ID == updated.ID {
			l.chats[i] = updated
			break
		}
	}
	if l.active != nil && l.active.ID == updated.ID {
		c := updated
		l.active = &c
	}
	l.mu.Unlock()
	return updated, nil
}

// SetActive switches the active chat (nil deactivates) and synchronizes
// the persisted navigation state.
func (l *ChatList) SetActive(c *chat.Chat) {
	l.mu.Lock()
	if c == nil {
		l.active = nil
	} else {
		cp := *c
		l.active = &cp
	}
	active := l.active
	l.mu.Unlock()

	l.persistActive(active)
	l.notifyActive(active)
}

func (l *ChatList) persistActive(c *chat.Chat) {
	id := ""
	if c != nil {
		id = c.ID
	}
	if err := l.store.SetActiveChatID(id); err != nil {
		slog.Warn("persist active chat failed", "err", err)
	}
}

func (l *ChatList) notifyActive(c *chat.Chat) {
	if l.OnActiveChange != nil {
		l.OnActiveChange(c)
	}
}
