// Package chat defines the data model shared by the transport client,
// the state containers and the TUI: chats, messages, tagged message
// bodies and the server-declared reply restrictions.
package chat

import "time"

// SystemSenderID marks messages authored by the server-side sentinel
// sender, as opposed to any human participant.
const SystemSenderID = "system"

// Chat is a single conversation. Chats are created server-side; the
// client never invents ids.
type Chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creatorID"`
	CreatedAt time.Time `json:"createdAt"`
}

// Command is a static catalog entry the user can invoke when the server
// is not waiting for a typed reply.
type Command struct {
	Value       string `json:"value"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// DisplayLabel returns the command's label, falling back to its value.
func (c Command) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Value
}

// FileMeta describes an uploaded file as returned by the server.
type FileMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// AppInfo is the server-provided branding block.
type AppInfo struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	FaviconURL  string `json:"faviconURL,omitempty"`
}

// ServerConfig is the app-level configuration fetched once at startup.
type ServerConfig struct {
	DefaultPageLimit int     `json:"defaultPageLimit,omitempty"`
	App              AppInfo `json:"app,omitempty"`
}

// Message is one entry in a chat timeline. Messages are immutable once
// created; the timeline only appends.
type Message struct {
	ID               string            `json:"id"`
	ChatID           string            `json:"chatID"`
	SenderID         string            `json:"senderID"`
	ReplyTo          string            `json:"replyTo,omitempty"`
	ThreadID         string            `json:"threadID"`
	Scene            string            `json:"scene,omitempty"`
	Step             string            `json:"step,omitempty"`
	Body             Body              `json:"body"`
	ReplyRestriction *ReplyRestriction `json:"replyRestriction,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// IsSystem reports whether the message was authored by the server.
func (m *Message) IsSystem() bool {
	return m.SenderID == SystemSenderID
}

// CreateMessageParams is the payload for submitting a user message.
type CreateMessageParams struct {
	ChatID  string `json:"chatID"`
	Body    Body   `json:"body"`
	ReplyTo string `json:"replyTo,omitempty"`
}
