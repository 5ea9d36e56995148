// Package api is the single point of contact with the remote Waylis
// server. It hides the auth-retry dance and response decoding from the
// rest of the client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/waylis/waycli/internal/chat"
)

// ErrServerUnavailable replaces any 500 response, suppressing raw
// server detail.
var ErrServerUnavailable = errors.New("The server is unavailable. Please try again later.")

// Error is a non-success response carrying the server-supplied message
// verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client wraps request/response calls to the remote service.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	userID string // one-shot identity, consumed by the first auth
}

// NewClient creates a client for host+prefix. userID is the optional
// identity token; it is consumed by the first authentication and never
// sent again.
func NewClient(host, prefix, userID string) *Client {
	host = strings.TrimRight(host, "/")
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &Client{
		baseURL: host + strings.TrimRight(prefix, "/"),
		http:    &http.Client{},
		userID:  userID,
	}
}

// Endpoint returns the absolute URL for an API path.
func (c *Client) Endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) consumeUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.userID
	c.userID = ""
	return id
}

// Auth establishes or refreshes the session identity. The stored
// identity token, if any, is spent on the first call.
func (c *Client) Auth(ctx context.Context) error {
	q := url.Values{}
	if id := c.consumeUserID(); id != "" {
		q.Set("id", id)
	}
	return c.doOnce(ctx, http.MethodPost, "auth", q, nil, nil)
}

// Logout invalidates the session identity.
func (c *Client) Logout(ctx context.Context) error {
	return c.request(ctx, http.MethodPost, "logout", nil, nil, nil)
}

// AppInfo fetches the server branding block.
func (c *Client) AppInfo(ctx context.Context) (chat.AppInfo, error) {
	var info chat.AppInfo
	err := c.request(ctx, http.MethodGet, "info", nil, nil, &info)
	return info, err
}

// ServerConfig fetches the app-level configuration.
func (c *Client) ServerConfig(ctx context.Context) (chat.ServerConfig, error) {
	var cfg chat.ServerConfig
	err := c.request(ctx, http.MethodGet, "config", nil, nil, &cfg)
	return cfg, err
}

// Commands fetches the static command catalog.
func (c *Client) Commands(ctx context.Context) ([]chat.Command, error) {
	var cmds []chat.Command
	err := c.request(ctx, http.MethodGet, "commands", nil, nil, &cmds)
	return cmds, err
}

// SendMessage submits a user-authored message.
func (c *Client) SendMessage(ctx context.Context, params chat.CreateMessageParams) (chat.Message, error) {
	var msg chat.Message
	err := c.request(ctx, http.MethodPost, "message", nil, params, &msg)
	return msg, err
}

// Chats fetches a page of the chat directory.
func (c *Client) Chats(ctx context.Context, offset, limit int) ([]chat.Chat, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var chats []chat.Chat
	err := c.request(ctx, http.MethodGet, "chats", q, nil, &chats)
	return chats, err
}

// CreateChat creates a chat server-side. An empty name lets the server
// pick one.
func (c *Client) CreateChat(ctx context.Context, name string) (chat.Chat, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	var ch chat.Chat
	err := c.request(ctx, http.MethodPost, "chat", nil, body, &ch)
	return ch, err
}

// RenameChat updates a chat's name.
func (c *Client) RenameChat(ctx context.Context, id, name string) (chat.Chat, error) {
	q := url.Values{}
	q.Set("id", id)
	var ch chat.Chat
	err := c.request(ctx, http.MethodPut, "chat", q, map[string]string{"name": name}, &ch)
	return ch, err
}

// DeleteChat deletes a chat and all its messages.
func (c *Client) DeleteChat(ctx context.Context, id string) (chat.Chat, error) {
	q := url.Values{}
	q.Set("id", id)
	var ch chat.Chat
	err := c.request(ctx, http.MethodDelete, "chat", q, map[string]string{}, &ch)
	return ch, err
}

// Messages fetches a page of a chat's history, newest-first within the
// page.
func (c *Client) Messages(ctx context.Context, chatID string, offset, limit int) ([]chat.Message, error) {
	q := url.Values{}
	q.Set("chat_id", chatID)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	var msgs []chat.Message
	err := c.request(ctx, http.MethodGet, "messages", q, nil, &msgs)
	return msgs, err
}

// request issues a call with the standard decode and auth-retry
// behavior: one silent re-auth on 401 with a single retry, a repeated
// 401 surfaces as failure.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	status, data, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if err := c.Auth(ctx); err != nil {
			return err
		}
		status, data, err = c.do(ctx, method, path, query, payload)
		if err != nil {
			return err
		}
	}

	return decodeResponse(status, data, out)
}

// doOnce is request without the auth retry; used by Auth itself.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	status, data, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	return decodeResponse(status, data, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	u := c.Endpoint(path)
	if enc := encodeQuery(query); enc != "" {
		u += "?" + enc
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func decodeResponse(status int, data []byte, out any) error {
	if status == http.StatusInternalServerError {
		return ErrServerUnavailable
	}
	if status < 200 || status > 299 {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
			body.Message = fmt.Sprintf("request failed with status %d", status)
		}
		slog.Debug("api error", "status", status, "message", body.Message)
		return &Error{Status: status, Message: body.Message}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return decodeBody(data, out)
}

// encodeQuery serializes query parameters, skipping empty values.
func encodeQuery(q url.Values) string {
	if q == nil {
		return ""
	}
	clean := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				clean.Add(k, v)
			}
		}
	}
	return clean.Encode()
}
