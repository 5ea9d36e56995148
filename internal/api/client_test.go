package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestRequestAuthRetryOnce(t *testing.T) {
	var authCalls, infoCalls int
	authed := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth":
			authCalls++
			if r.URL.Query().Get("id") != "user-1" {
				t.Errorf("auth id: got %q", r.URL.Query().Get("id"))
			}
			authed = true
		case "/api/info":
			infoCalls++
			if !authed {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"name": "Waylis"})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "user-1")
	info, err := c.AppInfo(context.Background())
	if err != nil {
		t.Fatalf("AppInfo: %v", err)
	}
	if info.Name != "Waylis" {
		t.Errorf("name: got %q", info.Name)
	}
	if authCalls != 1 || infoCalls != 2 {
		t.Errorf("auth=%d info=%d, want 1 and 2", authCalls, infoCalls)
	}
}

func TestRequestRepeated401Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth" {
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "still unauthorized"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "")
	_, err := c.Commands(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status: got %d", apiErr.Status)
	}
}

func TestRequest500Normalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"stack trace: panic at line 42"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "")
	_, err := c.Commands(context.Background())
	if !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("expected ErrServerUnavailable, got %v", err)
	}
	if strings.Contains(err.Error(), "panic") {
		t.Error("raw server detail must be suppressed")
	}
}

func TestRequestErrorMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "chat not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "")
	_, err := c.DeleteChat(context.Background(), "nope")
	if err == nil || err.Error() != "chat not found" {
		t.Fatalf("expected verbatim message, got %v", err)
	}
}

func TestIdentityTokenConsumedOnce(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth" {
			ids = append(ids, r.URL.Query().Get("id"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "tok")
	ctx := context.Background()
	if err := c.Auth(ctx); err != nil {
		t.Fatalf("auth 1: %v", err)
	}
	if err := c.Auth(ctx); err != nil {
		t.Fatalf("auth 2: %v", err)
	}
	if len(ids) != 2 || ids[0] != "tok" || ids[1] != "" {
		t.Errorf("ids: got %v, want [tok \"\"]", ids)
	}
}

func TestMessagesDecodeTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("chat_id"); got != "c1" {
			t.Errorf("chat_id: got %q", got)
		}
		w.Write([]byte(`[{
			"id":"m2","chatID":"c1","senderID":"system","threadID":"t1",
			"body":{"type":"text","content":"How many?"},
			"replyRestriction":{"bodyType":"number","bodyLimits":{"min":1,"max":10}},
			"createdAt":"2024-03-01T12:00:00.000Z"
		}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "")
	msgs, err := c.Messages(context.Background(), "c1", 0, 20)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if !msgs[0].CreatedAt.Equal(want) {
		t.Errorf("createdAt: got %v", msgs[0].CreatedAt)
	}
	r := msgs[0].ReplyRestriction
	if r == nil || r.Number == nil || *r.Number.Min != 1 || *r.Number.Max != 10 {
		t.Errorf("restriction: got %+v", r)
	}
}

func TestEncodeQuerySkipsEmpty(t *testing.T) {
	q := url.Values{}
	q.Set("id", "")
	q.Set("offset", "0")
	if got := encodeQuery(q); got != "offset=0" {
		t.Errorf("encodeQuery: got %q, want %q", got, "offset=0")
	}
	if got := encodeQuery(nil); got != "" {
		t.Errorf("encodeQuery(nil): got %q", got)
	}
}
