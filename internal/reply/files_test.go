package reply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/waylis/waycli/internal/api"
	"github.com/waylis/waycli/internal/chat"
	"github.com/waylis/waycli/internal/settings"
	"github.com/waylis/waycli/internal/state"
)

func stagedFile(name string, size int64, mimeType string) LocalFile {
	return LocalFile{
		Name:     name,
		MimeType: mimeType,
		Size:     size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(make([]byte, size))), nil
		},
	}
}

func TestLocalFileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := LocalFileFromPath(path)
	if err != nil {
		t.Fatalf("LocalFileFromPath: %v", err)
	}
	if f.Name != "notes.txt" || f.Size != 5 {
		t.Errorf("file: got %+v", f)
	}

	if _, err := LocalFileFromPath(dir); !IsValidation(err) {
		t.Errorf("directory: got %v", err)
	}
	if _, err := LocalFileFromPath(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing file must error")
	}
}

func TestCheckFile(t *testing.T) {
	limits := &chat.FileLimits{MimeTypes: []string{"image/png"}, MaxSize: 1024}

	if err := CheckFile(stagedFile("a.png", 512, "image/png"), limits); err != nil {
		t.Errorf("valid file: %v", err)
	}
	if err := CheckFile(stagedFile("a.png", 2048, "image/png"), limits); !IsValidation(err) {
		t.Errorf("oversized: got %v", err)
	}
	if err := CheckFile(stagedFile("a.pdf", 512, "application/pdf"), limits); !IsValidation(err) {
		t.Errorf("wrong type: got %v", err)
	}
	if err := CheckFile(stagedFile("a.pdf", 1<<30, "application/pdf"), nil); err != nil {
		t.Errorf("no limits: %v", err)
	}
}

func TestCheckFilesBatch(t *testing.T) {
	limits := &chat.FilesLimits{
		FileLimits: chat.FileLimits{MaxSize: 100},
		MaxAmount:  2,
	}

	if err := CheckFiles(nil, limits); !IsValidation(err) {
		t.Errorf("empty batch: got %v", err)
	}
	three := []LocalFile{stagedFile("a", 1, ""), stagedFile("b", 1, ""), stagedFile("c", 1, "")}
	if err := CheckFiles(three, limits); !IsValidation(err) {
		t.Errorf("too many: got %v", err)
	}
	mixed := []LocalFile{stagedFile("a", 1, ""), stagedFile("b", 500, "")}
	if err := CheckFiles(mixed, limits); !IsValidation(err) {
		t.Errorf("oversized member: got %v", err)
	}
}

func newUploadServer(t *testing.T, uploads *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/file" && r.Method == http.MethodPost {
			n := uploads.Add(1)
			json.NewEncoder(w).Encode(map[string]any{
				"id": fmt.Sprintf("f%d", n), "name": r.Header.Get("X-Filename"),
				"size": 1, "mimeType": r.Header.Get("Content-Type"),
				"createdAt": "2024-01-01T00:00:00Z",
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
	}))
}

// A batch with one invalid file must not upload anything at all.
func TestUploadFilesAtomicity(t *testing.T) {
	var uploads atomic.Int64
	srv := newUploadServer(t, &uploads)
	defer srv.Close()

	u := &Uploader{API: api.NewClient(srv.URL, "/api", "")}
	limits := &chat.FilesLimits{FileLimits: chat.FileLimits{MaxSize: 100}}
	files := []LocalFile{
		stagedFile("ok1", 10, ""),
		stagedFile("huge", 500, ""),
		stagedFile("ok2", 10, ""),
	}

	metas, err := u.UploadFiles(context.Background(), files, limits)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if metas != nil {
		t.Errorf("no metadata on failure, got %v", metas)
	}
	if got := uploads.Load(); got != 0 {
		t.Errorf("uploads before validation: got %d, want 0", got)
	}
}

func TestUploadFilesKeepsOrder(t *testing.T) {
	var uploads atomic.Int64
	srv := newUploadServer(t, &uploads)
	defer srv.Close()

	u := &Uploader{API: api.NewClient(srv.URL, "/api", "")}
	files := []LocalFile{
		stagedFile("first.txt", 1, "text/plain"),
		stagedFile("second.txt", 1, "text/plain"),
		stagedFile("third.txt", 1, "text/plain"),
	}

	metas, err := u.UploadFiles(context.Background(), files, nil)
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("metas: got %d", len(metas))
	}
	for i, want := range []string{"first.txt", "second.txt", "third.txt"} {
		if metas[i].Name != want {
			t.Errorf("metas[%d].Name = %q, want %q", i, metas[i].Name, want)
		}
	}
	if uploads.Load() != 3 {
		t.Errorf("uploads: got %d", uploads.Load())
	}
}

func newEngineServer(t *testing.T, chatCreates *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/chat" && r.Method == http.MethodPost:
			chatCreates.Add(1)
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]any{
				"id": "new-chat", "name": body["name"], "creatorID": "u1",
				"createdAt": "2024-01-01T00:00:00Z",
			})
		case r.URL.Path == "/api/message" && r.Method == http.MethodPost:
			var params chat.CreateMessageParams
			json.NewDecoder(r.Body).Decode(&params)
			json.NewEncoder(w).Encode(map[string]any{
				"id": "m1", "chatID": params.ChatID, "senderID": "u1", "threadID": "t1",
				"replyTo":   params.ReplyTo,
				"body":      map[string]any{"type": params.Body.Type, "content": params.Body.Command},
				"createdAt": "2024-01-01T00:00:01Z",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
		}
	}))
}

func newTestEngine(t *testing.T, srv *httptest.Server) *Engine {
	t.Helper()
	store := settings.NewStore(t.TempDir())
	client := api.NewClient(srv.URL, "/api", "")
	chats := state.NewChatList(client, store, 20)
	timeline := state.NewTimeline(client, 20)
	chats.OnActiveChange = func(c *chat.Chat) {
		if c != nil {
			timeline.Reset(c.ID)
		} else {
			timeline.Reset("")
		}
	}
	return &Engine{Timeline: timeline, Chats: chats, Uploader: &Uploader{API: client}}
}

// Sending a command with no chat selected creates one implicitly.
func TestSubmitCommandCreatesFirstChat(t *testing.T) {
	var chatCreates atomic.Int64
	srv := newEngineServer(t, &chatCreates)
	defer srv.Close()

	e := newTestEngine(t, srv)
	msg, err := e.SubmitCommand(context.Background(), "start")
	if err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}
	if chatCreates.Load() != 1 {
		t.Errorf("chat creations: got %d, want 1", chatCreates.Load())
	}
	if msg.ChatID != "new-chat" {
		t.Errorf("message chat: got %q", msg.ChatID)
	}
	active := e.Chats.Active()
	if active == nil || active.Name != DefaultChatName {
		t.Errorf("active chat: got %+v", active)
	}

	// A second command reuses the now-active chat.
	if _, err := e.SubmitCommand(context.Background(), "status"); err != nil {
		t.Fatalf("second command: %v", err)
	}
	if chatCreates.Load() != 1 {
		t.Errorf("chat creations after second command: got %d", chatCreates.Load())
	}
}

func TestSubmitBodyRequirements(t *testing.T) {
	var chatCreates atomic.Int64
	srv := newEngineServer(t, &chatCreates)
	defer srv.Close()

	e := newTestEngine(t, srv)

	// Markdown is server-only.
	_, err := e.SubmitBody(context.Background(), chat.Body{Type: chat.BodyMarkdown, Markdown: "# no"}, "")
	if !IsValidation(err) {
		t.Errorf("markdown submit: got %v", err)
	}

	// No active chat.
	_, err = e.SubmitBody(context.Background(), chat.Body{Type: chat.BodyText, Text: "hi"}, "")
	if !IsValidation(err) {
		t.Errorf("no chat: got %v", err)
	}
}

// A push can advance the open question while an answer is in flight.
// The answer must target the question it was composed for, not the one
// current at send time.
func TestSubmitBodyKeepsCapturedReplyTo(t *testing.T) {
	var chatCreates atomic.Int64
	srv := newEngineServer(t, &chatCreates)
	defer srv.Close()

	e := newTestEngine(t, srv)
	e.Chats.SetActive(&chat.Chat{ID: "c1", Name: "Chat"})

	e.Timeline.Append(chat.Message{
		ID: "q1", ChatID: "c1", SenderID: chat.SystemSenderID,
		ReplyRestriction: &chat.ReplyRestriction{BodyType: chat.BodyText},
	})
	replyTo, expected := e.Pending()
	if replyTo != "q1" || expected == nil {
		t.Fatalf("pending: got %q, %+v", replyTo, expected)
	}

	// The question advances before the answer is sent.
	e.Timeline.Append(chat.Message{
		ID: "q2", ChatID: "c1", SenderID: chat.SystemSenderID,
		ReplyRestriction: &chat.ReplyRestriction{BodyType: chat.BodyNumber},
	})
	if current, _ := e.Pending(); current != "q2" {
		t.Fatalf("pending after push: got %q", current)
	}

	msg, err := e.SubmitBody(context.Background(), chat.Body{Type: chat.BodyText, Text: "hi"}, replyTo)
	if err != nil {
		t.Fatalf("SubmitBody: %v", err)
	}
	if msg.ReplyTo != "q1" {
		t.Errorf("replyTo: got %q, want %q", msg.ReplyTo, "q1")
	}
}
