package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFileNameFromContentDisposition(t *testing.T) {
	tests := []struct {
		cd   string
		want string
	}{
		{`attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`, "résumé.pdf"},
		{`attachment; filename*=UTF-8''"report.txt"`, "report.txt"},
		{`attachment; filename="photo.png"`, "photo.png"},
		{`attachment; filename=data.csv`, "data.csv"},
		{`attachment; filename=data.csv; size=42`, "data.csv"},
		{`inline`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		if got := FileNameFromContentDisposition(tt.cd); got != tt.want {
			t.Errorf("FileNameFromContentDisposition(%q) = %q, want %q", tt.cd, got, tt.want)
		}
	}
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Filename") != "notes.txt" {
			t.Errorf("X-Filename: got %q", r.Header.Get("X-Filename"))
		}
		if r.Header.Get("Content-Type") != "text/plain" {
			t.Errorf("Content-Type: got %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "file content" {
			t.Errorf("body: got %q", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "f1", "name": "notes.txt", "size": 12,
			"mimeType": "text/plain", "createdAt": "2024-01-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "")
	meta, err := c.UploadFile(context.Background(), "notes.txt", "text/plain", strings.NewReader("file content"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if meta.ID != "f1" || meta.Size != 12 {
		t.Errorf("meta: got %+v", meta)
	}
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "f1" {
			t.Errorf("id: got %q", r.URL.Query().Get("id"))
		}
		w.Header().Set("Content-Disposition", `attachment; filename="archive.zip"`)
		w.Write([]byte("zipbytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", "")
	name, rc, err := c.DownloadFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	defer rc.Close()
	if name != "archive.zip" {
		t.Errorf("name: got %q", name)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "zipbytes" {
		t.Errorf("data: got %q", data)
	}
}
