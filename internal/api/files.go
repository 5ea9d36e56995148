package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/waylis/waycli/internal/chat"
)

// UploadFile streams a binary body to the server with the original
// filename in a header and returns the created file metadata. This is
// a distinct non-JSON path without the auth-retry behavior.
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, r io.Reader) (chat.FileMeta, error) {
	var meta chat.FileMeta

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint("file"), r)
	if err != nil {
		return meta, fmt.Errorf("create request: %w", err)
	}
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}
	req.Header.Set("X-Filename", name)

	resp, err := c.http.Do(req)
	if err != nil {
		return meta, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return meta, fmt.Errorf("read response: %w", err)
	}
	if err := decodeResponse(resp.StatusCode, data, &meta); err != nil {
		return meta, fmt.Errorf("upload failed: %w", err)
	}
	return meta, nil
}

// DownloadFile fetches a stored file. The caller owns the returned
// reader. The served filename is extracted from the Content-Disposition
// header, defaulting to "download".
func (c *Client) DownloadFile(ctx context.Context, id string) (string, io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FileURL(id), nil)
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return "", nil, fmt.Errorf("download failed: %s", resp.Status)
	}

	name := FileNameFromContentDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = "download"
	}
	return name, resp.Body, nil
}

// FileURL returns the direct URL of a stored file.
func (c *Client) FileURL(id string) string {
	q := url.Values{}
	q.Set("id", id)
	return c.Endpoint("file") + "?" + q.Encode()
}

var (
	filenameStarRe = regexp.MustCompile(`(?i)filename\*\s*=\s*([^;]+)`)
	filenameQuotRe = regexp.MustCompile(`(?i)filename\s*=\s*"([^"]+)"`)
	filenameBareRe = regexp.MustCompile(`(?i)filename\s*=\s*([^;]+)`)
)

// FileNameFromContentDisposition extracts a filename from a
// Content-Disposition header. The extended filename* form (RFC 5987,
// charset''percent-encoded-value) is preferred; the quoted or bare
// filename= form is the fallback. Returns "" when neither is present.
func FileNameFromContentDisposition(cd string) string {
	if m := filenameStarRe.FindStringSubmatch(cd); m != nil {
		v := strings.TrimSpace(m[1])
		if parts := strings.SplitN(v, "''", 2); len(parts) == 2 {
			decoded, err := url.PathUnescape(strings.Trim(parts[1], `"`))
			if err == nil {
				return decoded
			}
			return strings.Trim(parts[1], `"`)
		}
		return strings.Trim(v, `"`)
	}

	if m := filenameQuotRe.FindStringSubmatch(cd); m != nil {
		return m[1]
	}
	if m := filenameBareRe.FindStringSubmatch(cd); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), `"`)
	}
	return ""
}
