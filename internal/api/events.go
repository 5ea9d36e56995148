package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// OpenEventStream opens the server's live event stream. The caller owns
// the returned body. There is no auth retry on this path: the session
// must already be established by a prior call.
func (c *Client) OpenEventStream(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint("events"), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream rejected: %s", resp.Status)
	}
	return resp.Body, nil
}
