package events

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/waylis/waycli/internal/api"
)

// Handler receives decoded events for one subscribed kind.
type Handler func(Event)

// Stream fans the server's event stream out to typed subscribers. The
// connection is opened lazily by the first subscription and reused for
// the lifetime of the stream. A broken connection warns once through
// OnError; there is no automatic reconnect.
type Stream struct {
	api *api.Client

	// OnError is invoked once, outside any lock, when the stream breaks.
	OnError func(err error)

	mu          sync.Mutex
	subscribers map[Kind]map[string]Handler
	started     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewStream creates an unconnected stream over the transport client.
func NewStream(client *api.Client) *Stream {
	return &Stream{
		api:         client,
		subscribers: make(map[Kind]map[string]Handler),
	}
}

// Subscribe registers a handler for one event kind and returns its
// registration id. The first subscription opens the connection.
func (s *Stream) Subscribe(ctx context.Context, kind Kind, h Handler) string {
	id := uuid.NewString()

	s.mu.Lock()
	if s.subscribers[kind] == nil {
		s.subscribers[kind] = make(map[string]Handler)
	}
	s.subscribers[kind][id] = h

	start := !s.started
	if start {
		s.started = true
		runCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.run(runCtx)
	}
	s.mu.Unlock()

	return id
}

// Unsubscribe removes a registration. Unknown ids are a no-op. The
// connection stays open even with zero subscribers.
func (s *Stream) Unsubscribe(kind Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers[kind], id)
}

// Close tears the connection down and waits for the reader to exit.
func (s *Stream) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	body, err := s.api.OpenEventStream(ctx)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	defer body.Close()

	slog.Debug("event stream connected")
	if err := s.read(body); err != nil {
		s.fail(ctx, err)
	}
}

// read parses event:/data: frames, dispatching on each blank line.
func (s *Stream) read(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventName string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			s.dispatch(eventName, data.String())
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// comment frame, keepalive
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("event stream closed by server")
}

func (s *Stream) dispatch(eventName, data string) {
	if eventName == "" {
		return
	}
	kind, ok := parseKind(eventName)
	if !ok {
		slog.Debug("unknown event kind", "event", eventName)
		return
	}
	ev, err := decodeEvent(kind, []byte(data))
	if err != nil {
		slog.Warn("drop malformed event", "event", eventName, "err", err)
		return
	}

	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.subscribers[kind]))
	for _, h := range s.subscribers[kind] {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// fail surfaces a broken stream once. A cancelled context is a normal
// shutdown, not a failure.
func (s *Stream) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	slog.Warn("event stream lost", "err", err)
	if s.OnError != nil {
		s.OnError(err)
	}
}
