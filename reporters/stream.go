package reporters

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/garyf/gospec"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// StreamOptions configure the socket.io stream reporter.
type StreamOptions struct {
	// URL of the collector endpoint, e.g. "http://ci-collector:3000/socket.io".
	URL string
	// Namespace defaults to "/".
	Namespace string
	// Event is the name prefix for emitted events; defaults to "gospec".
	Event string
}

// Stream emits run lifecycle events to a socket.io collector, for live CI
// dashboards. Emission is fire-and-forget: a dead collector degrades to
// warnings, never to run failures.
type Stream struct {
	opts    StreamOptions
	manager *socket.Manager
	io      *socket.Socket
}

// NewStream returns a stream reporter connected lazily on RunStarted.
func NewStream(opts StreamOptions) (*Stream, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("stream reporter requires a url option")
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	if opts.Event == "" {
		opts.Event = "gospec"
	}
	return &Stream{opts: opts}, nil
}

// RunStarted implements gospec.Reporter. It opens the connection; emits
// issued before the connection settles are queued by the client.
func (s *Stream) RunStarted(total int) {
	parsed, err := url.Parse(s.opts.URL)
	if err != nil {
		slog.Warn("Stream reporter disabled: invalid url.", "url", s.opts.URL, "error", err)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	sockOpts := socket.DefaultOptions()
	if parsed.Path != "" {
		sockOpts.SetPath(parsed.Path)
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	s.manager = socket.NewManager(baseURL, sockOpts)
	s.io = s.manager.Socket(s.opts.Namespace, sockOpts)

	s.io.On(types.EventName("connect"), func(...any) {
		slog.Debug("Stream reporter connected.", "namespace", s.opts.Namespace, "sid", s.io.Id())
	})
	s.io.On(types.EventName("connect_error"), func(errs ...any) {
		slog.Warn("Stream reporter connection error.", "error", fmt.Sprint(errs...))
	})

	s.io.Connect()
	s.emit("run_started", map[string]any{"total": total})
}

// ExampleFinished implements gospec.Reporter.
func (s *Stream) ExampleFinished(res gospec.Result) {
	s.emit("example_finished", map[string]any{
		"id":          res.Example.ID(),
		"description": res.Example.Description(),
		"status":      res.Status.String(),
		"message":     res.Message,
		"duration_ms": res.Duration.Milliseconds(),
	})
}

// RunFinished implements gospec.Reporter.
func (s *Stream) RunFinished(sum gospec.Summary) {
	s.emit("run_finished", map[string]any{
		"examples": len(sum.Results),
		"passed":   sum.Passed,
		"failed":   sum.Failed,
		"pending":  sum.Pending,
		"seed":     sum.Seed,
	})
	if s.io != nil {
		s.io.Disconnect()
	}
}

func (s *Stream) emit(kind string, payload map[string]any) {
	if s.io == nil {
		return
	}
	slog.Debug("Stream reporter emitting event.", "event", s.opts.Event, "kind", kind)
	s.io.Emit(s.opts.Event, kind, payload)
}
