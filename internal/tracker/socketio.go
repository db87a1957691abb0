package tracker

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by the socket.io tracker.
const (
	EventParams  = "params"
	EventMetrics = "metrics"
)

const defaultConnectTimeout = 10 * time.Second

// SocketIOConfig configures the socket.io tracker connection.
// EmitEvent overrides the event name metrics are emitted under; empty
// means EventMetrics.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	EmitEvent          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SocketIO streams run parameters and metrics to a socket.io endpoint
// over the WebSocket transport. Emission is fire-and-forget; only
// connecting can fail the run.
type SocketIO struct {
	run    string
	cfg    SocketIOConfig
	logger *slog.Logger

	manager *socket.Manager
	io      *socket.Socket
}

// NewSocketIO creates a socket.io tracker for the named run.
func NewSocketIO(run string, cfg SocketIOConfig, logger *slog.Logger) (*SocketIO, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("socketio tracker requires a url")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketIO{run: run, cfg: cfg, logger: logger}, nil
}

// Start connects to the endpoint and waits for the handshake, the
// configured timeout, or ctx, whichever comes first.
func (s *SocketIO) Start(ctx context.Context) error {
	parsedURL, err := url.Parse(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("socketio tracker: parsing url: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))
	if s.cfg.InsecureSkipVerify {
		s.logger.Warn("Skipping TLS certificate verification.", "url", s.cfg.URL)
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	connected := make(chan error, 1)
	s.manager = socket.NewManager(baseURL, opts)
	s.io = s.manager.Socket(s.cfg.Namespace, opts)

	s.io.On(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	s.io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", errs[0])
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	s.io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			s.io.Disconnect()
			return fmt.Errorf("socketio tracker: connecting to %s: %w", s.cfg.URL, err)
		}
		s.logger.Info("Tracker connected.", "run", s.run, "url", s.cfg.URL, "sid", s.io.Id())
		return nil
	case <-opCtx.Done():
		s.io.Disconnect()
		return fmt.Errorf("socketio tracker: timed out connecting to %s: %w", s.cfg.URL, opCtx.Err())
	}
}

func (s *SocketIO) LogParams(params map[string]any) {
	if s.io == nil {
		return
	}
	s.io.Emit(EventParams, map[string]any{
		"run":    s.run,
		"params": params,
	})
}

func (s *SocketIO) LogMetrics(step Step, metrics map[string]float64) {
	if s.io == nil {
		return
	}
	event := s.cfg.EmitEvent
	if event == "" {
		event = EventMetrics
	}
	s.io.Emit(event, map[string]any{
		"run":     s.run,
		"kind":    string(step.Kind),
		"step":    step.Value,
		"metrics": metrics,
	})
}

// End disconnects from the endpoint.
func (s *SocketIO) End(context.Context) error {
	if s.io == nil {
		return nil
	}
	s.logger.Debug("Disconnecting tracker.", "run", s.run)
	s.io.Disconnect()
	s.io = nil
	return nil
}
