// Package livereload tells a socket.io server that a watch rebuild finished,
// so connected browsers can reload.
package livereload

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the notifier. It is only built when the project file
// has a livereload block.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNotifier("livereload", &registry.RegisteredNotifier{
		New: func(s *project.Settings) (registry.Notifier, error) {
			if s.LiveReload == nil {
				return nil, nil
			}
			return NewNotifier(*s.LiveReload)
		},
	})
}

// Payload is the data emitted with the reload event.
type Payload struct {
	Files []string `json:"files"`
}

// Notifier keeps one socket.io connection and emits the reload event on it.
type Notifier struct {
	baseURL   string
	opts      *socket.Options
	namespace string
	event     string
	timeout   time.Duration

	mu     sync.Mutex
	client *socket.Socket
}

// NewNotifier validates cfg. The connection is opened on the first Notify.
func NewNotifier(cfg project.LiveReload) (*Notifier, error) {
	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse livereload url: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("livereload url %q must be absolute", cfg.URL)
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid livereload timeout %q: %w", cfg.Timeout, err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	return &Notifier{
		baseURL:   fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		opts:      opts,
		namespace: cfg.Namespace,
		event:     cfg.Event,
		timeout:   timeout,
	}, nil
}

// Notify emits the reload event with the changed files.
func (n *Notifier) Notify(ctx context.Context, changed []string) error {
	client, err := n.connect(ctx)
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("notifier", "livereload", "event", n.event)
	logger.Debug("Emitting reload event.", "files", len(changed))
	if err := client.Emit(n.event, Payload{Files: changed}); err != nil {
		return fmt.Errorf("failed to emit %s: %w", n.event, err)
	}
	return nil
}

// connect returns the open socket, dialing it first if needed.
func (n *Notifier) connect(ctx context.Context) (*socket.Socket, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client != nil {
		return n.client, nil
	}

	logger := ctxlog.FromContext(ctx).With("notifier", "livereload", "url", n.baseURL)
	connectChan := make(chan error, 1)

	manager := socket.NewManager(n.baseURL, n.opts)
	io := manager.Socket(n.namespace, n.opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to livereload server.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("livereload connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	case <-time.After(n.timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for livereload connection", n.timeout)
	}

	n.client = io
	return io, nil
}

// Close disconnects the socket if it was opened.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.client != nil {
		n.client.Disconnect()
		n.client = nil
	}
	return nil
}
