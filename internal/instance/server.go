package instance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/dshills/stormwin/internal/logging"
	"github.com/dshills/stormwin/internal/window"
)

// Handler executes requests forwarded by other invocations.
type Handler interface {
	// Open opens paths using mode, one of ModeTab or ModeWindow.
	Open(ctx context.Context, mode string, paths []string) error

	// SetTheme applies a theme to every window.
	SetTheme(ctx context.Context, name string) error

	// Windows describes the open windows.
	Windows(ctx context.Context) ([]window.Info, error)
}

// Server answers requests on a unix socket.
type Server struct {
	path     string
	handler  Handler
	log      *logging.Logger
	timeout  time.Duration
	upgrader websocket.Upgrader
	ln       net.Listener
	http     *http.Server

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRequestTimeout bounds each handler call.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.timeout = d
	}
}

// Listen claims the socket at path. A socket left behind by an instance
// that exited is replaced; a live one yields ErrAlreadyRunning.
func Listen(path string, h Handler, opts ...ServerOption) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating socket directory: %w", err)
	}

	if conn, err := net.DialTimeout("unix", path, time.Second); err == nil {
		conn.Close()
		return nil, ErrAlreadyRunning
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}

	s := &Server{
		path:    path,
		handler: h,
		log:     logging.Null(),
		timeout: 10 * time.Second,
		ln:      ln,
		conns:   make(map[*websocket.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{
		// Only local processes can reach the socket.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	s.http = &http.Server{
		Handler:           http.HandlerFunc(s.serveWebSocket),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Serve accepts connections until Close. It returns nil after Close.
func (s *Server) Serve() error {
	err := s.http.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the server, drops open connections and removes the socket.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	err := s.http.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}
	if !s.track(conn) {
		conn.Close()
		return
	}
	defer s.untrack(conn)

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, s.handle(r.Context(), msg)); err != nil {
			s.log.Debug("writing response: %v", err)
			return
		}
	}
}

func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// handle decodes one request and returns the encoded response.
func (s *Server) handle(ctx context.Context, msg []byte) []byte {
	if !gjson.ValidBytes(msg) {
		return encodeError(gjson.Result{}, CodeParseError, "invalid JSON")
	}
	req := gjson.ParseBytes(msg)
	id := req.Get("id")
	method := req.Get("method")
	if method.Type != gjson.String {
		return encodeError(id, CodeInvalidRequest, "missing method")
	}
	params := req.Get("params")

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.log.WithField("method", method.String())
	log.Debug("request %s", id.Raw)

	switch method.String() {
	case MethodPing:
		return encodeResult(id, map[string]string{"status": "ok"})

	case MethodOpen:
		mode := params.Get("mode").String()
		if mode == "" {
			mode = ModeTab
		}
		if mode != ModeTab && mode != ModeWindow {
			return encodeError(id, CodeInvalidParams, fmt.Sprintf("unknown mode %q", mode))
		}
		paths, err := stringArray(params.Get("paths"))
		if err != nil {
			return encodeError(id, CodeInvalidParams, "paths: "+err.Error())
		}
		if err := s.handler.Open(ctx, mode, paths); err != nil {
			log.Warn("open: %v", err)
			return encodeError(id, CodeInternal, err.Error())
		}
		return encodeResult(id, map[string]any{"status": "ok", "opened": len(paths)})

	case MethodTheme:
		name := params.Get("name")
		if name.Type != gjson.String || name.String() == "" {
			return encodeError(id, CodeInvalidParams, "name is required")
		}
		if err := s.handler.SetTheme(ctx, name.String()); err != nil {
			return encodeError(id, CodeInternal, err.Error())
		}
		return encodeResult(id, map[string]string{"status": "ok"})

	case MethodWindows:
		infos, err := s.handler.Windows(ctx)
		if err != nil {
			return encodeError(id, CodeInternal, err.Error())
		}
		if infos == nil {
			infos = []window.Info{}
		}
		return encodeResult(id, infos)

	default:
		return encodeError(id, CodeMethodNotFound, "unknown method: "+method.String())
	}
}
