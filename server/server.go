// Package server bridges the transform hook to build tools that are not
// written in Go. A bundler plugin posts each module to /transform, or keeps
// one WebSocket open on /ws, and gets back the annotated text or null.
package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/hook"
	"github.com/teranos/jsdoc-builder/logger"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:5178"

// TransformRequest is the body of POST /transform and of each WebSocket
// message.
type TransformRequest struct {
	RequestID string `json:"requestId,omitempty"`
	Code      string `json:"code"`
	ID        string `json:"id" validate:"required"`
	Phase     string `json:"phase,omitempty" validate:"omitempty,oneof=serve build"`
}

// Server serves the hook over HTTP and WebSocket.
type Server struct {
	plugin   *hook.Plugin
	version  string
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

// New creates a server for plugin. version is reported by /healthz.
func New(plugin *hook.Plugin, version string) *Server {
	return &Server{
		plugin:  plugin,
		version: version,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.ComponentLogger("server"),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/transform", s.handleTransform)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then drains for up
// to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WithHint(errors.Wrapf(err, "listen on %s", addr),
			"another process may be using the port; pass --addr to choose another")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Infow("Hook bridge listening", logger.FieldAddress, ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx := logger.WithRequestID(r.Context(), uuid.NewString())

	var req TransformRequest
	if err := decodeRequest(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.transform(ctx, req)
	if err != nil {
		logger.LoggerFromContext(ctx).Warnw("Transform failed", logger.FieldFile, req.ID, logger.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// a nil result encodes as JSON null
	_ = writeJSON(w, http.StatusOK, res)
}

func (s *Server) transform(ctx context.Context, req TransformRequest) (*hook.TransformResult, error) {
	return s.plugin.Transform(ctx, req.Code, req.ID, hook.Phase(req.Phase))
}

// checkOrigin allows clients without an Origin header and local pages only.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}
