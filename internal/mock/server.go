// Package mock rebuilds captured responses into a route table and serves
// them over HTTP.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultAddr = "127.0.0.1"
	defaultPort = 3000

	readTimeout     = 30 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server replays a RouteTable.
type Server struct {
	table      *RouteTable
	addr       string
	port       int
	latency    time.Duration
	errorRate  float64
	corsOrigin string
	log        zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen host.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithPort sets the listen port. Zero picks a free port.
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithErrorRate makes a fraction of matched requests fail with 500.
func WithErrorRate(rate float64) Option {
	return func(s *Server) { s.errorRate = rate }
}

// WithCORSOrigin adds CORS headers with the given allowed origin. CORS is
// off unless this is set.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a server for table.
func New(table *RouteTable, opts ...Option) *Server {
	if table == nil {
		table = NewRouteTable()
	}
	s := &Server{
		table: table,
		addr:  defaultAddr,
		port:  defaultPort,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the served paths in sorted order.
func (s *Server) Routes() []string {
	return s.table.Paths()
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.addr, strconv.Itoa(s.port))
}

// Handler returns the http.Handler that serves the route table. Routes are
// matched against the decoded request path, so a stored path containing a
// literal "%XX" is reached by escaping its '%' as "%25".
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.handle(rec, r)

	s.log.Info().
		Str("request_id", uuid.NewString()).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.corsOrigin != "" {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.corsOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	route, ok := s.table.Lookup(r.URL.Path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no recorded response for %s", r.URL.Path))
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSONError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
	}

	if s.errorRate > 0 && rand.Float64() < s.errorRate {
		writeJSONError(w, http.StatusInternalServerError, "simulated error")
		return
	}

	h := w.Header()
	for k, v := range route.Response.ReplayHeaders() {
		h.Set(k, v)
	}
	if h.Get("Content-Type") == "" {
		// replay exactly what was stored; no sniffed content type
		h["Content-Type"] = nil
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(route.Response.Body))
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().
			Str("addr", "http://"+ln.Addr().String()).
			Int("routes", s.table.Len()).
			Msg("mock server listening")
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
