// Package ops serves the operator endpoints of a running pokedex: health,
// Prometheus metrics and a JSON snapshot of the browsing session.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Sternrassler/pokedex/pkg/logging"
	"github.com/Sternrassler/pokedex/pkg/metrics"
	"github.com/Sternrassler/pokedex/pkg/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SnapshotFunc reports the session state served at /debug/session.
type SnapshotFunc func() viewer.Snapshot

// Server is the operator HTTP listener.
type Server struct {
	addr       string
	snapshot   SnapshotFunc
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// New creates an ops server for addr. snapshot may be nil, in which case
// /debug/session answers 404.
func New(addr string, snapshot SnapshotFunc) *Server {
	s := &Server{
		addr:     addr,
		snapshot: snapshot,
		logger:   logging.NewLogger("ops"),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/debug/session", s.handleSession)

	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	if s.snapshot == nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode session snapshot")
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("Ops request")
	})
}

// Start listens on the configured address and serves in the background.
// The bound address is returned, which resolves a ":0" port.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", err
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Ops listener failed")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Ops listener started")
	return ln.Addr().String(), nil
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
