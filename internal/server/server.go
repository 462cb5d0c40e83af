package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gallery-gen/internal/config"
	"gallery-gen/internal/logging"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves a built gallery directory over HTTP for local preview.
type Server struct {
	cfg config.ServerConfig
	dir string
	log *logging.Logger
}

// New creates a preview server for the given output directory.
func New(cfg config.ServerConfig, dir string, log *logging.Logger) *Server {
	return &Server{cfg: cfg, dir: dir, log: log}
}

// Router builds the request router: health, optional metrics, and the
// static gallery tree.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(accessLog(s.log))
	if s.cfg.MetricsEnabled {
		r.Use(instrument)
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)

	r.PathPrefix("/").Handler(noStoreHandler(http.FileServer(http.Dir(s.dir))))
	return r
}

// noStoreHandler disables caching so edits show up on refresh during
// preview. Content-hashed asset names make caching pointless here anyway.
func noStoreHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening on http://localhost:%s", s.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("preview server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server failed: %w", err)
	}
}
