// Package api exposes the retrieval engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/ports/driving"
)

// Default server timeouts.
const (
	requestTimeout  = 120 * time.Second
	readTimeout     = 30 * time.Second
	writeTimeout    = 150 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API in front of a retrieval engine.
type Server struct {
	engine         driving.Engine
	log            *zap.Logger
	dataDir        string
	addr           string
	allowedOrigins []string

	httpServer *http.Server
}

// NewServer creates an HTTP server for the given engine. dataDir is
// the case storage root used to resolve ingestion directories.
func NewServer(engine driving.Engine, log *zap.Logger, addr, dataDir string, allowedOrigins []string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		engine:         engine,
		log:            log,
		dataDir:        dataDir,
		addr:           addr,
		allowedOrigins: allowedOrigins,
	}
}

// Router builds the HTTP handler with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(cors(s.allowedOrigins))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Post("/query", s.handleQuery)
	r.Get("/cases", s.handleListCases)
	r.Post("/search-cases", s.handleSearchCases)
	r.Post("/ingest", s.handleIngest)

	return r
}

// Start serves HTTP until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}
