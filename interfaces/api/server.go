// Package api serves the draw calendar search service over HTTP.
//
// Routes:
//
//	GET /api/search/{relation}   window search (day, am, pm, number, number2, from, to)
//	GET /api/relations           registered relations
//	GET /api/calendar            whole calendar
//	GET /api/calendar/latest     last n records (n, default 6)
//	GET /api/calendar/{year}     one year
//	GET /api/weeks/{year}/{week} window neighborhood of a week
//	GET /health                  liveness
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/drawcal/application"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/relation"
	"github.com/felixgeelhaar/drawcal/infrastructure/logging"
	"github.com/felixgeelhaar/drawcal/infrastructure/telemetry"
)

// Service is the application surface the server exposes.
type Service interface {
	Search(ctx context.Context, q application.Query) (calendar.WindowSet, error)
	Relations() []relation.Info
	All(ctx context.Context) ([]calendar.Record, error)
	Year(ctx context.Context, year int) ([]calendar.Record, error)
	Latest(ctx context.Context, n int) ([]calendar.Record, error)
	Neighborhood(year, week int) ([]calendar.WeekKey, error)
}

// Config configures the HTTP server.
type Config struct {
	// Address is the HTTP listen address (default ":8080").
	Address string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// AllowedOrigins enables CORS for the listed origins. "*" allows any.
	AllowedOrigins []string

	// RateLimit is the per-client requests per second. Zero disables it.
	RateLimit int
	// RateBurst is the per-client burst (default RateLimit).
	RateBurst int

	// Version is reported by /health.
	Version string

	Metrics telemetry.Metrics
}

// Server is the HTTP front end of the search service.
type Server struct {
	config     Config
	service    Service
	mux        *http.ServeMux
	limiter    ratelimit.RateLimiter
	httpServer *http.Server
}

// New creates a server for service.
func New(service Service, cfg Config) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &telemetry.NoopMetricsProvider{}
	}

	s := &Server{
		config:  cfg,
		service: service,
		mux:     http.NewServeMux(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RateLimit
		}
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:  cfg.RateLimit,
			Burst: burst,
		})
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/search/{relation}", s.handleSearch)
	s.mux.HandleFunc("GET /api/relations", s.handleRelations)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/calendar/latest", s.handleLatest)
	s.mux.HandleFunc("GET /api/calendar/{year}", s.handleYear)
	s.mux.HandleFunc("GET /api/weeks/{year}/{week}", s.handleWeeks)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		s.recoverPanics,
		s.requestID,
		s.logRequests,
		s.traceRequests,
		s.headers,
		s.rateLimit,
	)
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled. See Serve.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within shutdownTimeout. Requests in flight at cancellation
// run to completion; their contexts are detached from ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	base := context.WithoutCancel(ctx)
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return base },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Add(logging.Str("address", ln.Addr().String())).Msg("http server listening")
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logging.Info().Msg("http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
