package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/gamestore-catalogue/internal/catalogue"
	"github.com/Clark-Hu/gamestore-catalogue/internal/config"
	"github.com/Clark-Hu/gamestore-catalogue/internal/metrics"
)

// HealthChecker reports whether the backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	games    *catalogue.Service
	health   HealthChecker
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	validate *validator.Validate
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes. m may be
// nil, in which case no metrics are recorded or exposed.
func New(cfg config.Config, games *catalogue.Service, health HealthChecker, m *metrics.Metrics, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s := &Server{
		cfg:      cfg,
		games:    games,
		health:   health,
		metrics:  m,
		logger:   logger,
		validate: newValidator(),
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
	s.router.Route("/api/videogames", func(r chi.Router) {
		r.Get("/", s.handleListVideoGames)
		r.Post("/", s.handleCreateVideoGame)
		r.Get("/count", s.handleCountVideoGames)
		r.Get("/search", s.handleSearchVideoGames)
		r.Get("/genre/{genre}", s.handleVideoGamesByGenre)
		r.Get("/platform/{platform}", s.handleVideoGamesByPlatform)
		r.Get("/year/{year}", s.handleVideoGamesByYear)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetVideoGame)
			r.Put("/", s.handleUpdateVideoGame)
			r.Delete("/", s.handleDeleteVideoGame)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is canceled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpSrv.Addr).Info("http: listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health.HealthCheck(ctx); err != nil {
			s.logger.WithError(err).Warn("http: health check failed")
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Storage is unavailable")
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger writes one access log entry per request, at warn for 4xx
// and error for 5xx.
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := logrus.InfoLevel
			if status >= 500 {
				level = logrus.ErrorLevel
			} else if status >= 400 {
				level = logrus.WarnLevel
			}
			logger.WithFields(logrus.Fields{
				"request_id":    middleware.GetReqID(r.Context()),
				"method":        r.Method,
				"path":          r.URL.Path,
				"query":         r.URL.RawQuery,
				"status":        status,
				"duration_ms":   time.Since(start).Milliseconds(),
				"ip":            r.RemoteAddr,
				"response_size": ww.BytesWritten(),
			}).Log(level, "HTTP Request")
		})
	}
}
