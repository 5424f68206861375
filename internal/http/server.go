package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/store-rating/internal/config"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/metrics"
	"github.com/Clark-Hu/store-rating/internal/service"
)

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	health  HealthChecker
	svc     *service.Service
	metrics *metrics.Metrics
	logger  *logrus.Logger
	limiter *rateLimiter
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, health HealthChecker, svc *service.Service, m *metrics.Metrics, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		cfg:     cfg,
		health:  health,
		svc:     svc,
		metrics: m,
		logger:  logger,
		limiter: newRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(m.Instrument)
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(newCORS(cfg.CORSAllowedOrigins).handler)
	s.router = r

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.limiter.handler)
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Get("/stores", s.handleListStores)
			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/rate", s.handleRateStore)
				r.Get("/my-ratings", s.handleMyRatings)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/profile", s.handleProfile)
			r.Put("/update-password", s.handleUpdatePassword)
		})

		r.Route("/store-owner", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.requireRole(domain.RoleStoreOwner))
			r.Get("/dashboard", s.handleOwnerDashboard)
			r.Post("/store", s.handleCreateStore)
			r.Put("/store", s.handleUpdateStore)
			r.Get("/analytics", s.handleOwnerAnalytics)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.requireRole(domain.RoleAdmin))
			r.Get("/dashboard-stats", s.handleAdminDashboard)
			r.Get("/users", s.handleAdminListUsers)
			r.Post("/users", s.handleAdminCreateUser)
			r.Get("/users/{id}", s.handleAdminGetUser)
			r.Get("/stores", s.handleAdminListStores)
			r.Post("/stores", s.handleAdminCreateStore)
			r.Get("/stores/{id}/ratings", s.handleAdminStoreRatings)
			r.Get("/store-owners", s.handleAdminStoreOwners)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondMessage(w, http.StatusNotFound, false, "Route not found", nil)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondMessage(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil)
	})
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start boots the HTTP server and blocks until ctx is cancelled or the
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

	if s.health == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.WithError(err).Warn("health check failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
