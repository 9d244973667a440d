package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/validateiq/validateiq/internal/config"
	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/site"
	"github.com/validateiq/validateiq/internal/store"
)

type Options struct {
	Store   store.Store
	Config  *config.Config
	Content *site.Copy
	Logger  *slog.Logger
}

type Server struct {
	store     store.Store
	cfg       *config.Config
	content   *site.Copy
	log       *slog.Logger
	token     string
	limiter   *signupLimiter
	router    chi.Router
	startTime time.Time
}

func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{Port: 8080, WaitlistCap: landing.DefaultCap, SignupsPerMinute: 10, SignupBurst: 5}
	}
	content := opts.Content
	if content == nil {
		content = site.DefaultContent()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	token := cfg.DashboardToken
	if token == "" {
		token = generateToken()
	}

	srv := &Server{
		store:     opts.Store,
		cfg:       cfg,
		content:   content,
		log:       log.With(logger.Scope("server")),
		token:     token,
		limiter:   newSignupLimiter(cfg.SignupsPerMinute, cfg.SignupBurst),
		router:    chi.NewRouter(),
		startTime: time.Now(),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// Public pages
	r.Get("/", s.handleLanding)
	r.Get("/vq.js", s.handleTrackerJS)
	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(cors)
		r.Post("/init", s.handleInit)
		r.Post("/event", s.handleEvent)
		r.Post("/pageview/update", s.handlePageViewUpdate)
		r.Post("/beacon", s.handleBeacon)
	})

	r.Route("/api/signups", func(r chi.Router) {
		r.Use(cors)
		r.Post("/", s.handleSignup)
		r.Get("/count", s.handleSignupCount)
	})

	// Dashboard endpoints (protected)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/api/stats/dashboard", s.handleStatsAPI)
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	// Write token to file for the token command
	if err := os.WriteFile(s.cfg.TokenFile(), []byte(s.token), 0600); err != nil {
		s.log.Warn("failed to write token file", logger.Error(err))
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.Int("port", s.cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) Token() string {
	return s.token
}

// DashboardURL is the link that logs an operator into /dashboard.
func (s *Server) DashboardURL() string {
	return fmt.Sprintf("%s/dashboard?token=%s", s.cfg.BaseURL(), s.token)
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) waitlistCap() int {
	return s.cfg.WaitlistCap
}

func spotsLeft(cap, taken int) int {
	return max(cap-taken, 0)
}

func generateToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("failed to generate token: %v", err))
	}
	return hex.EncodeToString(bytes)
}
