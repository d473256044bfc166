package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the API serves.
type Dependencies struct {
	Finance  *services.FinanceService
	Savings  *services.SavingsService
	Ledger   *services.LedgerService
	Identity auth.Identifier
	// Ready is optional; without it /ready always succeeds.
	Ready Pinger
}

type Config struct {
	Addr         string
	RateLimitRPM int
	// BlockSuspicious rejects requests the detector flags instead of only
	// logging them.
	BlockSuspicious bool
}

type Server struct {
	http.Server
	deps     Dependencies
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

func NewServer(cfg Config, deps Dependencies, logger *log.Logger) *Server {
	if deps.Identity == nil {
		deps.Identity = auth.HeaderIdentity{}
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		deps:     deps,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM}),
		detector: security.NewDetector(logger, cfg.BlockSuspicious),
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(trace.NewMiddleware(s.logger, s.detector.ExtractClientIP).Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { NotFoundError("Route not found").Write(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { MethodNotAllowedError().Write(w) })

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
			TooManyRequestsError().Write(w)
		}))
		r.Use(s.authenticate)

		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/trend", s.handleTrend)
		r.Get("/tips", s.handleTips)
		r.Get("/tips/summary", s.handleTipSummary)

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
			r.Post("/{id}/contributions", s.handleContribute)
			r.Post("/{id}/contributions/validate", s.handleValidateContribution)
		})

		r.Route("/income", func(r chi.Router) {
			r.Get("/", s.handleListIncome)
			r.Post("/", s.handleCreateIncome)
			r.Get("/stats", s.handleIncomeStats)
			r.Get("/{id}", s.handleGetIncome)
			r.Put("/{id}", s.handleUpdateIncome)
			r.Delete("/{id}", s.handleDeleteIncome)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleCreateExpense)
			r.Get("/stats", s.handleExpenseStats)
			r.Get("/{id}", s.handleGetExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/stats", s.handleProjectStats)
			r.Get("/{id}", s.handleGetProject)
			r.Put("/{id}", s.handleUpdateProject)
			r.Delete("/{id}", s.handleDeleteProject)
		})

		r.Get("/me", s.handleGetProfile)
		r.Put("/me", s.handleUpdateProfile)
		r.Get("/activity", s.handleActivity)
	})

	return r
}

// authenticate resolves the caller and stores the user ID in the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.deps.Identity.Identify(r)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, auth.ErrMissingToken) {
				msg = "Authentication required"
			}
			log.FromContext(r.Context()).WarnContext(r.Context(), "Authentication failed",
				log.FieldError, err,
				log.FieldPath, r.URL.Path)
			UnauthorizedError(msg).Write(w)
			return
		}
		ctx := auth.WithUser(r.Context(), userID)
		ctx = log.WithContext(ctx, log.FromContext(ctx).With(log.FieldUserID, userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID is set by authenticate on every /api/v1 route.
func userID(r *http.Request) string {
	u, _ := auth.UserFrom(r.Context())
	return u
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "Backend unavailable").Write(w)
			return
		}
	}
	NewResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
