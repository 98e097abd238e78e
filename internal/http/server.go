package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
	"saldo/internal/services"
)

// Services bundles what the handlers call into.
type Services struct {
	Transactions *services.TransactionService
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Cards        *services.CardService
	Budgets      *services.BudgetService
	Summaries    *services.SummaryService
}

// Options configures the server's outer layers.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready reports whether dependencies can serve traffic; nil means always.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	svc Services

	ready    func(context.Context) error
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options, svc Services) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		svc:      svc,
		ready:    opts.Ready,
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, peekOwner)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, writeRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger.WithComponent(log.ComponentHTTP))(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.withOwner(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withOwner(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withOwner(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withOwner(s.handleUpdateTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.withOwner(s.handleToggleTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withOwner(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/accounts", s.withOwner(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.withOwner(s.handleCreateAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.withOwner(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withOwner(s.handleDeleteAccount))
	mux.HandleFunc("POST /api/accounts/{id}/recalculate", s.withOwner(s.handleRecalculateAccount))

	mux.HandleFunc("GET /api/categories", s.withOwner(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withOwner(s.handleCreateCategory))
	mux.HandleFunc("POST /api/categories/defaults", s.withOwner(s.handleSeedCategories))
	mux.HandleFunc("PUT /api/categories/{id}", s.withOwner(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withOwner(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/cards", s.withOwner(s.handleListCards))
	mux.HandleFunc("POST /api/cards", s.withOwner(s.handleCreateCard))
	mux.HandleFunc("PUT /api/cards/{id}", s.withOwner(s.handleUpdateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.withOwner(s.handleDeleteCard))

	mux.HandleFunc("GET /api/budget-goals", s.withOwner(s.handleListBudgetGoals))
	mux.HandleFunc("POST /api/budget-goals", s.withOwner(s.handleSaveBudgetGoal))
	mux.HandleFunc("PUT /api/budget-goals/{id}", s.withOwner(s.handleUpdateBudgetGoal))
	mux.HandleFunc("DELETE /api/budget-goals/{id}", s.withOwner(s.handleDeleteBudgetGoal))

	mux.HandleFunc("GET /api/summary", s.withOwner(s.handleSummary))
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)

		tm := s.tracer.GetMetrics()
		dm := s.detector.GetMetrics()
		rm := s.limiter.GetMetrics()
		slog.InfoContext(ctx, "HTTP server stopped",
			"total_requests", tm.TotalRequests,
			"server_errors", tm.ServerErrors,
			"suspicious_requests", dm.SuspiciousRequests,
			"rate_limit_hits", rm.TotalHits)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: "rate limit exceeded"})
}

// peekOwner reads the owner header for logging only; handlers go through
// withOwner, which rejects bad values.
func peekOwner(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
	return id
}
