package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Services bundles the application services the API exposes.
type Services struct {
	Expenses   *services.ExpenseService
	Categories *services.CategoryService
	Recurring  *services.RecurringService
	Processor  *services.RecurringProcessor
	Budget     *services.BudgetService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewServer. Zero values select defaults.
type Options struct {
	Logger             *log.Logger
	DB                 Pinger
	RateLimitPerMinute int
	CacheSweepInterval time.Duration
	Clock              func() time.Time
}

type appMetrics struct {
	uptime          time.Time
	expensesCreated int64
	processRuns     int64
}

type Server struct {
	http.Server
	svc              Services
	logger           *log.Logger
	db               Pinger
	now              func() time.Time
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	caches           *cache.Manager
	appMetrics       appMetrics
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// It starts background cache and rate limiter maintenance; Shutdown stops it.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sweep := opts.CacheSweepInterval
	if sweep <= 0 {
		sweep = 10 * time.Minute
	}

	s := &Server{
		svc:              svc,
		logger:           logger.WithComponent(log.ComponentHTTP),
		db:               opts.DB,
		now:              clock,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		caches:           cache.NewManager(),
		appMetrics:       appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	if svc.Expenses != nil {
		s.caches.Register(svc.Expenses.Cleaner())
	}
	if svc.Budget != nil {
		s.caches.Register(svc.Budget.Cleaner())
	}
	s.caches.StartCleanup(sweep)

	mux := http.NewServeMux()
	s.routes(mux)

	ip := s.securityDetector.ExtractClientIP
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(ip, s.handleRateLimited)(handler)
	handler = s.securityDetector.Middleware(ip)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/filter", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/export", s.handleExportExpenses)
	mux.HandleFunc("GET /api/expenses/summary/by-category", s.handleCategorySummary)
	mux.HandleFunc("GET /api/expenses/summary/monthly", s.handleMonthlySummary)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/recurring-expenses", s.handleListRecurring)
	mux.HandleFunc("GET /api/recurring-expenses/active", s.handleListActiveRecurring)
	mux.HandleFunc("GET /api/recurring-expenses/{id}", s.handleGetRecurring)
	mux.HandleFunc("GET /api/recurring-expenses/{id}/preview", s.handlePreviewRecurring)
	mux.HandleFunc("POST /api/recurring-expenses", s.handleCreateRecurring)
	mux.HandleFunc("POST /api/recurring-expenses/process", s.handleProcessRecurring)
	mux.HandleFunc("PUT /api/recurring-expenses/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("PATCH /api/recurring-expenses/{id}/toggle", s.handleToggleRecurring)
	mux.HandleFunc("DELETE /api/recurring-expenses/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.HandleFunc("POST /api/budget", s.handleSetBudget)
	mux.HandleFunc("GET /api/budget/status", s.handleBudgetStatus)
}

// Shutdown stops background maintenance and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	respondJSON(w, r, http.StatusTooManyRequests, errorResponse{
		Error:     "rate limit exceeded, try again later",
		RequestID: trace.GetRequestID(r.Context()),
	})
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks the database within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.db == nil {
		checks["database"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if err := s.db.Ping(ctx); err != nil {
		checks["database"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	respondJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("expenses_created_total", "counter", "Expenses created through the API", atomic.LoadInt64(&s.appMetrics.expensesCreated))
	metric("recurring_process_runs_total", "counter", "Manual recurring processing runs", atomic.LoadInt64(&s.appMetrics.processRuns))
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
