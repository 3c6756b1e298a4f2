package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

func init() {
	// Amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	CategoryAPI interface {
		List(ctx context.Context, kind core.Kind) ([]core.Category, error)
		Get(ctx context.Context, id string) (core.Category, error)
		Cache() *cache.LRUCache[core.Category]
	}

	LedgerAPI interface {
		Create(ctx context.Context, in core.NewTransaction) (core.TransactionView, error)
		Get(ctx context.Context, id string) (core.TransactionView, error)
		Update(ctx context.Context, id string, patch core.TransactionPatch) (core.TransactionView, error)
		Delete(ctx context.Context, id string) error
		List(ctx context.Context, f core.TransactionFilter, p core.Page) ([]core.TransactionView, error)
		ListByCategory(ctx context.Context, categoryID string, r core.DateRange, p core.Page) ([]core.TransactionView, error)
		Summarize(ctx context.Context, categoryID string, r core.DateRange) (core.CategorySummary, error)
	}

	GoalAPI interface {
		CreateGoal(ctx context.Context, in core.NewGoal) (core.SavingsGoal, error)
		GetGoal(ctx context.Context, id string) (core.SavingsGoal, error)
		ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
		UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) (core.SavingsGoal, error)
		DeleteGoal(ctx context.Context, id string) error
		AddContribution(ctx context.Context, goalID string, in core.NewContribution) (core.GoalContribution, error)
		RemoveContribution(ctx context.Context, goalID, contributionID string) error
		ListContributions(ctx context.Context, goalID string, p core.Page) ([]core.GoalContribution, error)
		SummarizeContributions(ctx context.Context, goalID string, r core.DateRange) (core.GoalSummary, error)
		Reconcile(ctx context.Context, goalID string) (services.ReconcileReport, error)
		ClampCount() int64
	}

	DashboardAPI interface {
		Overview(ctx context.Context, now time.Time) (core.Overview, error)
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Services are the collaborators the API serves.
type Services struct {
	Categories CategoryAPI
	Ledger     LedgerAPI
	Goals      GoalAPI
	Dashboard  DashboardAPI
	DB         Pinger
}

// Options configure the listener and middleware.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	DefaultPageLimit   int
	Version            string
	Logger             *log.Logger
	TrustedProxies     []string

	// Now is the clock for the dashboard and health; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server

	svc       Services
	pages     PageParser
	version   string
	logger    *log.Logger
	now       func() time.Time
	startedAt time.Time

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, svc Services) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default(log.ComponentHTTP)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultPageLimit <= 0 {
		opts.DefaultPageLimit = core.DefaultPageLimit
	}

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:       svc,
		pages:     PageParser{DefaultLimit: opts.DefaultPageLimit},
		version:   opts.Version,
		logger:    opts.Logger,
		now:       opts.Now,
		startedAt: opts.Now(),
		limiter:   ratelimit.NewLimiter(limitCfg),
		detector:  security.NewDetector(opts.Logger.WithComponent(log.ComponentSecurity)),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			opts.Logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.detector.Middleware(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("GET /api/categories/{id}/transactions", s.handleCategoryTransactions)
	mux.HandleFunc("GET /api/categories/{id}/summary", s.handleCategorySummary)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("GET /api/goals/{id}/contributions", s.handleListContributions)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleAddContribution)
	mux.HandleFunc("DELETE /api/goals/{goalId}/contributions/{contributionId}", s.handleRemoveContribution)
	mux.HandleFunc("GET /api/goals/{id}/summary", s.handleGoalSummary)
	mux.HandleFunc("GET /api/goals/{id}/reconcile", s.handleReconcileGoal)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldClientIP, s.detector.ExtractClientIP(r))
	writeJSON(w, http.StatusTooManyRequests, ErrorBody{Error: "rate limit exceeded", Kind: "rate_limited"})
}

// Shutdown stops the listener and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
