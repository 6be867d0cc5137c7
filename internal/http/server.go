package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"familybudget/internal/budget"
	"familybudget/internal/cache"
	"familybudget/internal/core"
	"familybudget/internal/log"
	"familybudget/internal/middleware/ratelimit"
	"familybudget/internal/middleware/security"
	"familybudget/internal/middleware/trace"
	"familybudget/internal/report"
)

// Budget is the controller surface the API drives.
type Budget interface {
	Snapshot() budget.Snapshot
	SetIncome(ctx context.Context, amount core.Money) error
	AddExpense(ctx context.Context, category string) (core.Expense, error)
	UpdateExpense(ctx context.Context, id string, patch core.ExpensePatch) error
	RemoveExpense(ctx context.Context, id string) error
	SetVision(ctx context.Context, text string) error
	SetMission(ctx context.Context, text string) error
	SetNarrationCredential(ctx context.Context, key string) error
	History() []core.MonthSnapshot
	SaveCurrentMonth(ctx context.Context) (core.MonthSnapshot, string, error)
	RequestAdvice(ctx context.Context) (string, error)
	RequestNarration(ctx context.Context) (budget.NarrationResult, error)
	Clip(id string) (cache.Clip, bool)
	ExportReport(ctx context.Context, region string) (report.Document, error)
}

var _ Budget = (*budget.Controller)(nil)

// Server is the HTTP front of the budget.
type Server struct {
	http.Server
	budget Budget
	logger *log.Logger

	ready      func(ctx context.Context) error
	clips      ClipStats
	ipResolver *security.IPResolver
	limiter    *ratelimit.Limiter
	trace      *trace.Middleware
	started    time.Time

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithLogger sets the base logger; requests get a child of it.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(log.ComponentHTTP) }
}

// WithReadiness sets the dependency check behind /readyz.
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// ClipStats describes the narration clip cache on /metrics.
type ClipStats interface {
	Size() int
	Evictions() int64
}

func WithClipStats(stats ClipStats) Option {
	return func(s *Server) { s.clips = stats }
}

// WithRateLimit bounds mutating requests per client and minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		cfg := ratelimit.DefaultConfig()
		cfg.RequestsPerMinute = perMinute
		s.limiter = ratelimit.NewLimiter(cfg)
	}
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, b Budget, opts ...Option) *Server {
	s := &Server{
		budget:     b,
		logger:     log.Discard(),
		ipResolver: security.NewIPResolver(),
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}
	s.trace = trace.NewMiddleware(s.logger, s.ipResolver.ClientIP)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("PUT /api/income", s.handleSetIncome)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleRemoveExpense)
	mux.HandleFunc("PUT /api/goals/vision", s.handleSetVision)
	mux.HandleFunc("PUT /api/goals/mission", s.handleSetMission)
	mux.HandleFunc("PUT /api/narration/credential", s.handleSetCredential)

	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("POST /api/history", s.handleSaveMonth)

	mux.HandleFunc("POST /api/advice", s.handleAdvice)
	mux.HandleFunc("POST /api/narration", s.handleNarration)
	mux.HandleFunc("GET /narration/audio/{id}", s.handleAudio)

	mux.HandleFunc("GET /report.pdf", s.handleReport)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.ipResolver.ClientIP, s.onRateLimited)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = security.NoStore(handler)
	handler = headers.Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Advice and narration wait on remote backends.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.ipResolver.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
