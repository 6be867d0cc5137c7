package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the store backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"store": "ok"}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	JSONResponse(httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes request, rate limit and cache counters in a
// Prometheus-like text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.trace.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	var clips, clipEvictions int64
	if s.clips != nil {
		clips = int64(s.clips.Size())
		clipEvictions = s.clips.Evictions()
	}
	snap := s.budget.Snapshot()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_errors_total Requests answered with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_errors_total counter\n")
	fmt.Fprintf(w, "http_errors_total %d\n\n", traceMetrics.TotalErrors)

	fmt.Fprintf(w, "# HELP http_response_time_us_avg Average response time in microseconds\n")
	fmt.Fprintf(w, "# TYPE http_response_time_us_avg gauge\n")
	fmt.Fprintf(w, "http_response_time_us_avg %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", rateLimitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP narration_clips_cached Narration clips held for playback\n")
	fmt.Fprintf(w, "# TYPE narration_clips_cached gauge\n")
	fmt.Fprintf(w, "narration_clips_cached %d\n\n", clips)

	fmt.Fprintf(w, "# HELP narration_clips_evicted_total Clips dropped for capacity or age\n")
	fmt.Fprintf(w, "# TYPE narration_clips_evicted_total counter\n")
	fmt.Fprintf(w, "narration_clips_evicted_total %d\n\n", clipEvictions)

	fmt.Fprintf(w, "# HELP budget_expenses Expense lines in the budget\n")
	fmt.Fprintf(w, "# TYPE budget_expenses gauge\n")
	fmt.Fprintf(w, "budget_expenses %d\n\n", len(snap.Expenses))

	fmt.Fprintf(w, "# HELP budget_history_months Months kept in the history\n")
	fmt.Fprintf(w, "# TYPE budget_history_months gauge\n")
	fmt.Fprintf(w, "budget_history_months %d\n\n", len(snap.History))

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", time.Since(s.started).Seconds())
}
