package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/log"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Version   string    `json:"version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(s.startedAt).Round(time.Second).String(),
		Version:   s.version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.DB == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.DB.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleMetrics renders counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	counter := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n", name, help, name, name, v)
	}

	tm := s.tracer.GetMetrics()
	counter("fintrack_http_requests_total", "HTTP requests served.", tm.TotalRequests)
	counter("fintrack_http_client_errors_total", "HTTP responses with a 4xx status.", tm.ClientErrors)
	counter("fintrack_http_server_errors_total", "HTTP responses with a 5xx status.", tm.ServerErrors)
	gauge("fintrack_http_response_time_avg_microseconds", "Mean response time.", tm.AverageResponseTime)

	rl := s.limiter.GetMetrics()
	counter("fintrack_ratelimit_rejected_total", "Requests rejected by the rate limiter.", rl.TotalHits)
	gauge("fintrack_ratelimit_clients", "Clients tracked by the rate limiter.", rl.ClientCount)

	dm := s.detector.GetMetrics()
	counter("fintrack_security_suspicious_requests_total", "Requests matching probing patterns.", dm.SuspiciousRequests)
	counter("fintrack_security_invalid_ip_total", "Unparsable client or forwarded addresses.", dm.InvalidIPAttempts)

	if s.svc.Categories != nil {
		cs := s.svc.Categories.Cache().Stats()
		counter("fintrack_category_cache_hits_total", "Category cache hits.", cs.Hits)
		counter("fintrack_category_cache_misses_total", "Category cache misses.", cs.Misses)
		gauge("fintrack_category_cache_entries", "Entries in the category cache.", int64(cs.Size))
	}
	if s.svc.Goals != nil {
		counter("fintrack_goal_balance_clamps_total", "Contribution reversals clamped at zero.", s.svc.Goals.ClampCount())
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Dashboard.Overview(r.Context(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
