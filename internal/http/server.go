package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"reisekosten/internal/cache"
	"reisekosten/internal/core"
	"reisekosten/internal/services"
)

type Server struct {
	http.Server
	trips    *services.TripService
	expenses *services.ExpenseService
	reports  *services.ReportService

	rateLimiter *rateLimiter

	// Report summaries are cached per range and invalidated wholesale
	// via a generation counter on every write.
	summaryCache *cache.LRUCache[core.ReportSummary]
	generation   atomic.Int64

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, trips *services.TripService, expenses *services.ExpenseService, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		trips:            trips,
		expenses:         expenses,
		reports:          reports,
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.NewLRUCache[core.ReportSummary](50, time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/meta", s.withSecurityHeaders(s.handleMeta))

	mux.HandleFunc("GET /api/trips", s.withSecurityHeaders(s.handleListTrips))
	mux.HandleFunc("POST /api/trips", s.withSecurityHeaders(s.handleCreateTrip))
	mux.HandleFunc("GET /api/trips/{id}", s.withSecurityHeaders(s.handleGetTrip))
	mux.HandleFunc("PUT /api/trips/{id}", s.withSecurityHeaders(s.handleUpdateTrip))
	mux.HandleFunc("DELETE /api/trips/{id}", s.withSecurityHeaders(s.handleDeleteTrip))
	mux.HandleFunc("POST /api/trips/{id}/status", s.withSecurityHeaders(s.handleChangeTripStatus))
	mux.HandleFunc("GET /api/trips/{id}/expenses", s.withSecurityHeaders(s.handleListTripExpenses))

	mux.HandleFunc("POST /api/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.withSecurityHeaders(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withSecurityHeaders(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withSecurityHeaders(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/distance", s.withSecurityHeaders(s.handleResolveDistance))

	mux.HandleFunc("GET /api/report", s.withSecurityHeaders(s.handleReportSummary))
	mux.HandleFunc("POST /api/report/export", s.withSecurityHeaders(s.handleReportExport))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.summaryCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateSummaries makes all cached report summaries unreachable.
func (s *Server) invalidateSummaries() {
	s.generation.Add(1)
}

func (s *Server) summaryCacheKey(start, end time.Time) string {
	return fmt.Sprintf("g%d|%s|%s", s.generation.Load(), start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// withSecurityHeaders adds security headers, rate limiting and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMeta exposes the static category and VAT rate tables for clients.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	type categoryMeta struct {
		ID         core.Category  `json:"id"`
		Label      string         `json:"label"`
		DefaultVat core.VatRateID `json:"default_vat_rate"`
	}
	type vatMeta struct {
		ID      core.VatRateID `json:"id"`
		Percent int            `json:"percent"`
		Label   string         `json:"label"`
	}
	type statusMeta struct {
		ID    core.TripStatus `json:"id"`
		Label string          `json:"label"`
	}

	var cats []categoryMeta
	for _, c := range core.Categories() {
		cats = append(cats, categoryMeta{ID: c, Label: c.Label(), DefaultVat: c.DefaultVatRate()})
	}
	var vats []vatMeta
	for _, id := range core.VatRateIDs() {
		rate := core.VatRateByID(id)
		vats = append(vats, vatMeta{ID: rate.ID, Percent: rate.Percent, Label: rate.Label})
	}
	var statuses []statusMeta
	for _, st := range []core.TripStatus{core.StatusDraft, core.StatusCompleted, core.StatusSubmitted, core.StatusApproved, core.StatusRejected} {
		statuses = append(statuses, statusMeta{ID: st, Label: st.Label()})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"categories":     cats,
		"vat_rates":      vats,
		"trip_statuses":  statuses,
		"kilometer_rate": core.KilometerRate,
	})
}
