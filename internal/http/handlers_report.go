package http

import (
	"log/slog"
	"net/http"
	"strings"

	"reisekosten/internal/core"
)

// handleReportSummary builds the aggregated report for a date range.
// Query parameters: start=YYYY-MM-DD&end=YYYY-MM-DD.
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(strings.TrimSpace(r.URL.Query().Get("start")))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	end, err := parseDate(strings.TrimSpace(r.URL.Query().Get("end")))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if end.Before(start) {
		writeError(w, r, core.ErrEndBeforeStart)
		return
	}

	key := s.summaryCacheKey(start, end)
	if summary, ok := s.summaryCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Report summary cache hit", "start", start, "end", end)
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.reports.Summary(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleReportExport enqueues an asynchronous PDF export.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start   string `json:"start"`
		End     string `json:"end"`
		EmailTo string `json:"email_to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	start, err := parseDate(req.Start)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	end, err := parseDate(req.End)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	exportID, err := s.reports.RequestExport(r.Context(), start, end, req.EmailTo)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"export_id": exportID})
}
