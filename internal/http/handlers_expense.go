package http

import (
	"net/http"
	"strings"

	"reisekosten/internal/core"
	"reisekosten/internal/services"
)

type expenseRequest struct {
	TripID      string `json:"trip_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`

	// Decimal string, dot or comma separator, e.g. "23,80"
	GrossAmount string `json:"gross_amount"`
	VatRateID   string `json:"vat_rate_id"`

	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	Direction       string  `json:"direction"`
	StartAddress    string  `json:"start_address"`
	EndAddress      string  `json:"end_address"`
	LicensePlate    string  `json:"license_plate"`
	ManualDistance  bool    `json:"manual_distance"`
}

func (req expenseRequest) toInput() (services.ExpenseInput, error) {
	date, err := parseDateTime(req.Date)
	if err != nil {
		return services.ExpenseInput{}, err
	}

	in := services.ExpenseInput{
		TripID:          req.TripID,
		Category:        core.Category(req.Category),
		Description:     req.Description,
		Date:            date,
		VatRateID:       core.VatRateID(req.VatRateID),
		DistanceKm:      req.DistanceKm,
		DurationMinutes: req.DurationMinutes,
		Direction:       core.TripDirection(req.Direction),
		StartAddress:    req.StartAddress,
		EndAddress:      req.EndAddress,
		LicensePlate:    req.LicensePlate,
		ManualDistance:  req.ManualDistance,
	}

	// Kilometer positions derive their amount, everything else needs one.
	if in.Category != core.CategoryKilometer {
		cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.GrossAmount))
		if err != nil {
			return services.ExpenseInput{}, err
		}
		in.GrossAmount = core.Money{Cents: cents}
	}

	return in, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	expense, err := s.expenses.CreateExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.expenses.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	expense, err := s.expenses.UpdateExpense(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

// handleResolveDistance looks up the one-way driving distance between
// two addresses for the expense form.
func (s *Server) handleResolveDistance(w http.ResponseWriter, r *http.Request) {
	origin := strings.TrimSpace(r.URL.Query().Get("origin"))
	destination := strings.TrimSpace(r.URL.Query().Get("destination"))
	if origin == "" || destination == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "origin and destination are required"})
		return
	}

	distanceKm, durationMinutes, err := s.expenses.ResolveDistance(r.Context(), origin, destination)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"distance_km":      distanceKm,
		"duration_minutes": durationMinutes,
	})
}
