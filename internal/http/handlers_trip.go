package http

import (
	"net/http"

	"reisekosten/internal/core"
	"reisekosten/internal/services"
)

type tripRequest struct {
	Name          string `json:"name"`
	Destination   string `json:"destination"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
}

func (req tripRequest) toInput() (services.TripInput, error) {
	start, err := parseDateTime(req.StartDateTime)
	if err != nil {
		return services.TripInput{}, err
	}
	end, err := parseDateTime(req.EndDateTime)
	if err != nil {
		return services.TripInput{}, err
	}
	return services.TripInput{
		Name:          req.Name,
		Destination:   req.Destination,
		StartDateTime: start,
		EndDateTime:   end,
	}, nil
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListTrips(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if trips == nil {
		trips = []core.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	trip, err := s.trips.CreateTrip(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, trip)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	trip, err := s.trips.UpdateTrip(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.DeleteTrip(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeTripStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status core.TripStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	trip, err := s.trips.ChangeStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleListTripExpenses(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")
	if _, err := s.trips.GetTrip(r.Context(), tripID); err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := s.expenses.ListExpensesByTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}
