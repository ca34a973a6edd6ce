package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reisekosten/internal/core"
)

// TripService manages trips and keeps their meal allowance snapshot in
// sync with the travel times.
type TripService struct {
	store Store
	now   func() time.Time
}

func NewTripService(store Store) *TripService {
	return &TripService{store: store, now: time.Now}
}

type TripInput struct {
	Name          string
	Destination   string
	StartDateTime time.Time
	EndDateTime   time.Time
}

func (s *TripService) CreateTrip(ctx context.Context, in TripInput) (core.Trip, error) {
	now := s.now()
	trip := core.Trip{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Destination:   strings.TrimSpace(in.Destination),
		StartDateTime: in.StartDateTime,
		EndDateTime:   in.EndDateTime,
		Status:        core.StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := trip.Validate(); err != nil {
		return core.Trip{}, err
	}

	summary := core.CalculateMealAllowances(trip.StartDateTime, trip.EndDateTime)
	trip.MealAllowances = &summary

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return core.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip created",
		"id", trip.ID,
		"name", trip.Name,
		"allowance_cents", summary.TotalAmount.Cents,
		"calendar_days", summary.CalendarDays)

	return trip, nil
}

// UpdateTrip applies new master data and recomputes the allowance
// snapshot whenever the travel times changed.
func (s *TripService) UpdateTrip(ctx context.Context, id string, in TripInput) (core.Trip, error) {
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return core.Trip{}, fmt.Errorf("load trip: %w", err)
	}

	trip.Name = strings.TrimSpace(in.Name)
	trip.Destination = strings.TrimSpace(in.Destination)
	trip.StartDateTime = in.StartDateTime
	trip.EndDateTime = in.EndDateTime
	trip.UpdatedAt = s.now()

	if err := trip.Validate(); err != nil {
		return core.Trip{}, err
	}

	summary := core.CalculateMealAllowances(trip.StartDateTime, trip.EndDateTime)
	trip.MealAllowances = &summary

	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return core.Trip{}, fmt.Errorf("update trip: %w", err)
	}

	return trip, nil
}

// ChangeStatus moves the trip through the approval workflow. Illegal
// transitions are rejected with core.ErrStatusTransition.
func (s *TripService) ChangeStatus(ctx context.Context, id string, to core.TripStatus) (core.Trip, error) {
	if !to.Valid() {
		return core.Trip{}, core.ErrInvalidStatus
	}

	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return core.Trip{}, fmt.Errorf("load trip: %w", err)
	}

	if !trip.Status.CanTransition(to) {
		return core.Trip{}, fmt.Errorf("%w: %s -> %s", core.ErrStatusTransition, trip.Status, to)
	}

	from := trip.Status
	trip.Status = to
	trip.UpdatedAt = s.now()

	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return core.Trip{}, fmt.Errorf("update trip status: %w", err)
	}

	slog.InfoContext(ctx, "Trip status changed", "id", id, "from", from, "to", to)
	return trip, nil
}

func (s *TripService) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	return s.store.GetTrip(ctx, id)
}

func (s *TripService) ListTrips(ctx context.Context) ([]core.Trip, error) {
	return s.store.ListTrips(ctx)
}

// DeleteTrip removes the trip together with all its expenses.
func (s *TripService) DeleteTrip(ctx context.Context, id string) error {
	if err := s.store.DeleteTrip(ctx, id); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	slog.InfoContext(ctx, "Trip deleted", "id", id)
	return nil
}
