package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reisekosten/internal/core"
	"reisekosten/internal/routing"
)

// ExpenseService creates and maintains expense positions. The VAT
// decomposition and the mileage amount are derived once when the
// position is saved, never on read.
type ExpenseService struct {
	store  Store
	routes DistanceResolver
	now    func() time.Time
}

func NewExpenseService(store Store, routes DistanceResolver) *ExpenseService {
	return &ExpenseService{store: store, routes: routes, now: time.Now}
}

type ExpenseInput struct {
	TripID      string
	Category    core.Category
	Description string
	Date        time.Time

	// Gross amount for regular positions. Ignored for kilometer
	// positions, whose amount is derived from the distance.
	GrossAmount core.Money
	VatRateID   core.VatRateID

	// Kilometer positions
	DistanceKm      float64
	DurationMinutes int
	Direction       core.TripDirection
	StartAddress    string
	EndAddress      string
	LicensePlate    string
	ManualDistance  bool
}

func (s *ExpenseService) CreateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	expense, err := s.buildExpense(ctx, uuid.NewString(), in)
	if err != nil {
		return core.Expense{}, err
	}
	expense.CreatedAt = s.now()

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", expense.ID,
		"trip_id", expense.TripID,
		"category", expense.Category,
		"gross_cents", expense.GrossAmount.Cents)

	return expense, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	existing, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expense: %w", err)
	}

	expense, err := s.buildExpense(ctx, id, in)
	if err != nil {
		return core.Expense{}, err
	}
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) ListExpensesByTrip(ctx context.Context, tripID string) ([]core.Expense, error) {
	return s.store.ListExpensesByTrip(ctx, tripID)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// ResolveDistance looks up the one-way route between two addresses for
// the expense form. The stored distance stays one-way, doubling for
// round trips happens in the amount derivation only.
func (s *ExpenseService) ResolveDistance(ctx context.Context, origin, destination string) (float64, int, error) {
	if s.routes == nil || !s.routes.Enabled() {
		return 0, 0, routing.ErrNoAPIKey
	}
	route, err := s.routes.Route(ctx, origin, destination)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve distance: %w", err)
	}
	return route.DistanceKm, route.DurationMinutes, nil
}

func (s *ExpenseService) buildExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	if _, err := s.store.GetTrip(ctx, in.TripID); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %s", core.ErrMissingTrip, in.TripID)
	}

	category := in.Category
	if category == "" {
		category = core.DefaultCategory
	}
	if !category.Valid() {
		return core.Expense{}, fmt.Errorf("%w: %s", core.ErrUnknownCategory, category)
	}

	expense := core.Expense{
		ID:          id,
		TripID:      in.TripID,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
	}

	if category == core.CategoryKilometer {
		if err := s.fillMileage(ctx, &expense, in); err != nil {
			return core.Expense{}, err
		}
	} else {
		expense.GrossAmount = in.GrossAmount
		expense.VatRateID = in.VatRateID
		if expense.VatRateID == "" || !core.KnownVatRateID(expense.VatRateID) {
			expense.VatRateID = category.DefaultVatRate()
		}
	}

	// Decompose once at save time so stored values never drift.
	expense.NetAmount = core.NetAmount(expense.GrossAmount, expense.VatRateID)
	expense.VatAmount = expense.GrossAmount.Sub(expense.NetAmount)

	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	return expense, nil
}

func (s *ExpenseService) fillMileage(ctx context.Context, expense *core.Expense, in ExpenseInput) error {
	direction := in.Direction
	if direction == "" {
		direction = core.DirectionOneWay
	}
	if !direction.Valid() {
		return fmt.Errorf("%w: %s", core.ErrInvalidDirection, in.Direction)
	}

	distanceKm := in.DistanceKm
	durationMinutes := in.DurationMinutes
	if !in.ManualDistance && in.StartAddress != "" && in.EndAddress != "" && s.routes != nil && s.routes.Enabled() {
		route, err := s.routes.Route(ctx, in.StartAddress, in.EndAddress)
		if err != nil {
			return fmt.Errorf("resolve distance: %w", err)
		}
		distanceKm = route.DistanceKm
		durationMinutes = route.DurationMinutes
	}

	if distanceKm <= 0 {
		return core.ErrInvalidDistance
	}

	expense.DistanceKm = distanceKm
	expense.DurationMinutes = durationMinutes
	expense.Direction = direction
	expense.StartAddress = strings.TrimSpace(in.StartAddress)
	expense.EndAddress = strings.TrimSpace(in.EndAddress)
	expense.LicensePlate = strings.TrimSpace(in.LicensePlate)
	expense.ManualDistance = in.ManualDistance

	expense.GrossAmount = core.MileageReimbursement(core.EffectiveDistance(distanceKm, direction), core.KilometerRate)
	expense.VatRateID = core.VatRate0

	return nil
}
