package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"reisekosten/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteTripRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	start := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	trip := testTrip("t1", start)
	trip.MealAllowances = &core.AllowanceSummary{
		TotalHours:   30,
		CalendarDays: 2,
		Breakdown: []core.AllowanceDay{
			{Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Kind: core.AllowanceArrival, Amount: core.ArrivalDayAllowance},
			{Date: time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), Kind: core.AllowanceDeparture, Amount: core.DepartureDayAllowance},
		},
		TotalAmount: core.Money{Cents: 2800},
	}

	if err := repo.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	got, err := repo.GetTrip(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.Name != trip.Name || got.Destination != trip.Destination || got.Status != core.StatusDraft {
		t.Errorf("trip mismatch: %+v", got)
	}
	if !got.StartDateTime.Equal(trip.StartDateTime) || !got.EndDateTime.Equal(trip.EndDateTime) {
		t.Errorf("times mismatch: got %v - %v", got.StartDateTime, got.EndDateTime)
	}
	if got.MealAllowances == nil {
		t.Fatal("meal allowances not persisted")
	}
	if got.MealAllowances.TotalAmount.Cents != 2800 || len(got.MealAllowances.Breakdown) != 2 {
		t.Errorf("allowance snapshot mismatch: %+v", got.MealAllowances)
	}
	if got.MealAllowances.Breakdown[0].Kind != core.AllowanceArrival {
		t.Errorf("breakdown kind = %s", got.MealAllowances.Breakdown[0].Kind)
	}
}

func TestSQLiteExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	start := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	if err := repo.CreateTrip(ctx, testTrip("t1", start)); err != nil {
		t.Fatal(err)
	}

	e := testExpense("e1", "t1", start)
	e.Category = core.CategoryKilometer
	e.DistanceKm = 37.4
	e.DurationMinutes = 42
	e.Direction = core.DirectionRoundTrip
	e.StartAddress = "Musterstr. 1, Hamburg"
	e.EndAddress = "Beispielweg 2, Bremen"
	e.LicensePlate = "HH-AB 123"
	e.ManualDistance = true

	if err := repo.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	got, err := repo.GetExpense(ctx, "e1")
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Category != core.CategoryKilometer || got.DistanceKm != 37.4 || !got.ManualDistance {
		t.Errorf("expense mismatch: %+v", got)
	}
	if got.Direction != core.DirectionRoundTrip || got.VatRateID != core.VatRate7 {
		t.Errorf("expense mismatch: %+v", got)
	}
	if got.GrossAmount.Cents != 10700 || got.NetAmount.Cents != 10000 || got.VatAmount.Cents != 700 {
		t.Errorf("amounts mismatch: %+v", got)
	}

	got.Description = "Hotel mit Parkplatz"
	if err := repo.UpdateExpense(ctx, got); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	updated, _ := repo.GetExpense(ctx, "e1")
	if updated.Description != "Hotel mit Parkplatz" {
		t.Errorf("description = %q", updated.Description)
	}
}

func TestSQLiteDeleteTripCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	start := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	if err := repo.CreateTrip(ctx, testTrip("t1", start)); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateExpense(ctx, testExpense("e1", "t1", start)); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateExpense(ctx, testExpense("e2", "t1", start.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteTrip(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}

	if _, err := repo.GetTrip(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("trip still present: %v", err)
	}
	if _, err := repo.GetExpense(ctx, "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expense e1 still present: %v", err)
	}

	expenses, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(expenses) != 0 {
		t.Errorf("expected no expenses, got %d", len(expenses))
	}
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.GetTrip(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTrip: %v", err)
	}
	if err := repo.UpdateTrip(ctx, testTrip("missing", time.Now())); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTrip: %v", err)
	}
	if err := repo.DeleteExpense(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteExpense: %v", err)
	}
}
