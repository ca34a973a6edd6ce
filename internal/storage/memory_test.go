package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"reisekosten/internal/core"
)

func testTrip(id string, start time.Time) core.Trip {
	return core.Trip{
		ID:            id,
		Name:          "Messe Berlin",
		Destination:   "Berlin",
		StartDateTime: start,
		EndDateTime:   start.Add(30 * time.Hour),
		Status:        core.StatusDraft,
		CreatedAt:     start,
		UpdatedAt:     start,
	}
}

func testExpense(id, tripID string, date time.Time) core.Expense {
	return core.Expense{
		ID:          id,
		TripID:      tripID,
		Category:    core.CategoryUebernachtung,
		Description: "Hotel",
		Date:        date,
		GrossAmount: core.Money{Cents: 10700},
		NetAmount:   core.Money{Cents: 10000},
		VatAmount:   core.Money{Cents: 700},
		VatRateID:   core.VatRate7,
		CreatedAt:   date,
	}
}

func TestMemoryStoreTripLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

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

	if err := s.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	got, err := s.GetTrip(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.Name != trip.Name || got.Status != core.StatusDraft {
		t.Errorf("trip mismatch: %+v", got)
	}
	if got.MealAllowances == nil || got.MealAllowances.TotalAmount.Cents != 2800 {
		t.Errorf("meal allowances not persisted: %+v", got.MealAllowances)
	}

	// Mutating the returned snapshot must not leak into the store.
	got.MealAllowances.Breakdown[0].Kind = core.AllowanceFull
	again, _ := s.GetTrip(ctx, "t1")
	if again.MealAllowances.Breakdown[0].Kind != core.AllowanceArrival {
		t.Error("stored allowance breakdown was mutated through a read")
	}

	got.Status = core.StatusCompleted
	if err := s.UpdateTrip(ctx, got); err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	updated, _ := s.GetTrip(ctx, "t1")
	if updated.Status != core.StatusCompleted {
		t.Errorf("status = %s, want %s", updated.Status, core.StatusCompleted)
	}

	if err := s.DeleteTrip(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	if _, err := s.GetTrip(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreDeleteTripCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	start := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	if err := s.CreateTrip(ctx, testTrip("t1", start)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateTrip(ctx, testTrip("t2", start.AddDate(0, 1, 0))); err != nil {
		t.Fatal(err)
	}
	for i, tripID := range []string{"t1", "t1", "t2"} {
		e := testExpense(string(rune('a'+i)), tripID, start.Add(time.Duration(i)*time.Hour))
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteTrip(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}

	remaining, err := s.ListExpenses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].TripID != "t2" {
		t.Errorf("cascade delete left %+v", remaining)
	}
}

func TestMemoryStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new", "mid"} {
		offsets := []int{0, 20, 10}
		if err := s.CreateTrip(ctx, testTrip(id, base.AddDate(0, 0, offsets[i]))); err != nil {
			t.Fatal(err)
		}
	}

	trips, err := s.ListTrips(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"new", "mid", "old"}
	for i, w := range want {
		if trips[i].ID != w {
			t.Fatalf("trip order = %v, want newest first", tripIDs(trips))
		}
	}

	for i, id := range []string{"e3", "e1", "e2"} {
		offsets := []int{2, 0, 1}
		if err := s.CreateExpense(ctx, testExpense(id, "old", base.Add(time.Duration(offsets[i])*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	expenses, err := s.ListExpensesByTrip(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	wantExp := []string{"e1", "e2", "e3"}
	for i, w := range wantExp {
		if expenses[i].ID != w {
			t.Fatalf("expense %d = %s, want %s", i, expenses[i].ID, w)
		}
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetExpense(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExpense: %v", err)
	}
	if err := s.UpdateTrip(ctx, core.Trip{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTrip: %v", err)
	}
	if err := s.DeleteExpense(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteExpense: %v", err)
	}
}

func tripIDs(trips []core.Trip) []string {
	ids := make([]string, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	return ids
}
