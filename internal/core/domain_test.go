package core

import (
	"errors"
	"testing"
	"time"
)

func validTrip() Trip {
	return Trip{
		ID:            "t1",
		Name:          "Kundentermin Hamburg",
		StartDateTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		EndDateTime:   time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		Status:        StatusDraft,
	}
}

func TestTripValidate(t *testing.T) {
	if err := validTrip().Validate(); err != nil {
		t.Fatalf("valid trip rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Trip)
		wantErr error
	}{
		{"empty name", func(tr *Trip) { tr.Name = "  " }, ErrEmptyName},
		{"end equals start", func(tr *Trip) { tr.EndDateTime = tr.StartDateTime }, ErrEndBeforeStart},
		{"end before start", func(tr *Trip) {
			tr.EndDateTime = tr.StartDateTime.Add(-time.Hour)
		}, ErrEndBeforeStart},
		{"unknown status", func(tr *Trip) { tr.Status = "archiviert" }, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := validTrip()
			tt.mutate(&trip)
			err := trip.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func validExpense() Expense {
	return Expense{
		ID:          "e1",
		TripID:      "t1",
		Category:    CategoryVerpflegung,
		Date:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		GrossAmount: Money{Cents: 2380},
		NetAmount:   Money{Cents: 2000},
		VatAmount:   Money{Cents: 380},
		VatRateID:   VatRate19,
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"missing trip", func(e *Expense) { e.TripID = "" }, ErrMissingTrip},
		{"unknown category", func(e *Expense) { e.Category = "bewirtung" }, ErrUnknownCategory},
		{"zero amount", func(e *Expense) { e.GrossAmount = Money{} }, ErrInvalidAmount},
		{"kilometer without distance", func(e *Expense) {
			e.Category = CategoryKilometer
			e.DistanceKm = 0
		}, ErrInvalidDistance},
		{"kilometer bad direction", func(e *Expense) {
			e.Category = CategoryKilometer
			e.DistanceKm = 10
			e.Direction = "zigzag"
		}, ErrInvalidDirection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to TripStatus }{
		{StatusDraft, StatusCompleted},
		{StatusCompleted, StatusSubmitted},
		{StatusCompleted, StatusDraft},
		{StatusSubmitted, StatusApproved},
		{StatusSubmitted, StatusRejected},
		{StatusRejected, StatusDraft},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to TripStatus }{
		{StatusDraft, StatusApproved},
		{StatusApproved, StatusDraft},
		{StatusSubmitted, StatusDraft},
		{StatusDraft, StatusDraft},
	}
	for _, tr := range forbidden {
		if tr.from.CanTransition(tr.to) {
			t.Errorf("%s -> %s should be forbidden", tr.from, tr.to)
		}
	}
}

func TestEffectiveAmountFallbacks(t *testing.T) {
	legacy := Expense{Amount: Money{Cents: 1550}}
	if got := legacy.EffectiveGross(); got.Cents != 1550 {
		t.Errorf("EffectiveGross = %d, want legacy 1550", got.Cents)
	}
	if got := legacy.EffectiveNet(); got.Cents != 1550 {
		t.Errorf("EffectiveNet = %d, want 1550", got.Cents)
	}
	if got := legacy.EffectiveVat(); !got.IsZero() {
		t.Errorf("EffectiveVat = %d, want 0", got.Cents)
	}
	if got := legacy.EffectiveVatRateID(); got != DefaultVatRateID {
		t.Errorf("EffectiveVatRateID = %s, want %s", got, DefaultVatRateID)
	}

	current := validExpense()
	if got := current.EffectiveGross(); got != current.GrossAmount {
		t.Errorf("EffectiveGross = %d, want stored gross", got.Cents)
	}
	if got := current.EffectiveNet(); got != current.NetAmount {
		t.Errorf("EffectiveNet = %d, want stored net", got.Cents)
	}
}
