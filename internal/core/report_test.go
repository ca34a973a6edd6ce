package core

import (
	"testing"
	"time"
)

func testTrip(id string, start, end time.Time) Trip {
	summary := CalculateMealAllowances(start, end)
	return Trip{
		ID:             id,
		Name:           "Messe " + id,
		StartDateTime:  start,
		EndDateTime:    end,
		Status:         StatusDraft,
		MealAllowances: &summary,
	}
}

func TestBuildReportTotals(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 3, 17, 0, 0, 0, time.UTC)
	trip := testTrip("t1", start, end) // meal allowances: 56 EUR

	expenses := []Expense{
		{
			ID: "e1", TripID: "t1", Category: CategoryUebernachtung,
			Date:        start.AddDate(0, 0, 1),
			GrossAmount: Money{Cents: 10700},
			NetAmount:   Money{Cents: 10000},
			VatAmount:   Money{Cents: 700},
			VatRateID:   VatRate7,
		},
		{
			ID: "e2", TripID: "t1", Category: CategoryVerpflegung,
			Date:        start,
			GrossAmount: Money{Cents: 2380},
			NetAmount:   Money{Cents: 2000},
			VatAmount:   Money{Cents: 380},
			VatRateID:   VatRate19,
		},
	}

	got := BuildReport([]Trip{trip}, expenses)

	if got.TripCount != 1 || got.PositionCount != 2 {
		t.Fatalf("counts = %d trips, %d positions; want 1, 2", got.TripCount, got.PositionCount)
	}
	if got.TotalGross.Cents != 13080 {
		t.Errorf("totalGross = %d, want 13080", got.TotalGross.Cents)
	}
	if got.TotalNet.Cents != 12000 {
		t.Errorf("totalNet = %d, want 12000", got.TotalNet.Cents)
	}
	if got.TotalVat.Cents != 1080 {
		t.Errorf("totalVat = %d, want 1080", got.TotalVat.Cents)
	}
	if got.TotalMealAllowances.Cents != 5600 {
		t.Errorf("totalMealAllowances = %d, want 5600", got.TotalMealAllowances.Cents)
	}
	if got.GrandTotal.Cents != 13080+5600 {
		t.Errorf("grandTotal = %d, want %d", got.GrandTotal.Cents, 13080+5600)
	}

	// Expenses inside a trip report are ordered by date.
	tr := got.TripReports[0]
	if tr.Expenses[0].ID != "e2" || tr.Expenses[1].ID != "e1" {
		t.Errorf("trip expenses not sorted by date: %s, %s", tr.Expenses[0].ID, tr.Expenses[1].ID)
	}
	if tr.Total.Cents != 13080+5600 {
		t.Errorf("trip total = %d, want %d", tr.Total.Cents, 13080+5600)
	}
}

func TestBuildReportLegacyAmountFallback(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	trip := testTrip("t1", start, start.Add(4*time.Hour))

	// A record written before the gross/net split: only the legacy amount
	// field is set.
	legacy := Expense{
		ID: "old", TripID: "t1", Category: CategorySonstiges,
		Date:   start,
		Amount: Money{Cents: 1550},
	}

	got := BuildReport([]Trip{trip}, []Expense{legacy})

	if got.TotalGross.Cents != 1550 {
		t.Errorf("totalGross = %d, want 1550", got.TotalGross.Cents)
	}
	// Without a stored net the gross counts fully as net; missing VAT is 0.
	if got.TotalNet.Cents != 1550 {
		t.Errorf("totalNet = %d, want 1550", got.TotalNet.Cents)
	}
	if got.TotalVat.Cents != 0 {
		t.Errorf("totalVat = %d, want 0", got.TotalVat.Cents)
	}
}

func TestBuildReportWithoutAllowanceSnapshot(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	trip := testTrip("t1", start, start.Add(30*time.Hour))
	trip.MealAllowances = nil

	expense := Expense{
		ID: "e1", TripID: "t1", Category: CategorySonstiges,
		Date:        start,
		GrossAmount: Money{Cents: 1000},
		NetAmount:   Money{Cents: 840},
		VatAmount:   Money{Cents: 160},
		VatRateID:   VatRate19,
	}

	got := BuildReport([]Trip{trip}, []Expense{expense})

	if got.TotalMealAllowances.Cents != 0 {
		t.Errorf("totalMealAllowances = %d, want 0", got.TotalMealAllowances.Cents)
	}
	if got.GrandTotal.Cents != 1000 {
		t.Errorf("grandTotal = %d, want 1000", got.GrandTotal.Cents)
	}
	if tr := got.TripReports[0]; tr.Total.Cents != 1000 {
		t.Errorf("trip total = %d, want 1000", tr.Total.Cents)
	}
}

func TestBuildReportVatBuckets(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	trip := testTrip("t1", start, start.Add(10*time.Hour))

	expenses := []Expense{
		{ID: "a", TripID: "t1", Category: CategoryFahrt, Date: start,
			GrossAmount: Money{Cents: 1070}, NetAmount: Money{Cents: 1000},
			VatAmount: Money{Cents: 70}, VatRateID: VatRate7},
		{ID: "b", TripID: "t1", Category: CategoryKilometer, Date: start,
			GrossAmount: Money{Cents: 1122}, NetAmount: Money{Cents: 1122},
			VatRateID: VatRate0, DistanceKm: 37.4},
		// Unresolvable rate id lands in the default 19% bucket.
		{ID: "c", TripID: "t1", Category: CategorySonstiges, Date: start,
			GrossAmount: Money{Cents: 500}, NetAmount: Money{Cents: 420},
			VatAmount: Money{Cents: 80}, VatRateID: "vat_99"},
	}

	got := BuildReport([]Trip{trip}, expenses)

	byID := make(map[VatRateID]VatBucket)
	for _, b := range got.VatBuckets {
		byID[b.RateID] = b
	}
	if byID[VatRate7].Gross.Cents != 1070 {
		t.Errorf("vat_7 gross = %d, want 1070", byID[VatRate7].Gross.Cents)
	}
	if byID[VatRate0].Gross.Cents != 1122 || byID[VatRate0].Vat.Cents != 0 {
		t.Errorf("vat_0 bucket = %+v", byID[VatRate0])
	}
	if byID[VatRate19].Gross.Cents != 500 || byID[VatRate19].Vat.Cents != 80 {
		t.Errorf("unknown rate not defaulted to vat_19: %+v", byID[VatRate19])
	}
}

func TestTripsInRangeOverlap(t *testing.T) {
	trip := testTrip("t1",
		time.Date(2024, 1, 30, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 2, 18, 0, 0, 0, time.UTC))

	tests := []struct {
		name       string
		rangeStart time.Time
		rangeEnd   time.Time
		want       bool
	}{
		{
			"partial overlap at range start",
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			true,
		},
		{
			"no overlap",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"trip fully inside range",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			true,
		},
		{
			"range end date inclusive to end of day",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
			true, // trip starts 08:00 on the range's last day
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TripsInRange([]Trip{trip}, tt.rangeStart, tt.rangeEnd)
			if included := len(got) == 1; included != tt.want {
				t.Errorf("included = %v, want %v", included, tt.want)
			}
		})
	}
}

func TestTripsInRangeSortsByStart(t *testing.T) {
	early := testTrip("early",
		time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 2, 18, 0, 0, 0, time.UTC))
	late := testTrip("late",
		time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 11, 18, 0, 0, 0, time.UTC))

	got := TripsInRange([]Trip{late, early},
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))

	if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
