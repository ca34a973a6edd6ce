package core

import (
	"sort"
	"time"
)

// VatBucket sums all expenses that share one VAT rate, for the statutory
// summary table on reports.
type VatBucket struct {
	RateID VatRateID `json:"rate_id"`
	Gross  Money     `json:"gross"`
	Net    Money     `json:"net"`
	Vat    Money     `json:"vat"`
}

// TripReport is the aggregated view of a single trip and its expenses.
type TripReport struct {
	Trip          Trip      `json:"trip"`
	Expenses      []Expense `json:"expenses"`
	Gross         Money     `json:"gross"`
	Net           Money     `json:"net"`
	Vat           Money     `json:"vat"`
	MealAllowance Money     `json:"meal_allowance"`
	Total         Money     `json:"total"` // gross + meal allowance
}

// ReportSummary is the full fold over a set of trips and their expenses. It
// carries no state of its own and is rebuilt from stored records on every
// report generation.
type ReportSummary struct {
	TripReports         []TripReport `json:"trip_reports"`
	VatBuckets          []VatBucket  `json:"vat_buckets"`
	TotalGross          Money        `json:"total_gross"`
	TotalNet            Money        `json:"total_net"`
	TotalVat            Money        `json:"total_vat"`
	TotalMealAllowances Money        `json:"total_meal_allowances"`
	GrandTotal          Money        `json:"grand_total"`
	TripCount           int          `json:"trip_count"`
	PositionCount       int          `json:"position_count"`
}

// EndOfDay extends a date to 23:59:59.999 local time, so that date-range
// filters include the whole selected end date.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999*1e6, t.Location())
}

// TripsInRange selects trips whose [start, end] interval overlaps the
// report range, inclusive on both ends. Overlap, not containment: a trip
// partially inside the range is included in full. The result is sorted by
// trip start.
func TripsInRange(trips []Trip, rangeStart, rangeEnd time.Time) []Trip {
	endOfDay := EndOfDay(rangeEnd)

	var filtered []Trip
	for _, trip := range trips {
		if !trip.StartDateTime.After(endOfDay) && !trip.EndDateTime.Before(rangeStart) {
			filtered = append(filtered, trip)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].StartDateTime.Before(filtered[j].StartDateTime)
	})
	return filtered
}

// BuildReport folds trips and their expenses into summary totals. Expenses
// whose trip is not in the given set are ignored; stored gross/net/VAT
// values are summed as-is with the legacy fallbacks from Expense.
func BuildReport(trips []Trip, expenses []Expense) ReportSummary {
	byTrip := make(map[string][]Expense, len(trips))
	for _, e := range expenses {
		byTrip[e.TripID] = append(byTrip[e.TripID], e)
	}

	buckets := make(map[VatRateID]*VatBucket, 3)
	for _, id := range VatRateIDs() {
		buckets[id] = &VatBucket{RateID: id}
	}

	summary := ReportSummary{TripCount: len(trips)}

	for _, trip := range trips {
		tripExpenses := byTrip[trip.ID]
		sort.Slice(tripExpenses, func(i, j int) bool {
			return tripExpenses[i].Date.Before(tripExpenses[j].Date)
		})

		tr := TripReport{Trip: trip, Expenses: tripExpenses}
		for _, e := range tripExpenses {
			gross := e.EffectiveGross()
			net := e.EffectiveNet()
			vat := e.EffectiveVat()

			tr.Gross = tr.Gross.Add(gross)
			tr.Net = tr.Net.Add(net)
			tr.Vat = tr.Vat.Add(vat)

			bucket := buckets[e.EffectiveVatRateID()]
			bucket.Gross = bucket.Gross.Add(gross)
			bucket.Net = bucket.Net.Add(net)
			bucket.Vat = bucket.Vat.Add(vat)
		}
		if trip.MealAllowances != nil {
			tr.MealAllowance = trip.MealAllowances.TotalAmount
		}
		tr.Total = tr.Gross.Add(tr.MealAllowance)

		summary.TripReports = append(summary.TripReports, tr)
		summary.PositionCount += len(tripExpenses)
		summary.TotalGross = summary.TotalGross.Add(tr.Gross)
		summary.TotalNet = summary.TotalNet.Add(tr.Net)
		summary.TotalVat = summary.TotalVat.Add(tr.Vat)
		summary.TotalMealAllowances = summary.TotalMealAllowances.Add(tr.MealAllowance)
	}

	for _, id := range VatRateIDs() {
		summary.VatBuckets = append(summary.VatBuckets, *buckets[id])
	}
	summary.GrandTotal = summary.TotalGross.Add(summary.TotalMealAllowances)

	return summary
}
