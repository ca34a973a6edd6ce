package core

import (
	"math"
	"strconv"
	"time"
)

// German domestic meal allowance rates (Verpflegungspauschalen), § 9 Abs. 4a
// EStG, valid 2024/2025. Fixed at compile time: a stored trip keeps the
// amounts it was computed with even if the statute changes later.
var (
	FullDayAllowance      = Money{Cents: 2800} // 24h or more absent
	PartialDayAllowance   = Money{Cents: 1400} // more than 8h absent
	ArrivalDayAllowance   = Money{Cents: 1400} // first day of a multi-day trip
	DepartureDayAllowance = Money{Cents: 1400} // last day of a multi-day trip
)

// AllowanceKind classifies a calendar day of a trip for per-diem purposes.
type AllowanceKind string

const (
	AllowanceNone      AllowanceKind = "none"      // single day, 8h or less
	AllowancePartial   AllowanceKind = "partial"   // single day, more than 8h
	AllowanceFull      AllowanceKind = "full"      // full calendar day absent
	AllowanceArrival   AllowanceKind = "arrival"   // Anreisetag
	AllowanceDeparture AllowanceKind = "departure" // Abreisetag
)

// Label returns the German label shown on reports.
func (k AllowanceKind) Label() string {
	switch k {
	case AllowanceNone:
		return "Unter 8 Stunden"
	case AllowancePartial:
		return "Mehr als 8 Stunden"
	case AllowanceFull:
		return "Ganzer Tag"
	case AllowanceArrival:
		return "Anreisetag"
	case AllowanceDeparture:
		return "Abreisetag"
	}
	return string(k)
}

// AllowanceDay is the per-diem entry for one calendar day of a trip. The
// amount follows from the kind alone.
type AllowanceDay struct {
	Date   time.Time     `json:"date"`
	Kind   AllowanceKind `json:"kind"`
	Amount Money         `json:"amount"`
}

// AllowanceSummary is the per-diem result for a whole trip. It is embedded
// in the trip record when the trip is created or its times change, and read
// back verbatim afterwards: statutory rate changes do not retroactively
// alter historical trips.
type AllowanceSummary struct {
	TotalHours   float64        `json:"total_hours"`
	CalendarDays int            `json:"calendar_days"`
	Breakdown    []AllowanceDay `json:"breakdown"`
	TotalAmount  Money          `json:"total_amount"`
}

// AbsenceHours returns the absence duration in hours, unrounded.
func AbsenceHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// calendarDaySpan counts the distinct local calendar dates a trip touches,
// inclusive. A trip from 23:00 to 01:00 the next day spans 2 days even
// though it lasts 2 hours. Rounding absorbs DST-shortened or -lengthened
// days.
func calendarDaySpan(start, end time.Time) int {
	startDay := dayOf(start)
	endDay := dayOf(end)
	return int(math.Round(endDay.Sub(startDay).Hours()/24)) + 1
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalculateMealAllowances partitions a trip into calendar days and assigns
// each day its statutory allowance.
//
// Callers must ensure end is after start before calling; the function is
// undefined on inverted ranges and does not validate them itself.
//
// Single calendar day: 24h or more absence pays the full-day rate, more than
// 8h the partial rate, 8h or less nothing. The boundaries are exact: 8.0h
// pays nothing, 24.0h pays the full rate.
//
// Multi-day: first day is the arrival day, last day the departure day, days
// in between are full days. A 2-day trip therefore has only an arrival and a
// departure day.
func CalculateMealAllowances(start, end time.Time) AllowanceSummary {
	totalHours := AbsenceHours(start, end)
	days := calendarDaySpan(start, end)

	var breakdown []AllowanceDay

	if days <= 1 {
		day := AllowanceDay{Date: dayOf(start)}
		switch {
		case totalHours >= 24:
			day.Kind, day.Amount = AllowanceFull, FullDayAllowance
		case totalHours > 8:
			day.Kind, day.Amount = AllowancePartial, PartialDayAllowance
		default:
			day.Kind, day.Amount = AllowanceNone, Money{}
		}
		breakdown = append(breakdown, day)
	} else {
		startDay := dayOf(start)
		for i := 0; i < days; i++ {
			day := AllowanceDay{Date: startDay.AddDate(0, 0, i)}
			switch {
			case i == 0:
				day.Kind, day.Amount = AllowanceArrival, ArrivalDayAllowance
			case i == days-1:
				day.Kind, day.Amount = AllowanceDeparture, DepartureDayAllowance
			default:
				day.Kind, day.Amount = AllowanceFull, FullDayAllowance
			}
			breakdown = append(breakdown, day)
		}
	}

	var total Money
	for _, day := range breakdown {
		total = total.Add(day.Amount)
	}

	return AllowanceSummary{
		TotalHours:   math.Round(totalHours*10) / 10,
		CalendarDays: days,
		Breakdown:    breakdown,
		TotalAmount:  total,
	}
}

// FormatAbsenceDuration renders an hour count as "X Std. Y Min.".
func FormatAbsenceDuration(hours float64) string {
	full := int(hours)
	minutes := int(math.Round((hours - float64(full)) * 60))
	if minutes == 60 {
		full++
		minutes = 0
	}
	switch {
	case full == 0:
		return strconv.Itoa(minutes) + " Min."
	case minutes == 0:
		return strconv.Itoa(full) + " Std."
	default:
		return strconv.Itoa(full) + " Std. " + strconv.Itoa(minutes) + " Min."
	}
}
