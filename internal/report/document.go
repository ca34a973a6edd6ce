// Package report renders travel expense reports (Reisekostenabrechnung)
// as text-block documents and PDFs, and mails them on request.
package report

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"reisekosten/internal/core"
)

// Document is a rendered report: a header, one block per content unit
// and a totals footer. Blocks are never split across PDF pages.
type Document struct {
	ID     string
	Title  string
	Header string
	Blocks []string
	Footer string
}

var printer = message.NewPrinter(language.German)

// euros formats a money value in German number format, e.g. "1.234,56 EUR".
func euros(m core.Money) string {
	return printer.Sprintf("%.2f EUR", m.Euros())
}

// formatDate formats a date as DD.MM.YYYY (German format).
func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// shortID generates a random alphanumeric ID of the given length.
// Used for document reference numbers (Belegnummer).
func shortID(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

	b := make([]byte, length)
	rand.Read(b)

	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}

	return string(b)
}

// DocumentID builds a reference number like RK-2024-03-A1B2.
func DocumentID(rangeStart time.Time) string {
	return fmt.Sprintf("RK-%04d-%02d-%s", rangeStart.Year(), rangeStart.Month(), shortID(4))
}

// BuildDocument turns a report summary into a printable document.
func BuildDocument(summary core.ReportSummary, rangeStart, rangeEnd, issuedAt time.Time) Document {
	doc := Document{
		ID:    DocumentID(rangeStart),
		Title: fmt.Sprintf("Reisekostenabrechnung %s - %s", formatDate(rangeStart), formatDate(rangeEnd)),
	}

	doc.Header = buildHeader(doc.ID, doc.Title, issuedAt)

	for _, tr := range summary.TripReports {
		doc.Blocks = append(doc.Blocks, buildTripHeader(tr.Trip))
		for _, e := range tr.Expenses {
			doc.Blocks = append(doc.Blocks, buildExpenseEntry(e))
		}
		if tr.Trip.MealAllowances != nil && !tr.Trip.MealAllowances.TotalAmount.IsZero() {
			doc.Blocks = append(doc.Blocks, buildAllowanceEntry(*tr.Trip.MealAllowances))
		}
		doc.Blocks = append(doc.Blocks, buildTripFooter(tr))
	}

	doc.Footer = buildFooter(summary)
	return doc
}

func buildHeader(id, title string, issuedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%66s%s\n", "DATUM:   ", formatDate(issuedAt))
	fmt.Fprintf(&b, "%66s%s\n", "BELEGNR: ", id)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", title)
	b.WriteString("===========================================\n\n")

	return b.String()
}

func buildTripHeader(t core.Trip) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reise: %s\n", t.Name)
	if t.Destination != "" {
		fmt.Fprintf(&b, "Ziel: %s\n", t.Destination)
	}
	fmt.Fprintf(&b, "Zeitraum: %s - %s\n", formatDate(t.StartDateTime), formatDate(t.EndDateTime))
	fmt.Fprintf(&b, "Status: %s\n\n", t.Status.Label())

	return b.String()
}

func buildExpenseEntry(e core.Expense) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s", formatDate(e.Date), e.Category.Label())
	if e.Description != "" {
		fmt.Fprintf(&b, ": %s", e.Description)
	}
	b.WriteString("\n")

	if e.Category == core.CategoryKilometer {
		distance := core.EffectiveDistance(e.DistanceKm, e.Direction)
		fmt.Fprintf(&b, "  Fahrstrecke: %s km", printer.Sprintf("%.1f", distance))
		if e.Direction == core.DirectionRoundTrip {
			b.WriteString(" (Hin- und Rückfahrt)")
		}
		b.WriteString("\n")
		if e.StartAddress != "" && e.EndAddress != "" {
			fmt.Fprintf(&b, "  Von: %s\n  Nach: %s\n", e.StartAddress, e.EndAddress)
		}
		fmt.Fprintf(&b, "  Fahrkosten (%s km x 0,30 EUR): %s\n\n",
			printer.Sprintf("%.1f", distance), euros(e.EffectiveGross()))
		return b.String()
	}

	rate := core.VatRateByID(e.EffectiveVatRateID())
	fmt.Fprintf(&b, "  Brutto: %s (%s: %s, Netto: %s)\n\n",
		euros(e.EffectiveGross()), rate.Label, euros(e.EffectiveVat()), euros(e.EffectiveNet()))

	return b.String()
}

func buildAllowanceEntry(summary core.AllowanceSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Verpflegungsmehraufwand (Abwesenheit %s):\n", core.FormatAbsenceDuration(summary.TotalHours))
	for _, day := range summary.Breakdown {
		if day.Kind == core.AllowanceNone {
			continue
		}
		fmt.Fprintf(&b, "  %s  %s: %s\n", day.Date, day.Kind.Label(), euros(day.Amount))
	}
	fmt.Fprintf(&b, "  Summe: %s\n\n", euros(summary.TotalAmount))

	return b.String()
}

func buildTripFooter(tr core.TripReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Zwischensumme %s: %s\n", tr.Trip.Name, euros(tr.Total))
	b.WriteString("-------------------------------------------\n\n")

	return b.String()
}

func buildFooter(summary core.ReportSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reisen: %d, Positionen: %d\n\n", summary.TripCount, summary.PositionCount)

	for _, bucket := range summary.VatBuckets {
		if bucket.Gross.IsZero() {
			continue
		}
		rate := core.VatRateByID(bucket.RateID)
		fmt.Fprintf(&b, "%s: Brutto %s, Netto %s, USt %s\n",
			rate.Label, euros(bucket.Gross), euros(bucket.Net), euros(bucket.Vat))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Belege gesamt:           %s\n", euros(summary.TotalGross))
	fmt.Fprintf(&b, "Verpflegungsmehraufwand: %s\n", euros(summary.TotalMealAllowances))
	fmt.Fprintf(&b, "GESAMTBETRAG: %s\n", euros(summary.GrandTotal))

	return b.String()
}
