package core

import "math"

// VatRateID identifies an entry in the German VAT rate table.
type VatRateID string

const (
	VatRate0  VatRateID = "vat_0"
	VatRate7  VatRateID = "vat_7"
	VatRate19 VatRateID = "vat_19"
)

// DefaultVatRateID is the fallback for unknown or missing rate ids. A
// corrupted or legacy record should still produce a reasonable report, so
// unresolvable ids map to the regular rate instead of failing. The default
// is named by identifier, never by table position.
const DefaultVatRateID = VatRate19

// VatRate is one entry of the static rate table.
type VatRate struct {
	ID      VatRateID
	Percent int
	Label   string
}

var vatRates = map[VatRateID]VatRate{
	VatRate0:  {ID: VatRate0, Percent: 0, Label: "0% (steuerfrei)"},
	VatRate7:  {ID: VatRate7, Percent: 7, Label: "7% (ermäßigt)"},
	VatRate19: {ID: VatRate19, Percent: 19, Label: "19% (regulär)"},
}

// VatRateIDs lists the table in ascending rate order, for bucketed
// reporting.
func VatRateIDs() []VatRateID {
	return []VatRateID{VatRate0, VatRate7, VatRate19}
}

// VatRateByID resolves a rate id, falling back to DefaultVatRateID for
// anything not in the table.
func VatRateByID(id VatRateID) VatRate {
	if rate, ok := vatRates[id]; ok {
		return rate
	}
	return vatRates[DefaultVatRateID]
}

// KnownVatRateID reports whether id resolves without the default fallback.
func KnownVatRateID(id VatRateID) bool {
	_, ok := vatRates[id]
	return ok
}

// NetAmount derives the net portion of a gross amount:
// net = gross / (1 + rate/100), rounded half-up to cents. Gross amounts are
// expected to be non-negative; callers validate before calling.
func NetAmount(gross Money, id VatRateID) Money {
	rate := VatRateByID(id)
	net := float64(gross.Cents) / (1 + float64(rate.Percent)/100)
	return Money{Cents: int64(math.Round(net))}
}

// VatAmount is the tax portion, gross minus net. Because both operands are
// cents, net + vat always reassembles gross exactly.
func VatAmount(gross Money, id VatRateID) Money {
	return gross.Sub(NetAmount(gross, id))
}
