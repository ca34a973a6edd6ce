package core

import (
	"errors"
	"strings"
	"time"
)

// TripStatus is the lifecycle state of a trip. The German values are the
// persisted identifiers.
type TripStatus string

const (
	StatusDraft     TripStatus = "entwurf"
	StatusCompleted TripStatus = "abgeschlossen"
	StatusSubmitted TripStatus = "eingereicht"
	StatusApproved  TripStatus = "genehmigt"
	StatusRejected  TripStatus = "abgelehnt"
)

func (s TripStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusCompleted, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Label returns the German display label.
func (s TripStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Entwurf"
	case StatusCompleted:
		return "Abgeschlossen"
	case StatusSubmitted:
		return "Eingereicht"
	case StatusApproved:
		return "Genehmigt"
	case StatusRejected:
		return "Abgelehnt"
	}
	return string(s)
}

// statusTransitions lists the allowed forward edges of the trip state
// machine. A rejected trip goes back to draft for rework.
var statusTransitions = map[TripStatus][]TripStatus{
	StatusDraft:     {StatusCompleted},
	StatusCompleted: {StatusSubmitted, StatusDraft},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusDraft},
}

// CanTransition reports whether a status change is allowed.
func (s TripStatus) CanTransition(to TripStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

var (
	ErrEmptyName        = errors.New("empty trip name")
	ErrEndBeforeStart   = errors.New("end must be after start")
	ErrMissingTrip      = errors.New("expense requires a trip")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidDirection = errors.New("invalid trip direction")
	ErrInvalidDistance  = errors.New("invalid distance")
	ErrInvalidStatus    = errors.New("invalid trip status")
	ErrStatusTransition = errors.New("status transition not allowed")
)

// Trip is a business trip. MealAllowances is an embedded, frozen aggregate:
// it is recomputed and overwritten whenever the start or end time changes,
// and never re-derived from stored data on read.
type Trip struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Destination    string           `json:"destination,omitempty"`
	StartDateTime  time.Time        `json:"start_date_time"`
	EndDateTime    time.Time        `json:"end_date_time"`
	Status         TripStatus       `json:"status"`
	MealAllowances *AllowanceSummary `json:"meal_allowances,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Validate checks the invariants that must hold before the trip reaches the
// allowance calculator: in particular end strictly after start, because the
// calculator itself does not guard against inverted ranges.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.StartDateTime.IsZero() || t.EndDateTime.IsZero() {
		return errors.New("trip start and end must be set")
	}
	if !t.EndDateTime.After(t.StartDateTime) {
		return ErrEndBeforeStart
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Expense is a single cost position on a trip.
//
// GrossAmount, NetAmount and VatAmount are derived once when the expense is
// saved and stored redundantly; reports read the stored values and never
// recompute them, so historical reports stay stable even if rate resolution
// changes later. Amount is the legacy undifferentiated field kept for
// records written before the gross/net split existed.
type Expense struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	Category    Category  `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	GrossAmount Money     `json:"gross_amount"`
	NetAmount   Money     `json:"net_amount"`
	VatAmount   Money     `json:"vat_amount"`
	Amount      Money     `json:"amount"` // legacy field, superseded by GrossAmount
	VatRateID   VatRateID `json:"vat_rate_id"`

	// Kilometer category only. DistanceKm and DurationMinutes are the
	// one-way values; round trips are doubled in the amount derivation
	// only, never in the stored distance.
	DistanceKm      float64       `json:"distance_km,omitempty"`
	DurationMinutes int           `json:"duration_minutes,omitempty"`
	Direction       TripDirection `json:"direction,omitempty"`
	StartAddress    string        `json:"start_address,omitempty"`
	EndAddress      string        `json:"end_address,omitempty"`
	LicensePlate    string        `json:"license_plate,omitempty"`
	ManualDistance  bool          `json:"manual_distance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.TripID) == "" {
		return ErrMissingTrip
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if err := e.GrossAmount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return errors.New("expense date must be set")
	}
	if e.Category == CategoryKilometer {
		if e.DistanceKm <= 0 {
			return ErrInvalidDistance
		}
		if e.Direction != "" && !e.Direction.Valid() {
			return ErrInvalidDirection
		}
	}
	return nil
}

// EffectiveGross prefers the differentiated gross amount and falls back to
// the legacy amount field for old records.
func (e Expense) EffectiveGross() Money {
	if !e.GrossAmount.IsZero() {
		return e.GrossAmount
	}
	return e.Amount
}

// EffectiveNet falls back to the gross amount when no net was stored; a
// legacy record without a VAT split counts fully as net.
func (e Expense) EffectiveNet() Money {
	if !e.NetAmount.IsZero() {
		return e.NetAmount
	}
	return e.EffectiveGross()
}

// EffectiveVat is zero for records without a stored VAT amount. The stored
// value is authoritative; it is never recomputed from the gross.
func (e Expense) EffectiveVat() Money {
	return e.VatAmount
}

// EffectiveVatRateID resolves missing or unknown ids to the default bucket.
func (e Expense) EffectiveVatRateID() VatRateID {
	if KnownVatRateID(e.VatRateID) {
		return e.VatRateID
	}
	return DefaultVatRateID
}
