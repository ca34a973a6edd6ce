package core

// KilometerRate is the flat reimbursement rate for private car use, in EUR
// per kilometer (Kilometerpauschale).
const KilometerRate = 0.30

// TripDirection states whether a computed driving distance covers one way or
// the round trip.
type TripDirection string

const (
	DirectionOneWay    TripDirection = "oneway"
	DirectionRoundTrip TripDirection = "roundtrip"
)

func (d TripDirection) Valid() bool {
	return d == DirectionOneWay || d == DirectionRoundTrip
}

func (d TripDirection) multiplier() float64 {
	if d == DirectionRoundTrip {
		return 2
	}
	return 1
}

// EffectiveDistance applies the direction multiplier to a one-way distance.
// Routing results are always stored one-way; the doubling happens here and
// nowhere else, so toggling the direction can never double-count.
func EffectiveDistance(oneWayKm float64, d TripDirection) float64 {
	return oneWayKm * d.multiplier()
}

// EffectiveDuration applies the direction multiplier to a one-way driving
// duration in minutes.
func EffectiveDuration(oneWayMinutes int, d TripDirection) int {
	return int(float64(oneWayMinutes) * d.multiplier())
}

// MileageReimbursement computes the reimbursement for a driven distance,
// rounded to cents. How the distance was obtained (routing service or manual
// entry) is not this function's concern.
func MileageReimbursement(distanceKm, ratePerKm float64) Money {
	return MoneyFromEuros(distanceKm * ratePerKm)
}
