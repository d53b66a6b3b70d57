package services

import "math"

const (
	// DefaultHourlyRate applies when a tutor has not set a rate yet.
	DefaultHourlyRate = 50.0

	// MinimumCharge is the floor below which the gateway rejects charges.
	MinimumCharge = 0.50

	// PlatformFeeRate is the share of a booking retained by the marketplace.
	PlatformFeeRate = 0.15
)

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// SessionPrice computes a booking's price from the tutor's hourly rate and
// the session duration in hours, clamped to the minimum charge.
func SessionPrice(hourlyRate *float64, duration float64) float64 {
	rate := DefaultHourlyRate
	if hourlyRate != nil && *hourlyRate > 0 {
		rate = *hourlyRate
	}
	return Round2(math.Max(rate*duration, MinimumCharge))
}

// ChargeAmountCents converts a price to the gateway's minor currency unit.
func ChargeAmountCents(price float64) int64 {
	return int64(math.Round(math.Max(price, MinimumCharge) * 100))
}

// TutorPayout is the tutor's share of a booking after the platform fee.
func TutorPayout(amount float64) float64 {
	return Round2(amount * (1 - PlatformFeeRate))
}
