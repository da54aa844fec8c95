package domain

import (
	"fmt"
	"strconv"
)

// ResolveRate returns the hourly rate for mode.
//
// A bookable ModeRate wins. Otherwise the legacy rate of the mapped kind is
// used when positive: online -> Online, home-visit -> Individual, group -> Group.
func ResolveRate(o *SubjectOffering, mode TeachingMode) (float64, error) {
	if r, ok := o.ModeRate(mode); ok && r.IsBookable() {
		return r.HourlyRate, nil
	}

	if legacy := o.LegacyRates.RateFor(mode); legacy > 0 {
		return legacy, nil
	}

	return 0, fmt.Errorf("%w: mode %s is not offered", ErrModeUnavailable, mode)
}

// ComputeTotal returns rate * durationHours without rounding.
func ComputeTotal(hourlyRate float64, durationHours int) float64 {
	return hourlyRate * float64(durationHours)
}

// FormatPrice rounds a price to two decimals for presentation.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
