package domain

import (
	"fmt"
	"strings"
)

// TeachingMode is the way a session is delivered.
type TeachingMode string

const (
	ModeOnline    TeachingMode = "online"
	ModeHomeVisit TeachingMode = "home-visit"
	ModeGroup     TeachingMode = "group"
)

// AllTeachingModes returns the known modes.
func AllTeachingModes() []TeachingMode {
	return []TeachingMode{ModeOnline, ModeHomeVisit, ModeGroup}
}

// ParseTeachingMode parses a mode name, case-insensitive.
func ParseTeachingMode(s string) (TeachingMode, error) {
	mode := TeachingMode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: unknown teaching mode %q", ErrInvalidInput, s)
	}
	return mode, nil
}

// IsValid reports whether m is a known mode.
func (m TeachingMode) IsValid() bool {
	switch m {
	case ModeOnline, ModeHomeVisit, ModeGroup:
		return true
	default:
		return false
	}
}

func (m TeachingMode) String() string {
	return string(m)
}

// ModeRate is the hourly rate of one teaching mode.
type ModeRate struct {
	Mode       TeachingMode
	HourlyRate float64
	Enabled    bool
}

// IsBookable reports whether the mode can be booked at this rate.
func (r ModeRate) IsBookable() bool {
	return r.Enabled && r.HourlyRate > 0
}

// LegacyRates is the older flat per-kind pricing kept for offerings created
// before per-mode rates existed.
type LegacyRates struct {
	Individual float64
	Group      float64
	Online     float64
}

// RateFor maps a teaching mode to its legacy rate.
func (l *LegacyRates) RateFor(mode TeachingMode) float64 {
	if l == nil {
		return 0
	}
	switch mode {
	case ModeOnline:
		return l.Online
	case ModeHomeVisit:
		return l.Individual
	case ModeGroup:
		return l.Group
	default:
		return 0
	}
}

// ValidateModeRates checks modes are known, unique and rates non-negative.
func ValidateModeRates(rates []ModeRate) error {
	seen := make(map[TeachingMode]struct{}, len(rates))
	for _, r := range rates {
		if !r.Mode.IsValid() {
			return fmt.Errorf("%w: unknown teaching mode %q", ErrInvalidInput, r.Mode)
		}
		if _, ok := seen[r.Mode]; ok {
			return fmt.Errorf("%w: duplicate rate for mode %s", ErrInvalidInput, r.Mode)
		}
		if r.HourlyRate < 0 {
			return fmt.Errorf("%w: negative hourly rate for mode %s", ErrInvalidInput, r.Mode)
		}
		seen[r.Mode] = struct{}{}
	}
	return nil
}
