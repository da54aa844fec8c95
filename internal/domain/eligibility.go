package domain

// IsValidDuration reports whether durationHours is a bookable session length.
func IsValidDuration(durationHours int) bool {
	return durationHours >= MinDurationHours && durationHours <= MaxDurationHours
}

// FilterEligibleWindows returns the windows that can host a session of
// durationHours, in their original order. Windows are never split.
// An empty result means no availability and is not an error.
func FilterEligibleWindows(windows []TimeWindow, durationHours int) []TimeWindow {
	eligible := make([]TimeWindow, 0, len(windows))
	for _, w := range windows {
		if w.CanHost(durationHours) {
			eligible = append(eligible, w)
		}
	}
	return eligible
}

// ContainsWindow reports whether windows has one with exactly the same bounds.
func ContainsWindow(windows []TimeWindow, window TimeWindow) bool {
	for _, w := range windows {
		if w.Equal(window) {
			return true
		}
	}
	return false
}
