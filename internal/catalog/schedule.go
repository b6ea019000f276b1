package catalog

import "time"

// Publication window arithmetic. Kept pure so the derivation can be applied
// identically by the store, the moderation gate, and every read path.

// PublicationWindow computes the window for a record approved at start with
// the given duration snapshot. AddDate normalizes month-end overflow the Go
// way (Jan 31 + 1 month = Mar 2/3), which is acceptable for month-granular
// subscriptions.
func PublicationWindow(start time.Time, durationMonths int) (time.Time, time.Time) {
	return start, start.AddDate(0, durationMonths, 0)
}

// WindowExpired reports whether a window ending at end has lapsed at now.
// A nil end date means the record was never approved and cannot expire.
func WindowExpired(end *time.Time, now time.Time) bool {
	return end != nil && now.After(*end)
}
