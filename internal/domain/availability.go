package domain

import "time"

// FindOverlap returns the first blocked date, in stored order, that falls
// within [checkIn, checkOut] inclusive on both ends. Blocked dates are
// normalized to their UTC day before comparison.
func FindOverlap(blocked []time.Time, checkIn, checkOut time.Time) (time.Time, bool) {
	for _, d := range blocked {
		d = NormalizeDate(d)
		if WithinInclusive(d, checkIn, checkOut) {
			return d, true
		}
	}
	return time.Time{}, false
}
