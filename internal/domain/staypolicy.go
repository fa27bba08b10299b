package domain

import "time"

const DefaultMaxNights = 3

// ExceedsMaxStay reports whether a non-privileged stay runs past the last
// permitted day, checkIn + maxNights, taken up to its final millisecond.
func ExceedsMaxStay(checkIn, checkOut time.Time, privileged bool, maxNights int) bool {
	if privileged {
		return false
	}
	upper := EndOfDay(NormalizeDate(checkIn).AddDate(0, 0, maxNights))
	return checkOut.After(upper)
}
