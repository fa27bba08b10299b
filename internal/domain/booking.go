package domain

import (
	"fmt"
	"time"
)

type Booking struct {
	ID        int64
	UserID    int64
	HotelID   int64
	CheckIn   time.Time
	CheckOut  time.Time
	CreatedAt time.Time
}

func (b Booking) OwnedBy(r Requester) bool { return b.UserID == r.ID }

// BookingView is a booking with its hotel populated for reads.
type BookingView struct {
	Booking
	Hotel HotelSummary
}

type BookingFilter struct {
	UserID  *int64 // nil lists every booking
	HotelID *int64
}

// BookingChange lists the fields an update overrides; nil keeps the
// booking's current value.
type BookingChange struct {
	HotelID  *int64
	CheckIn  *time.Time
	CheckOut *time.Time
}

// Effective resolves the hotel and dates an update would produce.
func (c BookingChange) Effective(b Booking) (hotelID int64, checkIn, checkOut time.Time) {
	hotelID, checkIn, checkOut = b.HotelID, b.CheckIn, b.CheckOut
	if c.HotelID != nil {
		hotelID = *c.HotelID
	}
	if c.CheckIn != nil {
		checkIn = NormalizeDate(*c.CheckIn)
	}
	if c.CheckOut != nil {
		checkOut = NormalizeDate(*c.CheckOut)
	}
	return hotelID, checkIn, checkOut
}

// ValidateStay runs the range, availability and stay-length checks in that
// order and returns the first violation.
func ValidateStay(h Hotel, checkIn, checkOut time.Time, r Requester, maxNights int) error {
	if !Precedes(checkIn, checkOut) {
		return &Error{Kind: KindInvalidRange, Message: "Check in date must begin before check out date"}
	}
	if d, ok := FindOverlap(h.UnavailableDates, checkIn, checkOut); ok {
		return &Error{
			Kind:    KindDateConflict,
			Date:    d,
			Message: "Your booking range overlaps with hotel's unavailable dates: " + LongDate(d),
		}
	}
	if ExceedsMaxStay(checkIn, checkOut, r.IsPrivileged(), maxNights) {
		return &Error{Kind: KindStayTooLong, Message: fmt.Sprintf("User can't book more than %d nights", maxNights)}
	}
	return nil
}
