package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel_booking/internal/domain"
)

// errStaleBooking means the booking moved to another hotel between the
// unlocked read and taking the locks; the operation is retried.
var errStaleBooking = errors.New("booking changed hotel while locking")

const lockAttempts = 3

type BookingService struct {
	store     domain.Store
	notifier  domain.Notifier
	maxNights int
}

func NewBookingService(s domain.Store, n domain.Notifier, maxNights int) *BookingService {
	if maxNights < 1 {
		maxNights = domain.DefaultMaxNights
	}
	return &BookingService{store: s, notifier: n, maxNights: maxNights}
}

func (s *BookingService) Create(ctx context.Context, r domain.Requester, hotelID int64, checkIn, checkOut time.Time) (domain.BookingView, error) {
	checkIn, checkOut = domain.NormalizeDate(checkIn), domain.NormalizeDate(checkOut)

	var (
		created domain.Booking
		hotel   domain.Hotel
	)
	err := s.store.WithHotelLock(ctx, []int64{hotelID}, func(ctx context.Context, tx domain.HotelTx) error {
		h, err := loadHotel(ctx, tx, hotelID)
		if err != nil {
			return err
		}
		if err := domain.ValidateStay(h, checkIn, checkOut, r, s.maxNights); err != nil {
			return err
		}
		b, err := tx.SaveBooking(ctx, domain.Booking{UserID: r.ID, HotelID: hotelID, CheckIn: checkIn, CheckOut: checkOut})
		if err != nil {
			return err
		}
		created, hotel = b, h
		return nil
	})
	if err != nil {
		return domain.BookingView{}, err
	}

	s.notify(ctx, hotel, "Booking created", fmt.Sprintf(
		"A new booking #%d has been made at %s.\nCheck-in: %s\nCheck-out: %s\n",
		created.ID, hotel.Name, domain.LongDate(created.CheckIn), domain.LongDate(created.CheckOut)))
	return domain.BookingView{Booking: created, Hotel: hotel.Summary()}, nil
}

func (s *BookingService) Get(ctx context.Context, r domain.Requester, id int64) (domain.BookingView, error) {
	v, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.BookingView{}, bookingErr(err, id)
	}
	if !v.OwnedBy(r) && !r.IsPrivileged() {
		return domain.BookingView{}, domain.Forbidden("User %d is not authorized to view this booking", r.ID)
	}
	return v, nil
}

// List returns every booking to privileged requesters and only their own
// to everyone else.
func (s *BookingService) List(ctx context.Context, r domain.Requester) ([]domain.BookingView, error) {
	var f domain.BookingFilter
	if !r.IsPrivileged() {
		uid := r.ID
		f.UserID = &uid
	}
	return s.store.ListBookings(ctx, f)
}

func (s *BookingService) Update(ctx context.Context, r domain.Requester, id int64, ch domain.BookingChange) (domain.BookingView, error) {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		current, err := s.authorize(ctx, r, id, "update")
		if err != nil {
			return domain.BookingView{}, err
		}
		targetID, _, _ := ch.Effective(current)

		var (
			updated domain.Booking
			hotel   domain.Hotel
		)
		err = s.store.WithHotelLock(ctx, []int64{current.HotelID, targetID}, func(ctx context.Context, tx domain.HotelTx) error {
			b, err := tx.LoadBooking(ctx, id)
			if err != nil {
				return bookingErr(err, id)
			}
			if b.HotelID != current.HotelID {
				return errStaleBooking
			}
			hotelID, checkIn, checkOut := ch.Effective(b)
			h, err := loadHotel(ctx, tx, hotelID)
			if err != nil {
				return err
			}
			if err := domain.ValidateStay(h, checkIn, checkOut, r, s.maxNights); err != nil {
				return err
			}
			b.HotelID, b.CheckIn, b.CheckOut = hotelID, checkIn, checkOut
			if updated, err = tx.SaveBooking(ctx, b); err != nil {
				return err
			}
			hotel = h
			return nil
		})
		if errors.Is(err, errStaleBooking) {
			continue
		}
		if err != nil {
			return domain.BookingView{}, err
		}

		s.notify(ctx, hotel, "Booking updated", fmt.Sprintf(
			"Booking #%d at %s has been changed.\nCheck-in: %s\nCheck-out: %s\n",
			updated.ID, hotel.Name, domain.LongDate(updated.CheckIn), domain.LongDate(updated.CheckOut)))
		return domain.BookingView{Booking: updated, Hotel: hotel.Summary()}, nil
	}
	return domain.BookingView{}, fmt.Errorf("update booking %d: %w", id, errStaleBooking)
}

func (s *BookingService) Delete(ctx context.Context, r domain.Requester, id int64) error {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		current, err := s.authorize(ctx, r, id, "delete")
		if err != nil {
			return err
		}

		var (
			removed domain.Booking
			hotel   domain.Hotel
		)
		err = s.store.WithHotelLock(ctx, []int64{current.HotelID}, func(ctx context.Context, tx domain.HotelTx) error {
			b, err := tx.LoadBooking(ctx, id)
			if err != nil {
				return bookingErr(err, id)
			}
			if b.HotelID != current.HotelID {
				return errStaleBooking
			}
			h, err := loadHotel(ctx, tx, b.HotelID)
			if err != nil {
				return err
			}
			if err := tx.DeleteBooking(ctx, id); err != nil {
				return bookingErr(err, id)
			}
			removed, hotel = b, h
			return nil
		})
		if errors.Is(err, errStaleBooking) {
			continue
		}
		if err != nil {
			return err
		}

		s.notify(ctx, hotel, "Booking cancelled", fmt.Sprintf(
			"Booking #%d at %s has been cancelled.\nCheck-in: %s\nCheck-out: %s\n",
			removed.ID, hotel.Name, domain.LongDate(removed.CheckIn), domain.LongDate(removed.CheckOut)))
		return nil
	}
	return fmt.Errorf("delete booking %d: %w", id, errStaleBooking)
}

// authorize loads the booking and rejects anyone but its owner or a
// privileged requester, before any date is looked at.
func (s *BookingService) authorize(ctx context.Context, r domain.Requester, id int64, verb string) (domain.Booking, error) {
	v, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, bookingErr(err, id)
	}
	if !v.OwnedBy(r) && !r.IsPrivileged() {
		return domain.Booking{}, domain.Forbidden("User %d is not authorized to %s this booking", r.ID, verb)
	}
	return v.Booking, nil
}

// notify runs after commit and is detached from the request's cancellation.
func (s *BookingService) notify(ctx context.Context, h domain.Hotel, subject, body string) {
	if s.notifier == nil || h.Email == "" {
		return
	}
	s.notifier.Notify(context.WithoutCancel(ctx), h.Email, subject, body)
}

func loadHotel(ctx context.Context, tx domain.HotelTx, id int64) (domain.Hotel, error) {
	h, err := tx.LoadHotel(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Hotel{}, domain.NotFound("No hotel with the id of %d", id)
	}
	return h, err
}

func bookingErr(err error, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("No booking with the id of %d", id)
	}
	return err
}
