package memory

import (
	"context"

	"hotel_booking/internal/domain"
)

// tx stages writes; a nil entry marks a deletion.
type tx struct {
	s            *Store
	hotels       map[int64]*domain.Hotel
	bookings     map[int64]*domain.Booking
	dropForHotel []int64
}

func (t *tx) LoadHotel(_ context.Context, id int64) (domain.Hotel, error) {
	if h, ok := t.hotels[id]; ok {
		if h == nil {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return cloneHotel(*h), nil
	}
	return t.s.GetHotel(context.Background(), id)
}

func (t *tx) LoadBooking(_ context.Context, id int64) (domain.Booking, error) {
	if b, ok := t.bookings[id]; ok {
		if b == nil {
			return domain.Booking{}, domain.ErrNotFound
		}
		return *b, nil
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	b, ok := t.s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (t *tx) SaveBooking(_ context.Context, b domain.Booking) (domain.Booking, error) {
	if b.ID == 0 {
		t.s.mu.Lock()
		t.s.seq.booking++
		b.ID = t.s.seq.booking
		t.s.mu.Unlock()
		b.CreatedAt = t.s.now()
	} else if _, err := t.LoadBooking(context.Background(), b.ID); err != nil {
		return domain.Booking{}, err
	}
	t.bookings[b.ID] = &b
	return b, nil
}

func (t *tx) DeleteBooking(_ context.Context, id int64) error {
	if _, err := t.LoadBooking(context.Background(), id); err != nil {
		return err
	}
	t.bookings[id] = nil
	return nil
}

func (t *tx) DeleteBookingsForHotel(_ context.Context, hotelID int64) (int64, error) {
	t.s.mu.RLock()
	var n int64
	for _, b := range t.s.bookings {
		if b.HotelID == hotelID {
			n++
		}
	}
	t.s.mu.RUnlock()
	t.dropForHotel = append(t.dropForHotel, hotelID)
	return n, nil
}

func (t *tx) UpdateHotel(_ context.Context, h domain.Hotel) error {
	if _, err := t.LoadHotel(context.Background(), h.ID); err != nil {
		return err
	}
	h = cloneHotel(h)
	t.hotels[h.ID] = &h
	return nil
}

func (t *tx) DeleteHotel(_ context.Context, id int64) error {
	if _, err := t.LoadHotel(context.Background(), id); err != nil {
		return err
	}
	t.hotels[id] = nil
	return nil
}

func (t *tx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id, h := range t.hotels {
		if h == nil {
			continue
		}
		if err := t.s.checkHotelUnique(*h); err != nil {
			return err
		}
		if _, ok := t.s.hotels[id]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, hotelID := range t.dropForHotel {
		for id, b := range t.s.bookings {
			if b.HotelID == hotelID {
				delete(t.s.bookings, id)
			}
		}
	}
	for id, b := range t.bookings {
		if b == nil {
			delete(t.s.bookings, id)
			continue
		}
		t.s.bookings[id] = *b
	}
	for id, h := range t.hotels {
		if h == nil {
			delete(t.s.hotels, id)
			continue
		}
		t.s.hotels[id] = *h
	}
	return nil
}
