// Package memory is an in-process Store for local runs and tests. Writes made
// under WithHotelLock are staged and applied only when fn succeeds.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	hotels   map[int64]domain.Hotel
	bookings map[int64]domain.Booking
	users    map[int64]domain.User
	seq      struct{ hotel, booking, user int64 }

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	now func() time.Time
}

func New() *Store {
	return &Store{
		hotels:   map[int64]domain.Hotel{},
		bookings: map[int64]domain.Booking{},
		users:    map[int64]domain.User{},
		locks:    map[int64]*sync.Mutex{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ---- hotels ----

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkHotelUnique(h); err != nil {
		return domain.Hotel{}, err
	}
	s.seq.hotel++
	h.ID = s.seq.hotel
	h = cloneHotel(h)
	s.hotels[h.ID] = h
	return cloneHotel(h), nil
}

func (s *Store) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return cloneHotel(h), nil
}

func (s *Store) ListHotels(_ context.Context) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		out = append(out, cloneHotel(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// checkHotelUnique must be called with mu held.
func (s *Store) checkHotelUnique(h domain.Hotel) error {
	for _, o := range s.hotels {
		if o.ID == h.ID {
			continue
		}
		if strings.EqualFold(o.Name, h.Name) {
			return domain.Duplicate("name", "duplicate hotel name %q", h.Name)
		}
		if strings.EqualFold(o.Email, h.Email) {
			return domain.Duplicate("email", "duplicate hotel email %q", h.Email)
		}
	}
	return nil
}

// ---- bookings ----

func (s *Store) GetBooking(_ context.Context, id int64) (domain.BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.BookingView{}, domain.ErrNotFound
	}
	return s.view(b), nil
}

func (s *Store) ListBookings(_ context.Context, f domain.BookingFilter) ([]domain.BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BookingView, 0)
	for _, b := range s.bookings {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		if f.HotelID != nil && b.HotelID != *f.HotelID {
			continue
		}
		out = append(out, s.view(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) view(b domain.Booking) domain.BookingView {
	return domain.BookingView{Booking: b, Hotel: s.hotels[b.HotelID].Summary()}
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.users {
		if strings.EqualFold(o.Email, u.Email) {
			return domain.User{}, domain.Duplicate("email", "duplicate user email %q", u.Email)
		}
	}
	s.seq.user++
	u.ID = s.seq.user
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// ---- locking ----

func (s *Store) hotelMutex(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}

func (s *Store) WithHotelLock(ctx context.Context, hotelIDs []int64, fn func(ctx context.Context, tx domain.HotelTx) error) error {
	for _, id := range domain.LockOrder(hotelIDs) {
		m := s.hotelMutex(id)
		m.Lock()
		defer m.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{s: s, hotels: map[int64]*domain.Hotel{}, bookings: map[int64]*domain.Booking{}}
	if err := fn(ctx, t); err != nil {
		return err
	}
	return t.commit()
}

func cloneHotel(h domain.Hotel) domain.Hotel {
	h.UnavailableDates = append([]time.Time(nil), h.UnavailableDates...)
	return h
}
