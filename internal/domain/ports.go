package domain

import (
	"context"
	"sort"
)

type HotelRepository interface {
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (BookingView, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]BookingView, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// HotelTx is the write surface available while hotel rows are locked.
type HotelTx interface {
	LoadHotel(ctx context.Context, id int64) (Hotel, error)
	LoadBooking(ctx context.Context, id int64) (Booking, error)
	SaveBooking(ctx context.Context, b Booking) (Booking, error) // insert when ID == 0
	DeleteBooking(ctx context.Context, id int64) error
	DeleteBookingsForHotel(ctx context.Context, hotelID int64) (int64, error)
	UpdateHotel(ctx context.Context, h Hotel) error
	DeleteHotel(ctx context.Context, id int64) error
}

// Locker serializes writes per hotel. fn runs atomically with every listed
// hotel locked; an error from fn rolls back everything it wrote.
type Locker interface {
	WithHotelLock(ctx context.Context, hotelIDs []int64, fn func(ctx context.Context, tx HotelTx) error) error
}

type Store interface {
	HotelRepository
	BookingRepository
	UserRepository
	Locker
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Notifier delivers best-effort email; callers never observe the outcome.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string)
}

// LockOrder returns the distinct ids ascending, the order locks are taken in.
func LockOrder(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
