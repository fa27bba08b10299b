package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

const hotelsAllKey = "hotels:all"

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

// HotelService owns hotel records. Reads go through the cache; writes
// invalidate it.
type HotelService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration

	// gen counts invalidations. A read fills the cache only if gen has not
	// moved since before it hit the store.
	mu  sync.Mutex
	gen uint64
}

// NewHotelService accepts a nil cache.
func NewHotelService(s domain.Store, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{store: s, cache: c, cacheTTL: ttl}
}

func (s *HotelService) List(ctx context.Context) ([]domain.Hotel, error) {
	var hs []domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, hotelsAllKey, &hs); ok {
			return hs, nil
		}
	}
	gen := s.generation()
	hs, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, hotelsAllKey, hs, gen)
	return hs, nil
}

func (s *HotelService) Get(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	gen := s.generation()
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, hotelErr(err, id)
	}
	s.fill(ctx, key, h, gen)
	return h, nil
}

func (s *HotelService) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h = h.Normalize()
	if err := h.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	out, err := s.store.CreateHotel(ctx, h)
	if err != nil {
		return domain.Hotel{}, duplicateErr(err)
	}
	s.invalidate(ctx, 0)
	return out, nil
}

// Update applies p under the hotel's lock so bookings validated concurrently
// see either the old or the new blocked dates, never a mix.
func (s *HotelService) Update(ctx context.Context, id int64, p domain.HotelPatch) (domain.Hotel, error) {
	var out domain.Hotel
	err := s.store.WithHotelLock(ctx, []int64{id}, func(ctx context.Context, tx domain.HotelTx) error {
		h, err := loadHotel(ctx, tx, id)
		if err != nil {
			return err
		}
		h = p.Apply(h).Normalize()
		if err := h.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateHotel(ctx, h); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return domain.Hotel{}, duplicateErr(err)
	}
	s.invalidate(ctx, id)
	return out, nil
}

// Delete removes the hotel and, first, every booking that references it.
// It returns how many bookings went with it.
func (s *HotelService) Delete(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := s.store.WithHotelLock(ctx, []int64{id}, func(ctx context.Context, tx domain.HotelTx) error {
		if _, err := loadHotel(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.DeleteBookingsForHotel(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteHotel(ctx, id); err != nil {
			return hotelErr(err, id)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("hotel", id).Int64("bookings", removed).Msg("hotel deleted with its bookings")
	s.invalidate(ctx, id)
	return removed, nil
}

// Available lists hotels with no blocked date inside [checkIn, checkOut].
func (s *HotelService) Available(ctx context.Context, checkIn, checkOut time.Time) ([]domain.Hotel, error) {
	checkIn, checkOut = domain.NormalizeDate(checkIn), domain.NormalizeDate(checkOut)
	if checkOut.Before(checkIn) {
		return nil, &domain.Error{Kind: domain.KindInvalidRange, Message: "Check in date must not be after check out date"}
	}
	hs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(hs))
	for _, h := range hs {
		if _, blocked := domain.FindOverlap(h.UnavailableDates, checkIn, checkOut); !blocked {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *HotelService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// fill stores v unless a write invalidated the cache after gen was taken.
// It holds mu across Set so an invalidation cannot land between the check
// and the write.
func (s *HotelService) fill(ctx context.Context, key string, v any, gen uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
}

func (s *HotelService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	_ = s.cache.Del(ctx, hotelsAllKey)
	if id != 0 {
		_ = s.cache.Del(ctx, hotelKey(id))
	}
}

func hotelErr(err error, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("No hotel with the id of %d", id)
	}
	return err
}

func duplicateErr(err error) error {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindDuplicateKey {
		switch de.Field {
		case "email":
			return domain.Duplicate("email", "This email has already taken")
		case "name":
			return domain.Duplicate("name", "This name has already taken")
		}
	}
	return err
}
