package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_RoundTripAndTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var miss domain.Hotel
	if ok, err := c.Get(ctx, "hotel:1", &miss); ok || err != nil {
		t.Fatalf("want miss, got ok=%v err=%v", ok, err)
	}

	in := domain.Hotel{ID: 1, Name: "Grand", UnavailableDates: []time.Time{time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)}}
	if err := c.Set(ctx, "hotel:1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("hotel-booking:hotel:1") {
		t.Fatalf("key should be stored under the prefix")
	}

	var out domain.Hotel
	ok, err := c.Get(ctx, "hotel:1", &out)
	if !ok || err != nil {
		t.Fatalf("want hit, got ok=%v err=%v", ok, err)
	}
	if out.Name != "Grand" || len(out.UnavailableDates) != 1 || !out.UnavailableDates[0].Equal(in.UnavailableDates[0]) {
		t.Fatalf("unexpected value: %+v", out)
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := c.Get(ctx, "hotel:1", &out); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestCache_CorruptEntryIsEvicted(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	if err := mr.Set("hotel-booking:hotels:all", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var hs []domain.Hotel
	ok, err := c.Get(ctx, "hotels:all", &hs)
	if ok || err != nil {
		t.Fatalf("corrupt entry must read as a miss: ok=%v err=%v", ok, err)
	}
	if mr.Exists("hotel-booking:hotels:all") {
		t.Fatalf("corrupt entry should be deleted")
	}
}

func TestCache_Del(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "hotel:2", domain.Hotel{ID: 2}, 60)
	if err := c.Del(ctx, "hotel:2"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("hotel-booking:hotel:2") {
		t.Fatalf("key should be gone")
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
