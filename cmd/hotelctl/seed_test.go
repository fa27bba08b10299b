package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
)

func TestReadSeedAndSeed(t *testing.T) {
	in := `[
	  {"name":"Grand","address":"1 Main","telNo":"0800","email":"grand@hotel.example","unAvailableDates":["2024-06-10"]},
	  {"name":"Annex","address":"2 Side","telNo":"0801","email":"annex@hotel.example"},
	  {"name":"Grand","address":"dup","telNo":"0802","email":"dup@hotel.example"}
	]`
	hotels, err := readSeed(strings.NewReader(in))
	if err != nil {
		t.Fatalf("readSeed: %v", err)
	}
	if len(hotels) != 3 || len(hotels[0].UnavailableDates) != 1 {
		t.Fatalf("unexpected parse: %+v", hotels)
	}

	st := memory.New()
	failed, err := seed(context.Background(), app.NewHotelService(st, nil, 0), hotels, 2)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if failed != 1 {
		t.Fatalf("the duplicate name should fail, got %d failures", failed)
	}
	hs, _ := st.ListHotels(context.Background())
	if len(hs) != 2 {
		t.Fatalf("want 2 hotels, got %d", len(hs))
	}
}

func TestReadSeed_BadDate(t *testing.T) {
	if _, err := readSeed(strings.NewReader(`[{"name":"X","unAvailableDates":["June 10"]}]`)); err == nil {
		t.Fatalf("expected a date error")
	}
}

func TestSeed_InvalidatesSharedCache(t *testing.T) {
	ctx := context.Background()
	if c, err := hotelCache(ctx, shared.Config{}); err != nil || c != nil {
		t.Fatalf("no REDIS_ADDR should mean no cache, got %v, %v", c, err)
	}

	mr := miniredis.RunT(t)
	rc, err := hotelCache(ctx, shared.Config{RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("hotelCache: %v", err)
	}
	defer rc.Close()

	// what the API would have cached before the seed
	if err := rc.Set(ctx, "hotels:all", []domain.Hotel{}, 900); err != nil {
		t.Fatalf("set: %v", err)
	}
	hotels := []domain.Hotel{{Name: "Grand", Address: "1 Main", TelNo: "0800", Email: "grand@hotel.example"}}
	if failed, err := seed(ctx, app.NewHotelService(memory.New(), rc, time.Minute), hotels, 1); err != nil || failed != 0 {
		t.Fatalf("seed: failed=%d err=%v", failed, err)
	}
	if mr.Exists("hotel-booking:hotels:all") {
		t.Fatalf("seeding must drop the cached hotel list")
	}
}

func TestHotelCache_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := hotelCache(context.Background(), shared.Config{RedisAddr: addr}); err == nil {
		t.Fatalf("expected a ping error")
	}
}
