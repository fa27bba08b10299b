package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

type seedHotel struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	TelNo            string   `json:"telNo"`
	Email            string   `json:"email"`
	UnavailableDates []string `json:"unAvailableDates"`
}

// readSeed parses a JSON array of hotels.
func readSeed(r io.Reader) ([]domain.Hotel, error) {
	var raw []seedHotel
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]domain.Hotel, 0, len(raw))
	for i, s := range raw {
		h := domain.Hotel{Name: s.Name, Address: s.Address, TelNo: s.TelNo, Email: s.Email}
		for _, d := range s.UnavailableDates {
			t, err := domain.ParseDay(d)
			if err != nil {
				return nil, fmt.Errorf("hotel %d (%s): %w", i, s.Name, err)
			}
			h.UnavailableDates = append(h.UnavailableDates, t)
		}
		out = append(out, h)
	}
	return out, nil
}

type hotelCreator interface {
	Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error)
}

// seed creates hotels with at most workers in flight and returns how many
// failed. Failures are logged and do not stop the run.
func seed(ctx context.Context, svc hotelCreator, hotels []domain.Hotel, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return failed.Load(), err
		}
		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			out, err := svc.Create(ctx, h)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("name", h.Name).Err(err).Msg("seed failed")
				return
			}
			log.Info().Int64("id", out.ID).Str("name", out.Name).Msg("seed ok")
		}(h)
	}
	wg.Wait()
	return failed.Load(), nil
}

// hotelCache connects to the API's redis when REDIS_ADDR is set, so hotels
// created here drop the cached hotel list. It returns nil without redis.
func hotelCache(ctx context.Context, cfg shared.Config) (*redisad.Cache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

func newSeedCmd() *cobra.Command {
	var (
		file    string
		workers int
	)
	c := &cobra.Command{
		Use:   "seed",
		Short: "Create hotels from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			hotels, err := readSeed(f)
			if err != nil {
				return err
			}

			cfg, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			var cache domain.Cache
			rc, err := hotelCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if rc != nil {
				defer rc.Close()
				cache = rc
			}

			start := time.Now()
			failed, err := seed(cmd.Context(), app.NewHotelService(mysqlrepo.New(db), cache, cfg.CacheTTL), hotels, workers)
			if err != nil {
				return err
			}
			log.Info().Int("hotels", len(hotels)).Int64("failed", failed).Dur("took", time.Since(start)).Msg("seed completed")
			if failed > 0 {
				return fmt.Errorf("%d of %d hotels failed", failed, len(hotels))
			}
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "path to a JSON array of hotels")
	c.Flags().IntVar(&workers, "workers", 4, "parallel inserts")
	_ = c.MarkFlagRequired("file")
	return c
}
