package main

import (
	"context"
	_ "embed"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/adapters/media"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/sqlstore"
)

//go:embed seed.json
var defaultSeed []byte

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	raw := defaultSeed
	if cfg.SeedFile != "" {
		b, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("read seed file failed")
		}
		raw = b
	}
	seed, err := app.ParseSeedFile(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid seed file")
	}

	log.Info().
		Str("driver", cfg.DBDriver).
		Int("workers", cfg.SeedWorkers).
		Int("hotels", len(seed.Hotels)).
		Int("users", len(seed.Users)).
		Msg("seeder starting")

	dsn := cfg.MySQLDSN
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := sqlstore.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	if err := sqlstore.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	repo := sqlstore.New(db)
	hotels := app.NewHotelService(repo, media.New(cfg.MediaRoot), nil, cfg.CacheTTL)
	svc := app.NewSeedService(hotels, app.NewRoomService(repo, hotels), app.NewUserService(repo, bcrypt.DefaultCost))

	workers := cfg.SeedWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)

	for _, h := range seed.Hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(h app.SeedHotel) {
			defer wg.Done()
			defer sem.Release(1)

			rooms, err := svc.SeedHotel(ctx, h)
			if err != nil {
				failed.Add(1)
				log.Warn().Err(err).Str("hotel", h.Name).Msg("seed hotel failed")
				return
			}
			log.Info().Str("hotel", h.Name).Int("rooms", rooms).Msg("seed hotel ok")
		}(h)
	}

	for _, u := range seed.Users {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(u app.UserInput) {
			defer wg.Done()
			defer sem.Release(1)

			created, ok, err := svc.SeedUser(ctx, u)
			switch {
			case err != nil:
				failed.Add(1)
				log.Warn().Err(err).Str("email", u.Email).Msg("seed user failed")
			case !ok:
				log.Info().Str("email", u.Email).Msg("user already seeded, skipping")
			default:
				log.Info().Str("username", created.Username).Msg("seed user ok")
			}
		}(u)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatal().Int32("failed", n).Msg("seeding finished with errors")
	}
	log.Info().Msg("seeding completed")
}
