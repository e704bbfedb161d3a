package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/media"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	dsn := cfg.MySQLDSN
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := sqlstore.Open(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database open failed")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle failed")
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if cfg.AutoMigrate {
		if err := sqlstore.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	// cache is optional; a nil domain.Cache disables it
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, running without cache")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	// deps
	repo := sqlstore.New(db)
	images := media.New(cfg.MediaRoot)
	hotels := app.NewHotelService(repo, images, cache, cfg.CacheTTL)
	users := app.NewUserService(repo, bcrypt.DefaultCost)
	tokens := app.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL, cfg.RefreshTTL)

	// http
	proxies, err := server.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("TRUSTED_PROXIES is invalid")
	}
	srv := server.New(proxies...)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Hotels:         hotels,
		Rooms:          app.NewRoomService(repo, hotels),
		Bookings:       app.NewBookingService(repo),
		Users:          users,
		Auth:           app.NewAuthService(users, repo, tokens),
		Media:          images,
		BaseURL:        cfg.BaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AuthLimiter:    server.NewIPRateLimiter(cfg.AuthRPS, cfg.AuthBurst),
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
