package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_booking/internal/adapters/auth"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/mailer"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/memory"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving without cache")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	dispatcher := mailer.NewDispatcher(newTransport(cfg.Mail), mailer.Options{
		Workers:     cfg.Mail.Workers,
		QueueSize:   cfg.Mail.QueueSize,
		RPS:         cfg.Mail.RPS,
		MaxAttempts: cfg.Mail.MaxAttempts,
		Timeout:     cfg.Mail.Timeout,
	})

	tokens := auth.NewTokens(cfg.Token.HashKey, cfg.Token.BlockKey, cfg.Token.TTL)
	handlers := &server.Handlers{
		Bookings:     app.NewBookingService(store, dispatcher, cfg.MaxNights),
		Hotels:       app.NewHotelService(store, cache, cfg.CacheTTL),
		Auth:         app.NewAuthService(store, auth.NewHasher(), tokens),
		Tokens:       tokens,
		CookieTTL:    cfg.Token.CookieTTL,
		SecureCookie: cfg.Token.SecureCookie,
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	metrics := observability.MetricsHandler(reg)
	srv.Mount("/metrics", metrics)
	srv.MountHandlers(handlers)
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	metricsSrv := observability.Serve(cfg.MetricsAddr, metrics)

	// The dispatcher outlives the HTTP server so requests still finishing
	// during Shutdown can queue their notifications.
	mailCtx, stopMail := context.WithCancel(context.Background())
	defer stopMail()
	mailDone := make(chan error, 1)
	go func() { mailDone <- dispatcher.Run(mailCtx) }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.StorageDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		err := httpSrv.Shutdown(shutdownCtx)
		stopMail()
		<-mailDone
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg shared.Config) (domain.Store, func()) {
	if cfg.StorageDriver == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.New(), func() {}
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	if cfg.MigrateOnStart {
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}
	return mysqlrepo.New(db), func() { _ = db.Close() }
}

func newTransport(c shared.MailConfig) mailer.Transport {
	switch c.Transport {
	case "smtp":
		return mailer.NewSMTPTransport(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPass, c.From)
	case "relay":
		return mailer.NewRelayTransport(c.RelayURL, c.RelayKey, c.From, c.Timeout)
	default:
		return mailer.LogTransport{}
	}
}
