package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YusovID/barter-service/internal/auth"
	"github.com/YusovID/barter-service/internal/config"
	"github.com/YusovID/barter-service/internal/events"
	"github.com/YusovID/barter-service/internal/repository"
	"github.com/YusovID/barter-service/internal/repository/memory"
	"github.com/YusovID/barter-service/internal/repository/postgres"
	"github.com/YusovID/barter-service/internal/repository/records"
	"github.com/YusovID/barter-service/internal/service"
	myhttp "github.com/YusovID/barter-service/internal/transport/http"
	"github.com/YusovID/barter-service/pkg/logger/sl"
	"github.com/YusovID/barter-service/pkg/logger/slogpretty"
	"github.com/YusovID/barter-service/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting barter-service", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to init tracer: %v", err)
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
				log.Error("failed to flush traces", sl.Err(err))
			}
		}()
	}

	db, store, closeStorage, err := openStorage(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to init storage: %v", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			log.Error("storage close failed", sl.Err(err))
		}
	}()

	var broadcaster service.Broadcaster

	if cfg.NATS.Enabled() {
		nc, err := events.Connect(cfg.NATS, log)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %v", err)
		}
		defer func() {
			if err := nc.Close(); err != nil {
				log.Error("nats drain failed", sl.Err(err))
			}
		}()

		if err := nc.EnsureStream(ctx); err != nil {
			return fmt.Errorf("failed to ensure notification stream: %v", err)
		}

		broadcaster = nc.Broadcaster()
	}

	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	srv := myhttp.NewServer(log, newServices(db, store, log, tokens, broadcaster), tokens, myhttp.Options{
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
		CORSOrigins:       cfg.Server.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)

	go startServer(log, httpServer, errChan)

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server error: %v", err)
		}

		return nil

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %v", err)
	}

	return nil
}

// openStorage returns the transaction source and the record store for the configured driver.
func openStorage(cfg *config.Config, log *slog.Logger) (service.Transactor, repository.RecordStore, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.NewDB(cfg.Postgres, log)
		if err != nil {
			return nil, nil, nil, err
		}

		return db, postgres.NewRecordStore(log), db.Close, nil
	default:
		log.Warn("using in-memory storage, data is lost on restart")

		store := memory.New()

		return store, store, func() error { return nil }, nil
	}
}

func newServices(
	db service.Transactor,
	store repository.RecordStore,
	log *slog.Logger,
	tokens *auth.JWTService,
	broadcaster service.Broadcaster,
) myhttp.Services {
	users := records.NewUserRepository(store, log)
	stats := records.NewStatsRepository(store)
	listings := records.NewListingRepository(store, log)
	communities := records.NewCommunityRepository(store, log)
	barters := records.NewBarterRepository(store, log)

	notifications := service.NewNotificationService(db, log, records.NewNotificationRepository(store))
	if broadcaster != nil {
		notifications.WithBroadcaster(broadcaster)
	}

	return myhttp.Services{
		Auth:         service.NewAuthService(db, log, users, stats, tokens),
		Profile:      service.NewProfileService(db, log, users, stats),
		Barter:       service.NewBarterService(db, log, barters, listings, users, stats, notifications),
		Trust:        service.NewTrustService(db, log, stats),
		Notification: notifications,
		Listing:      service.NewListingService(db, log, listings, users, communities),
		Community:    service.NewCommunityService(db, log, communities, users),
	}
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}
