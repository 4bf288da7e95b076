package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/adapters/cache"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/adapters/database"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/adapters/events"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/adapters/lock"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/api/handlers"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/api/routes"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/application/services"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/postgres"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/clients/redis"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/observability"
	"github.com/rohanthuse/infinite-care-vue-sub018/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis is optional: it backs the run lock, the recipient cache and booking events.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without run lock, recipient cache or events")
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	var recipientRepo repositories.RecipientRepository = database.NewRecipientAdapter(pgClient)
	if redisClient != nil {
		recipientRepo = database.NewCachedRecipientAdapter(
			recipientRepo,
			cache.NewRedisAdapter(redisClient),
			cfg.Reconciliation.RecipientCacheTTL,
		)
	}

	reconciler := services.NewReconciliationService(
		services.ReconciliationRepositories{
			Bookings:      database.NewBookingAdapter(pgClient),
			VisitRecords:  database.NewVisitRecordAdapter(pgClient),
			Staff:         database.NewStaffAdapter(pgClient),
			AlertSettings: database.NewAlertSettingsAdapter(pgClient),
			Notifications: database.NewNotificationAdapter(pgClient),
			Recipients:    recipientRepo,
		},
		services.ReconciliationOptions{
			Workers:    cfg.Reconciliation.Workers,
			RunTimeout: cfg.Reconciliation.RunTimeout,
			LockTTL:    cfg.Reconciliation.LockTTL,
			Location:   cfg.Reconciliation.Location(),
		},
	)
	reconciler.SetMetrics(metrics)
	if redisClient != nil {
		reconciler.SetLock(lock.NewRedisLock(redisClient))

		reconciler.SetEventBus(events.NewRedisEventBus(redisClient))
	}

	router := routes.NewRouter(handlers.NewReconciliationHandler(reconciler), metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// A run may use its whole budget before the response is written.
		WriteTimeout: cfg.Reconciliation.RunTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", serverAddr).
			Int("workers", cfg.Reconciliation.Workers).
			Dur("run_timeout", cfg.Reconciliation.RunTimeout).
			Msg("booking reconciler starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
