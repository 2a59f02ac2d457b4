package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/bookingd/internal/application"
	"github.com/example/bookingd/internal/config"
	httptransport "github.com/example/bookingd/internal/http"
	"github.com/example/bookingd/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Local development convenience; a missing .env is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	settingsRepo := sqlite.NewSettingsRepository(storage)
	scheduleRepo := sqlite.NewScheduleRepository(storage)
	bookingRepo := sqlite.NewBookingRepository(storage)
	blackoutRepo := sqlite.NewBlackoutRepository(storage)

	settingsService := application.NewSettingsService(cfg.OrganizerID, settingsRepo, now, logger)
	scheduleService := application.NewScheduleService(cfg.OrganizerID, scheduleRepo, idGenerator, logger)
	blackoutService := application.NewBlackoutService(cfg.OrganizerID, blackoutRepo, idGenerator, now, logger)
	availabilityService := application.NewAvailabilityService(cfg.OrganizerID, settingsRepo, scheduleRepo, bookingRepo, blackoutRepo, now, logger)
	bookingService := application.NewBookingService(cfg.OrganizerID, settingsRepo, bookingRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Availability: httptransport.NewAvailabilityHandler(availabilityService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Settings:     httptransport.NewSettingsHandler(settingsService, logger),
		Schedule:     httptransport.NewScheduleHandler(scheduleService, logger),
		Blackouts:    httptransport.NewBlackoutHandler(blackoutService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	var retention *cron.Cron
	if cfg.BlackoutRetention != "" {
		retention = cron.New()
		_, err := retention.AddFunc(cfg.BlackoutRetention, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := blackoutService.PurgeExpired(jobCtx); err != nil {
				logger.Error("blackout retention job failed", "error", err)
			}
		})
		if err != nil {
			logger.Error("failed to schedule blackout retention job", "error", err, "spec", cfg.BlackoutRetention)
			os.Exit(1)
		}
		retention.Start()
		defer retention.Stop()
		logger.Info("blackout retention job scheduled", "spec", cfg.BlackoutRetention)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr, "organizer_id", cfg.OrganizerID)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
