package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/soundlane/studio-booking-backend/internal/config"
	httpdelivery "github.com/soundlane/studio-booking-backend/internal/delivery/http"
	"github.com/soundlane/studio-booking-backend/internal/messaging/kafka"
	"github.com/soundlane/studio-booking-backend/internal/notify"
	"github.com/soundlane/studio-booking-backend/internal/repository/postgres"
	redisrepo "github.com/soundlane/studio-booking-backend/internal/repository/redis"
	"github.com/soundlane/studio-booking-backend/internal/service"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	// --- Database ---
	db, err := postgres.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// --- Redis ---
	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// --- Kafka ---
	publisher, subscriber, closeBroker := kafka.NewKafkaBroker(cfg.KafkaBrokers)
	defer closeBroker()

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(db)
	scheduleRepo := redisrepo.NewScheduleCache(
		postgres.NewScheduleRepository(db),
		redisClient,
		time.Duration(cfg.ScheduleCacheTTL)*time.Second,
	)
	catalog := postgres.NewServiceCatalog(db)
	eventStore := postgres.NewEventStore(db)

	// --- Services ---
	bookingSvc := service.NewBookingService(orderRepo, scheduleRepo, catalog, eventStore, publisher, time.Now)
	sweeper := service.NewCompletionSweeper(orderRepo, bookingSvc, cfg.SweepSpec)

	// --- Notifications ---
	var notifier notify.Notifier = notify.ConsoleNotifier{}
	if cfg.TelegramToken != "" {
		notifier = notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	}
	worker := notify.NewWorker(subscriber, notifier)

	// --- HTTP API ---
	handler := httpdelivery.NewHandler(bookingSvc)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpdelivery.EnableCORS(mux),
	}

	// --- Start everything ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go worker.Run(ctx)

	if err := sweeper.Start(ctx); err != nil {
		slog.Error("Failed to start completion sweeper", "err", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	slog.Info("Notification consumers started")

	<-ctx.Done()
	slog.Info("Shutting down...")
	httpServer.Shutdown(context.Background())
}
