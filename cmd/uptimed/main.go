package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"uptime-report-backend/config"
	"uptime-report-backend/internal/api"
	"uptime-report-backend/internal/db"
	"uptime-report-backend/internal/metrics"
	"uptime-report-backend/internal/notification"
	"uptime-report-backend/internal/report"
	"uptime-report-backend/internal/scheduler"
	"uptime-report-backend/internal/store"
	"uptime-report-backend/internal/uptime"
)

func main() {
	logger := log.New(os.Stdout, "uptime-backend ", log.LstdFlags)
	log.SetOutput(os.Stdout)
	log.SetPrefix("uptime-backend ")
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	m := metrics.New()

	var webpushOptions *webpush.Options
	var notifier report.Notifier = notification.Nop{}
	var workerPool *notification.WorkerPool
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		workerPool = notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		workerPool.Start(ctx)
		notifier = workerPool
	} else {
		logger.Println("VAPID keys are not configured; push notifications are disabled")
	}

	now := func() time.Time { return time.Now().UTC() }
	if !cfg.Report.Now.IsZero() {
		pinned := cfg.Report.Now
		now = func() time.Time { return pinned }
		logger.Printf("processing instant pinned to %s", pinned.Format(time.RFC3339))
	}

	estimator := uptime.NewEstimator(
		uptime.NewTimezoneResolver(appStore, cfg.Report.Location),
		uptime.NewBusinessHoursResolver(appStore),
		uptime.WeeklyRecurrencePolicy{},
	)
	generator := report.NewGenerator(appStore, estimator, report.GeneratorConfig{
		Parallelism: cfg.Report.Parallelism,
		Now:         now,
		Metrics:     m,
	})
	coordinator := report.NewCoordinator(appStore, generator, report.CoordinatorConfig{
		Notifier: notifier,
		Metrics:  m,
	})
	if err := coordinator.Init(ctx); err != nil {
		logger.Fatalf("failed to reset report job: %v", err)
	}

	go scheduler.NewService(coordinator, cfg.Report.ScheduleInterval).Run(ctx)

	handler := api.NewHandler(coordinator, generator, appStore, webpushOptions)
	router := api.NewRouter(handler, api.RouterOptions{
		RateLimit: rate.Limit(cfg.Server.RateLimitPerSec),
		Burst:     cfg.Server.RateLimitBurst,
		CacheTTL:  time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
		Metrics:   m,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Report runs are not cancellable, so give an in-flight trigger time to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	cancel()
	if workerPool != nil {
		workerPool.Wait()
	}

	logger.Println("Server gracefully stopped")
}
