package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/costwatch/costwatch/internal/alerting"
	"github.com/costwatch/costwatch/internal/api/handlers"
	"github.com/costwatch/costwatch/internal/api/router"
	"github.com/costwatch/costwatch/internal/config"
	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/pkg/validator"
	"github.com/costwatch/costwatch/internal/providers"
	"github.com/costwatch/costwatch/internal/repository/postgres"
	"github.com/costwatch/costwatch/internal/services"
	"github.com/costwatch/costwatch/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	// Optional persistence
	var db *sql.DB
	var repo anomaly.Repository
	if cfg.Database.Enabled {
		db, err = postgres.New(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		repo = postgres.NewAnomalyRepository(db)
	}

	feed := providers.NewAzureCostFeed(providers.AzureCredentials{
		TenantID:     cfg.Azure.TenantID,
		ClientID:     cfg.Azure.ClientID,
		ClientSecret: cfg.Azure.ClientSecret,
	})

	sink, err := storage.NewBlobSink(cfg.Storage.ConnectionString, cfg.Storage.Container, log)
	if err != nil {
		log.Fatalf("failed to create blob sink: %v", err)
	}

	var notifier alerting.Notifier
	if cfg.Alerting.SlackWebhookURL != "" {
		notifier = alerting.NewSlackNotifier(cfg.Alerting.SlackWebhookURL, log)
	} else {
		notifier = alerting.NewLogNotifier(log)
	}
	dispatcher := alerting.NewDispatcher(notifier, log)

	thresholds := anomaly.Thresholds{
		ZScoreThreshold:     cfg.Detector.ZScoreThreshold,
		MinCostThreshold:    cfg.Detector.MinCostThreshold,
		ConfidenceThreshold: cfg.Detector.ConfidenceThreshold,
	}

	detectionService := services.NewDetectionService(feed, sink, dispatcher, repo, thresholds, log)

	val := validator.New()
	h := &router.Handlers{
		Health:    handlers.NewHealthHandler(db, log),
		Detection: handlers.NewDetectionHandler(detectionService, log, val),
	}
	if repo != nil {
		h.Anomaly = handlers.NewAnomalyHandler(services.NewAnomalyService(repo, log), log)
	}

	// Scheduled detection runs
	var scheduler *cron.Cron
	if cfg.Detector.Schedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Detector.Schedule, func() {
			for _, sub := range cfg.Detector.Subscriptions {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
				_, err := detectionService.Run(ctx, services.RunRequest{
					SubscriptionID: sub,
					DaysBack:       cfg.Detector.DefaultDaysBack,
				})
				cancel()
				if err != nil {
					log.WithFields(map[string]interface{}{
						"subscription_id": sub,
					}).ErrorWithErr(err, "Scheduled detection run failed")
				}
			}
		})
		if err != nil {
			log.Fatalf("invalid detector schedule %q: %v", cfg.Detector.Schedule, err)
		}
		scheduler.Start()
		log.Infof("Scheduled detection runs: %s (%d subscriptions)",
			cfg.Detector.Schedule, len(cfg.Detector.Subscriptions))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Info("Server stopped")
}
