package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/farmworker-finance/internal/config"
	"github.com/Dan9191/farmworker-finance/internal/events"
	"github.com/Dan9191/farmworker-finance/internal/handler"
	"github.com/Dan9191/farmworker-finance/internal/integrations/keyrate"
	"github.com/Dan9191/farmworker-finance/internal/metrics"
	"github.com/Dan9191/farmworker-finance/internal/notify"
	"github.com/Dan9191/farmworker-finance/internal/repository"
	"github.com/Dan9191/farmworker-finance/internal/scheduler"
	"github.com/Dan9191/farmworker-finance/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize storage
	var store repository.Store
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		store = repository.NewMemory()
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		if err := repository.Migrate(db); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		store = repository.NewRepository(db)
	}

	// Event publishing falls back to the log without brokers
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Infof("Publishing events to Kafka topic %s", cfg.KafkaTopic)
	} else {
		publisher = events.NewLogPublisher(logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Errorf("Failed to close event publisher: %v", err)
		}
	}()

	var notifier service.Notifier
	if cfg.SMTPEnabled() {
		notifier = notify.NewSender(cfg, logger)
	} else {
		logger.Warn("SMTP_HOST not set; email notifications disabled")
	}

	// Initialize layers
	m := metrics.New()
	svc := service.NewService(store, logger, cfg, publisher, notifier).WithMetrics(m)
	rates := keyrate.NewClient(cfg.KeyRateURL, logger)
	h := handler.NewHandler(svc, rates, logger)
	r := handler.NewRouter(h, cfg, logger, m)

	sched, err := scheduler.New(cfg, svc, logger)
	if err != nil {
		logger.Fatalf("Failed to configure scheduler: %v", err)
	}
	sched.Start()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	sched.Stop(ctx)
}
