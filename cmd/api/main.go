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

	"finman/internal/config"
	"finman/internal/database"
	"finman/internal/events"
	"finman/internal/logger"
	"finman/internal/server"
	"finman/internal/services"
	"finman/internal/timewindow"
)

// @title           Finman API
// @version         1.0
// @description     Finman tracks income and expenses, runs recurring transactions on a schedule and alerts when budgets run hot.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := newPublisher(appConfig)
	if err != nil {
		return err
	}
	defer publisher.Close()

	clock := timewindow.SystemClock{}
	svc := server.NewServices(dbManager.DB(), publisher, clock, services.NotificationConfig{
		LargeTransactionThreshold: appConfig.LargeTransactionThreshold,
		Limit:                     appConfig.NotificationLimit,
	})
	router := server.NewRouter(svc, server.Options{
		CORSOrigins:    appConfig.CORSOrigins,
		PipelineAPIKey: appConfig.PipelineAPIKey,
		Clock:          clock,
		Swagger:        true,
		RequestLogging: true,
	})
	if appConfig.PipelineAPIKey == "" {
		log.Warn("PIPELINE_API_KEY is not set; the scheduler endpoint is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Finman server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher connects to the broker when AMQP_URL is set. Without it,
// execution events are dropped.
func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event publisher: %w", err)
	}
	logger.Get().Infow("Publishing execution events", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	return p, nil
}
