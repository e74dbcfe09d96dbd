package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/sole_searcher/internal/app"
	"github.com/Skotchmaster/sole_searcher/internal/config"
	"github.com/Skotchmaster/sole_searcher/internal/httpserver"
	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/mykafka"
	"github.com/Skotchmaster/sole_searcher/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ctx = logging.IntoContext(ctx, logger)
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		cancel()
		logger.Error("storage_open_failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	var publisher service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			cancel()
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		publisher = producer
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	shop := app.New(ctx, app.Deps{
		Store:       store,
		Prefix:      cfg.StoragePrefix,
		Producer:    publisher,
		AdminEmail:  cfg.AdminEmail,
		AuthLatency: cfg.AuthLatency,
		HashCost:    cfg.BcryptCost,
	})
	cancel()

	e := httpserver.NewEcho(logger)
	httpserver.Register(e, httpserver.NewDeps(shop))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_failed", "error", err)
		}
	}
	if err := closeStore(); err != nil {
		logger.Warn("storage_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}
