package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bookfairhq/pos-backend/api/routes"
	"github.com/bookfairhq/pos-backend/internal/catalog"
	"github.com/bookfairhq/pos-backend/internal/checkout"
	"github.com/bookfairhq/pos-backend/internal/reporting"
	"github.com/bookfairhq/pos-backend/internal/router"
	"github.com/bookfairhq/pos-backend/internal/session"
	"github.com/bookfairhq/pos-backend/pkg/cache"
	"github.com/bookfairhq/pos-backend/pkg/config"
	"github.com/bookfairhq/pos-backend/pkg/logger"
	"github.com/bookfairhq/pos-backend/pkg/metrics"
	"github.com/bookfairhq/pos-backend/pkg/retry"
	"github.com/bookfairhq/pos-backend/pkg/sheets"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Options{ServiceName: "fairpos-api"})
		fallback.Error(context.Background(), "config.load_failed", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "fairpos-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api.fatal", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	client, err := sheets.New(ctx, cfg.Sheets, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gateway, err := catalog.NewGateway(catalog.GatewayParams{
		Store: client,
		Cache: cache.New(time.Now),
		Retry: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
		},
		Logger:  logg,
		Metrics: metrics.NewGatewayMetrics(registry),
		Sheets:  cfg.Sheets,
		TTL:     cfg.Cache,
	})
	if err != nil {
		return err
	}

	sessions := session.NewManager()

	checkoutSvc, err := checkout.NewService(gateway, sessions, logg, cfg.Promo)
	if err != nil {
		return err
	}

	reportingSvc, err := reporting.NewService(gateway)
	if err != nil {
		return err
	}

	dispatcher, err := router.New(router.Params{
		Catalog:   gateway,
		Checkout:  checkoutSvc,
		Reporting: reportingSvc,
		Logger:    logg,
		UI:        cfg.UI,
	})
	if err != nil {
		return err
	}

	handler := routes.New(routes.Params{
		Logger:     logg,
		Registry:   registry,
		Dispatcher: dispatcher,
		Catalog:    gateway,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "api.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
