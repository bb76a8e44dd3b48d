package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-notify/internal/adapter/cwb"
	"github.com/couchcryptid/weather-notify/internal/adapter/httpapi"
	"github.com/couchcryptid/weather-notify/internal/adapter/mailer"
	"github.com/couchcryptid/weather-notify/internal/adapter/openweather"
	"github.com/couchcryptid/weather-notify/internal/adapter/ratelimit"
	"github.com/couchcryptid/weather-notify/internal/adapter/webhook"
	"github.com/couchcryptid/weather-notify/internal/config"
	"github.com/couchcryptid/weather-notify/internal/observability"
	"github.com/couchcryptid/weather-notify/internal/orchestrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	forecasts := ratelimit.NewForecast(
		cwb.NewClient(cfg.CWBAPIKey, cfg.ClientTimeout, logger),
		cfg.ClientRPS, cfg.ClientBurst,
	)
	conditions := ratelimit.NewConditions(
		openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.ClientTimeout, logger),
		cfg.ClientRPS, cfg.ClientBurst,
	)

	var dispatcher orchestrator.Dispatcher
	switch cfg.DispatchTransport {
	case config.TransportWebhook:
		dispatcher = webhook.NewClient(cfg.WebhookURL, cfg.ClientTimeout, logger)
	default:
		dispatcher = mailer.NewRelay(
			cfg.SMTPHost, cfg.SMTPPort,
			cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom,
			cfg.SMTPDialTimeout, logger,
		)
	}
	logger.Info("dispatch transport selected", "transport", dispatcher.Name())

	session := orchestrator.NewSession(forecasts, conditions, dispatcher, logger, metrics, clockwork.NewRealClock())

	srv := httpapi.NewServer(cfg.HTTPAddr, session, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
