package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kjstillabower/citypage-weather/internal/app"
	"github.com/kjstillabower/citypage-weather/internal/client"
	"github.com/kjstillabower/citypage-weather/internal/config"
	"github.com/kjstillabower/citypage-weather/internal/observability"
	"github.com/kjstillabower/citypage-weather/internal/service"
)

// version is set with -ldflags "-X main.version=..." at release time.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := observability.NewLogger()
	if err != nil {
		app.WriteError(os.Stdout, fmt.Errorf("logger: %w", err))
		return 1
	}

	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		app.WriteError(os.Stdout, err)
		_ = logger.Sync()
		return 1
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corrID := observability.NewCorrelationID()
	ctx = observability.WithCorrelationID(ctx, corrID)
	logger = logger.With(zap.String("correlation_id", corrID), zap.String("version", version))

	weatherService := service.NewWeatherService(client.NewCitypageClient(cfg.Timeout, cfg.UserAgent+"/"+version), logger)

	code := 0
	if err := app.Run(ctx, cfg, weatherService, os.Stdout, logger); err != nil {
		logger.Debug("run failed", zap.Error(err))
		app.WriteError(os.Stdout, err)
		code = 1
	}

	if err := observability.FlushTelemetry(context.Background(), logger, cfg.MetricsTextfile); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
	}
	return code
}
