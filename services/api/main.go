package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/config"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/db"
	httpserver "github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/http"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := observability.NewLogger()
	metrics := observability.NewMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tables, err := db.Load(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("dataset load error: %w", err)
	}

	store, err := dataset.NewStore(tables, logger)
	if err != nil {
		return fmt.Errorf("dataset store error: %w", err)
	}
	if _, ok := store.Glacier(cfg.DefaultGlacierID); !ok {
		return fmt.Errorf("default glacier id %d not in dataset", cfg.DefaultGlacierID)
	}

	metrics.DatasetGlaciers.Set(float64(store.Len()))
	for metric, dropped := range store.Duplicates() {
		if dropped > 0 {
			metrics.DuplicateSeriesPoints.WithLabelValues(string(metric)).Add(float64(dropped))
		}
	}

	logger.Info("dataset loaded",
		"glaciers", store.Len(),
		"data_points", store.DataPointCount(store.Glaciers()),
	)

	srv := httpserver.New(cfg, store, metrics, logger)
	logger.Info("REST API listening", "addr", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
