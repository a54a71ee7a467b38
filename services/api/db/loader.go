// Package db loads the five ETL-built dataset tables into memory. The store
// is read-only after load, so the database handle is closed as soon as the
// tables are in memory; a load failure is fatal (there is no partial-dataset
// mode).
package db

import (
	"context"
	"log/slog"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/config"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
)

// Load reads the dataset from the configured source: Postgres when
// DATABASE_URL is set, otherwise the SQLite snapshot file.
func Load(ctx context.Context, cfg config.Config, logger *slog.Logger) (dataset.Tables, error) {
	if cfg.DatabaseURL != "" {
		logger.Info("loading dataset", "source", "postgres")
		return LoadPostgres(ctx, cfg.DatabaseURL)
	}
	logger.Info("loading dataset", "source", "sqlite", "path", cfg.DatasetPath)
	return LoadSQLite(ctx, cfg.DatasetPath)
}
