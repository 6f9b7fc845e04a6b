package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"prism-console/internal/config"
	internaldb "prism-console/internal/db"
	"prism-console/internal/warehouse"
)

// newLogger builds the process logger: JSON in production, text otherwise.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logger *slog.Logger
	if cfg.IsProduction() {
		logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(w, opts))
	}
	slog.SetDefault(logger)
	return logger
}

// openMetastore opens the SQLite write/read pair and applies pending
// migrations on the write pool. The caller closes both pools.
func (rt *runtime) openMetastore() (writeDB, readDB *sql.DB, err error) {
	writeDB, readDB, err = internaldb.OpenSQLitePair(rt.cfg.MetaDBPath, 4)
	if err != nil {
		return nil, nil, fmt.Errorf("open metastore: %w", err)
	}
	if err := internaldb.RunMigrations(writeDB); err != nil {
		_ = readDB.Close()
		_ = writeDB.Close()
		return nil, nil, fmt.Errorf("migrate metastore: %w", err)
	}
	return writeDB, readDB, nil
}

func (rt *runtime) openWarehouse(ctx context.Context) (*warehouse.Client, error) {
	client, err := warehouse.Open(ctx, rt.cfg.Warehouse.Driver, rt.cfg.Warehouse.DSN, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	return client, nil
}
