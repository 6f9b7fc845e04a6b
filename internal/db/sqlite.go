// Package db opens the console metastore (environments, API keys) and
// applies its migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// Mode selects how a metastore pool is configured.
type Mode string

// Pool modes. SQLite allows one writer at a time, so the write pool holds a
// single connection and takes its lock at BEGIN.
const (
	ModeWrite Mode = "write"
	ModeRead  Mode = "read"
)

const (
	defaultReadConns = 4
	pingTimeout      = 5 * time.Second
)

// pragmas applied to every metastore connection.
var pragmas = map[string]string{
	"_journal_mode": "WAL",
	"_busy_timeout": "5000",
	"_synchronous":  "NORMAL",
	"_foreign_keys": "on",
}

// OpenSQLite opens a metastore pool on path. maxOpen sizes a read pool
// (0 means 4) and is ignored for the write pool.
func OpenSQLite(path string, mode Mode, maxOpen int) (*sql.DB, error) {
	conns := 1
	switch mode {
	case ModeWrite:
	case ModeRead:
		conns = maxOpen
		if conns <= 0 {
			conns = defaultReadConns
		}
	default:
		return nil, fmt.Errorf("invalid SQLite mode %q: must be %q or %q", mode, ModeRead, ModeWrite)
	}

	db, err := sql.Open("sqlite3", dsn(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open metastore (%s): %w", mode, err)
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping metastore (%s): %w", mode, err)
	}
	return db, nil
}

// OpenSQLitePair opens the write pool and a read pool of readMaxOpen
// connections on the same file. The write pool is closed if the read pool
// cannot be opened.
func OpenSQLitePair(path string, readMaxOpen int) (writeDB, readDB *sql.DB, err error) {
	if writeDB, err = OpenSQLite(path, ModeWrite, 0); err != nil {
		return nil, nil, err
	}
	if readDB, err = OpenSQLite(path, ModeRead, readMaxOpen); err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}
	return writeDB, readDB, nil
}

func dsn(path string, mode Mode) string {
	params := url.Values{}
	for k, v := range pragmas {
		params.Set(k, v)
	}
	if mode == ModeWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
