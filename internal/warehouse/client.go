package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/snowflakedb/gosnowflake"

	"prism-console/internal/domain"
)

// Compile-time checks.
var (
	_ domain.SessionProvider = (*Client)(nil)
	_ domain.SessionCloser   = (*ConnSession)(nil)
)

// Client opens per-request warehouse sessions over a connection pool.
type Client struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open opens a connection pool for driver ("snowflake" or "duckdb") and
// verifies it. An empty DuckDB dsn opens an in-memory database.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Client, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.Name(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s warehouse: %w", dialect.Name(), err)
	}
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s warehouse: %w", dialect.Name(), err)
	}
	return NewClient(db, dialect, logger), nil
}

// NewClient wraps an already opened pool.
func NewClient(db *sql.DB, dialect Dialect, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{db: db, dialect: dialect, logger: logger.With("component", "warehouse")}
}

// Dialect returns the client's SQL dialect.
func (c *Client) Dialect() Dialect { return c.dialect }

// DB returns the underlying pool.
func (c *Client) DB() *sql.DB { return c.db }

// Close closes the pool. Sessions opened afterwards are unavailable.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Session pins one connection for p and runs the dialect's session setup.
// The caller must Close the session. Any failure to obtain a usable
// connection wraps domain.ErrSessionUnavailable.
func (c *Client) Session(ctx context.Context, p domain.ContextPrincipal) (*ConnSession, error) {
	if c == nil || c.db == nil {
		return nil, domain.ErrSessionUnavailable
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: pin connection: %w", domain.ErrSessionUnavailable, err)
	}
	s := &ConnSession{conn: conn}
	for _, stmt := range c.dialect.SessionInit(p) {
		if _, err := s.Query(ctx, stmt); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: session setup: %w", domain.ErrSessionUnavailable, err)
		}
	}
	c.logger.Debug("warehouse session opened", "principal", p.Name)
	return s, nil
}

// OpenSession implements domain.SessionProvider.
func (c *Client) OpenSession(ctx context.Context, p domain.ContextPrincipal) (domain.SessionCloser, error) {
	s, err := c.Session(ctx, p)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ConnSession is a warehouse session bound to one pinned connection.
// Queries on one session are serialized.
type ConnSession struct {
	mu     sync.Mutex
	conn   *sql.Conn
	closed bool
}

// Query executes stmt and collects every row, keyed by upper-case column name.
func (s *ConnSession) Query(ctx context.Context, stmt string, args ...any) ([]domain.Row, error) {
	if s == nil {
		return nil, domain.ErrSessionUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.conn == nil {
		return nil, domain.ErrSessionUnavailable
	}

	rows, err := s.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		if errors.Is(err, sql.ErrConnDone) {
			return nil, fmt.Errorf("%w: %w", domain.ErrSessionUnavailable, err)
		}
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return scanRows(rows)
}

// Close releases the pinned connection back to the pool.
func (s *ConnSession) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// scanRows materializes sql.Rows into upper-case keyed rows.
func scanRows(rows *sql.Rows) ([]domain.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = strings.ToUpper(c)
	}

	var out []domain.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(domain.Row, len(cols))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				row[keys[i]] = string(b)
			} else {
				row[keys[i]] = v
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
