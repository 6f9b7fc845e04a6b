package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one result row keyed by upper-case column name.
type Row map[string]any

// Session is an authenticated warehouse session. Query executes a statement
// and collects every result row; statements without a result set return no rows.
type Session interface {
	Query(ctx context.Context, stmt string, args ...any) ([]Row, error)
}

// String returns the column as a string, or "" when missing or NULL.
func (r Row) String(col string) string {
	v, ok := r[strings.ToUpper(col)]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// Int64 returns the column as an int64. ok is false when the column is
// missing, NULL, or not integral.
func (r Row) Int64(col string) (int64, bool) {
	v, ok := r[strings.ToUpper(col)]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case uint64:
		return int64(t), true //nolint:gosec // sequence values fit in int64
	case uint32:
		return int64(t), true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Float64 returns the column as a float64, or 0 when missing or not numeric.
func (r Row) Float64(col string) float64 {
	v, ok := r[strings.ToUpper(col)]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		return f
	default:
		return 0
	}
}

// Time returns the column as a time.Time, or the zero time.
func (r Row) Time(col string) time.Time {
	v, ok := r[strings.ToUpper(col)]
	if !ok || v == nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// SessionCloser is a Session that holds a pinned connection until closed.
type SessionCloser interface {
	Session
	Close() error
}

// SessionProvider opens a warehouse session on behalf of an operator.
type SessionProvider interface {
	OpenSession(ctx context.Context, p ContextPrincipal) (SessionCloser, error)
}
