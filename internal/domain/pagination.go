package domain

import (
	"encoding/base64"
	"strconv"
)

// Page sizes for list operations.
const (
	DefaultMaxResults = 100
	MaxMaxResults     = 1000
)

// PageRequest is offset paging over the append-only logs. PageToken is
// opaque to clients and safe to carry in a query string.
type PageRequest struct {
	MaxResults int
	PageToken  string
}

// Validate rejects a token that EncodePageToken did not produce.
func (p PageRequest) Validate() error {
	if _, ok := decodeOffset(p.PageToken); !ok {
		return ErrValidation("invalid page_token")
	}
	return nil
}

// Offset is the row offset the token points at; 0 for an empty or
// malformed token.
func (p PageRequest) Offset() int {
	offset, _ := decodeOffset(p.PageToken)
	return offset
}

// Limit returns the effective page size, clamped to [1, MaxMaxResults].
func (p PageRequest) Limit() int {
	switch {
	case p.MaxResults <= 0:
		return DefaultMaxResults
	case p.MaxResults > MaxMaxResults:
		return MaxMaxResults
	default:
		return p.MaxResults
	}
}

// EncodePageToken returns the token for offset, or "" when offset is not
// positive.
func EncodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// TrimPage cuts rows read with one row of lookahead (Limit()+1) down to the
// page size and returns the token of the following page, if there is one.
func TrimPage[T any](p PageRequest, rows []T) ([]T, string) {
	limit := p.Limit()
	if len(rows) <= limit {
		return rows, ""
	}
	return rows[:limit], EncodePageToken(p.Offset() + limit)
}

func decodeOffset(token string) (int, bool) {
	if token == "" {
		return 0, true
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, false
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, false
	}
	return offset, true
}
