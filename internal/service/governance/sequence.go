package governance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// SequenceAllocator draws ids from named warehouse sequences. Uniqueness and
// ordering under concurrent callers come from the sequence itself.
type SequenceAllocator struct {
	dialect warehouse.Dialect
	logger  *slog.Logger
}

// NewSequenceAllocator creates a new SequenceAllocator.
func NewSequenceAllocator(dialect warehouse.Dialect, logger *slog.Logger) *SequenceAllocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequenceAllocator{dialect: dialect, logger: logger.With("component", "sequence-allocator")}
}

// NextValue returns the next value of sequence. Every failure is a
// *domain.AllocationError.
func (a *SequenceAllocator) NextValue(ctx context.Context, session domain.Session, sequence string) (int64, error) {
	if err := ddl.ValidateQualifiedName(sequence); err != nil {
		return 0, &domain.AllocationError{Sequence: sequence, Err: err}
	}
	if session == nil {
		return 0, &domain.AllocationError{Sequence: sequence, Err: domain.ErrSessionUnavailable}
	}

	rows, err := session.Query(ctx, a.dialect.NextValSQL(sequence))
	if err != nil {
		return 0, &domain.AllocationError{Sequence: sequence, Err: err}
	}
	if len(rows) == 0 {
		return 0, &domain.AllocationError{Sequence: sequence, Err: errors.New("sequence returned no row")}
	}
	id, ok := rows[0].Int64("ID")
	if !ok {
		return 0, &domain.AllocationError{
			Sequence: sequence,
			Err:      fmt.Errorf("sequence returned non-integer value %v", rows[0]["ID"]),
		}
	}
	a.logger.Debug("allocated id", "sequence", sequence, "id", id)
	return id, nil
}
