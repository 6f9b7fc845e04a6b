package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"prism-console/internal/domain"
)

var _ domain.EnvironmentRepository = (*EnvironmentRepo)(nil)

// EnvironmentRepo stores the registered deployment environments in SQLite.
type EnvironmentRepo struct {
	db *sql.DB
}

// NewEnvironmentRepo creates a new EnvironmentRepo.
func NewEnvironmentRepo(db *sql.DB) *EnvironmentRepo {
	return &EnvironmentRepo{db: db}
}

// List returns every environment ordered by name.
func (r *EnvironmentRepo) List(ctx context.Context) ([]domain.Environment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, description, created_at FROM environments ORDER BY name
	`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Environment
	for rows.Next() {
		var e domain.Environment
		if err := rows.Scan(&e.Name, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan environment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByName returns the environment with the given name. Names are
// stored upper-case.
func (r *EnvironmentRepo) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	var e domain.Environment
	err := r.db.QueryRowContext(ctx, `
		SELECT name, description, created_at FROM environments WHERE name = ?
	`, strings.ToUpper(name)).Scan(&e.Name, &e.Description, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("environment %q not found", name)
		}
		return nil, mapDBError(err)
	}
	return &e, nil
}

// Upsert registers an environment or updates its description.
func (r *EnvironmentRepo) Upsert(ctx context.Context, e *domain.Environment) error {
	if e == nil || strings.TrimSpace(e.Name) == "" {
		return domain.ErrValidation("environment name is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO environments (name, description) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET description = excluded.description
	`, strings.ToUpper(strings.TrimSpace(e.Name)), e.Description)
	return mapDBError(err)
}
