package repository

import (
	"context"
	"database/sql"
	"time"

	"prism-console/internal/domain"
)

var _ domain.APIKeyRepository = (*APIKeyRepo)(nil)

// APIKeyRepo stores hashed operator API keys in SQLite.
type APIKeyRepo struct {
	db *sql.DB
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{db: db}
}

// Create inserts a new API key. Only the hash of the key is stored.
func (r *APIKeyRepo) Create(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	if k == nil {
		return nil, domain.ErrValidation("api key is required")
	}
	var expires sql.NullTime
	if k.ExpiresAt != nil {
		expires = sql.NullTime{Time: k.ExpiresAt.UTC(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (name, key_prefix, key_hash, principal_name, is_admin, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, k.Name, k.KeyPrefix, k.KeyHash, k.PrincipalName, boolToInt(k.IsAdmin), expires)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.getOne(ctx, `
		SELECT id, name, key_prefix, key_hash, principal_name, is_admin, expires_at, created_at
		FROM api_keys WHERE id = ?
	`, id)
}

// GetByHash returns the API key with the given SHA-256 hash.
func (r *APIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return r.getOne(ctx, `
		SELECT id, name, key_prefix, key_hash, principal_name, is_admin, expires_at, created_at
		FROM api_keys WHERE key_hash = ?
	`, keyHash)
}

func (r *APIKeyRepo) getOne(ctx context.Context, stmt string, args ...interface{}) (*domain.APIKey, error) {
	var (
		k         domain.APIKey
		isAdmin   int64
		expiresAt sql.NullTime
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, stmt, args...).Scan(
		&k.ID,
		&k.Name,
		&k.KeyPrefix,
		&k.KeyHash,
		&k.PrincipalName,
		&isAdmin,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	k.IsAdmin = isAdmin != 0
	k.CreatedAt = createdAt
	if expiresAt.Valid {
		t := expiresAt.Time
		k.ExpiresAt = &t
	}
	return &k, nil
}
