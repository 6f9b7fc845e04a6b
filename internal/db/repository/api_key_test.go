package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "prism-console/internal/db"
	"prism-console/internal/domain"
)

func setupAPIKeyTest(t *testing.T) *APIKeyRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAPIKeyRepo(writeDB)
}

func hashTestKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func TestAPIKeyRepo_CreateAndLookup(t *testing.T) {
	repo := setupAPIKeyTest(t)
	ctx := context.Background()

	rawKey := "raw-api-key-1234567890"
	keyHash := hashTestKey(rawKey)
	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	created, err := repo.Create(ctx, &domain.APIKey{
		Name:          "ci-key",
		KeyPrefix:     rawKey[:8],
		KeyHash:       keyHash,
		PrincipalName: "alice",
		IsAdmin:       true,
		ExpiresAt:     &expires,
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.GetByHash(ctx, keyHash)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "ci-key", found.Name)
	assert.Equal(t, "alice", found.PrincipalName)
	assert.True(t, found.IsAdmin)
	require.NotNil(t, found.ExpiresAt)
	assert.True(t, expires.Equal(*found.ExpiresAt))
	assert.False(t, found.Expired(time.Now()))
}

func TestAPIKeyRepo_NotFound(t *testing.T) {
	repo := setupAPIKeyTest(t)

	_, err := repo.GetByHash(context.Background(), hashTestKey("missing"))
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestAPIKeyRepo_DuplicateHash(t *testing.T) {
	repo := setupAPIKeyTest(t)
	ctx := context.Background()
	key := &domain.APIKey{Name: "a", KeyPrefix: "abcdefgh", KeyHash: hashTestKey("dup"), PrincipalName: "alice"}

	_, err := repo.Create(ctx, key)
	require.NoError(t, err)
	_, err = repo.Create(ctx, key)
	var conflict *domain.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestAPIKeyRepo_NilKey(t *testing.T) {
	repo := setupAPIKeyTest(t)
	_, err := repo.Create(context.Background(), nil)
	var validation *domain.ValidationError
	assert.True(t, errors.As(err, &validation))
}
