// Package apikey issues API keys for operators and resolves presented keys.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"prism-console/internal/domain"
)

// Service provides API key management operations.
type Service struct {
	repo   domain.APIKeyRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new apikey Service.
func NewService(repo domain.APIKeyRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger.With("component", "apikey"), now: time.Now}
}

// HashKey returns the stored form of a raw key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Create generates a new API key for req.PrincipalName. Only admins may
// create keys for other operators or admin keys. Returns the raw key (shown
// once) and the stored key metadata.
func (s *Service) Create(ctx context.Context, req domain.CreateAPIKeyRequest) (string, *domain.APIKey, error) {
	caller, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return "", nil, domain.ErrAccessDenied("authentication required")
	}
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	if !caller.IsAdmin && (req.PrincipalName != caller.Name || req.IsAdmin) {
		return "", nil, domain.ErrAccessDenied("only admins can create keys for other operators")
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return "", nil, domain.ErrValidation("expires_at must be in the future")
	}

	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", nil, fmt.Errorf("generate key: %w", err)
	}
	rawKey := hex.EncodeToString(rawBytes)

	key, err := s.repo.Create(ctx, &domain.APIKey{
		Name:          req.Name,
		KeyPrefix:     rawKey[:8],
		KeyHash:       HashKey(rawKey),
		PrincipalName: req.PrincipalName,
		IsAdmin:       req.IsAdmin,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("api key created", "caller", caller.Name, "principal", key.PrincipalName,
		"name", key.Name, "prefix", key.KeyPrefix)
	return rawKey, key, nil
}

// Resolve returns the operator a raw key belongs to. Unknown and expired
// keys are AccessDenied.
func (s *Service) Resolve(ctx context.Context, raw string) (domain.ContextPrincipal, error) {
	key, err := s.repo.GetByHash(ctx, HashKey(raw))
	if err != nil {
		return domain.ContextPrincipal{}, domain.ErrAccessDenied("invalid api key")
	}
	if key.Expired(s.now()) {
		return domain.ContextPrincipal{}, domain.ErrAccessDenied("api key %s expired", key.KeyPrefix)
	}
	return domain.ContextPrincipal{Name: key.PrincipalName, IsAdmin: key.IsAdmin, Type: "api_key"}, nil
}
