package api

import (
	"context"
	"net/http"
	"time"

	"prism-console/internal/domain"
)

// apiKeyService defines the API key management operations used by the API handler.
type apiKeyService interface {
	Create(ctx context.Context, req domain.CreateAPIKeyRequest) (string, *domain.APIKey, error)
}

type createAPIKeyRequest struct {
	Principal string     `json:"principal"`
	Name      string     `json:"name"`
	Admin     bool       `json:"admin"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type apiKeyResponse struct {
	ID        int64      `json:"id"`
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	Principal string     `json:"principal"`
	Admin     bool       `json:"admin"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SetAPIKeys enables POST /v1/api-keys. Call before Routes.
func (h *Handler) SetAPIKeys(svc apiKeyService) {
	h.apiKeys = svc
}

// CreateAPIKey handles POST /v1/api-keys. An empty principal means the
// caller. The raw key is only ever returned here.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Principal == "" {
		if p, ok := domain.PrincipalFromContext(r.Context()); ok {
			req.Principal = p.Name
		}
	}
	rawKey, key, err := h.apiKeys.Create(r.Context(), domain.CreateAPIKeyRequest{
		PrincipalName: req.Principal,
		Name:          req.Name,
		IsAdmin:       req.Admin,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, apiKeyResponse{
		ID:        key.ID,
		Key:       rawKey,
		Name:      key.Name,
		KeyPrefix: key.KeyPrefix,
		Principal: key.PrincipalName,
		Admin:     key.IsAdmin,
		ExpiresAt: key.ExpiresAt,
		CreatedAt: key.CreatedAt,
	})
}
