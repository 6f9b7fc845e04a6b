package domain

import "time"

// APIKey is a hashed credential bound to an operator name.
type APIKey struct {
	ID            int64
	Name          string
	KeyPrefix     string // first 8 chars for identification
	KeyHash       string // SHA-256 of raw key; raw key is never stored
	PrincipalName string
	IsAdmin       bool
	ExpiresAt     *time.Time
	CreatedAt     time.Time
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

// CreateAPIKeyRequest holds parameters for creating a new API key.
type CreateAPIKeyRequest struct {
	PrincipalName string
	Name          string
	IsAdmin       bool
	ExpiresAt     *time.Time
}

// Validate checks that the request is well-formed.
func (r *CreateAPIKeyRequest) Validate() error {
	if r.PrincipalName == "" {
		return ErrValidation("principal name is required")
	}
	if r.Name == "" {
		return ErrValidation("api key name is required")
	}
	return nil
}
