package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"prism-console/internal/config"
	"prism-console/internal/domain"
)

// APIKeyResolver maps a raw API key to the operator it belongs to.
type APIKeyResolver interface {
	Resolve(ctx context.Context, raw string) (domain.ContextPrincipal, error)
}

// Authenticator resolves the operator of a request from a bearer token or an
// API key and stores it in the request context.
type Authenticator struct {
	validator JWTValidator
	keys      APIKeyResolver
	cfg       config.AuthConfig
	logger    *slog.Logger
}

// NewAuthenticator creates an Authenticator. validator and keys may be nil to
// disable that credential kind.
func NewAuthenticator(validator JWTValidator, keys APIKeyResolver, cfg config.AuthConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}
	return &Authenticator{validator: validator, keys: keys, cfg: cfg, logger: logger.With("component", "auth")}
}

// Middleware tries the bearer token first, then the API key, and answers 401
// when neither identifies an operator.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return a.MiddlewareWithFallback(writeUnauthorized)
}

// MiddlewareWithFallback is Middleware with a custom response for
// unauthenticated requests.
func (a *Authenticator) MiddlewareWithFallback(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := a.authenticate(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
		})
	}
}

func (a *Authenticator) authenticate(r *http.Request) (domain.ContextPrincipal, bool) {
	ctx := r.Context()
	if auth := r.Header.Get("Authorization"); a.validator != nil && strings.HasPrefix(auth, "Bearer ") {
		claims, err := a.validator.Validate(ctx, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			a.logger.Debug("bearer token rejected", "error", err)
			return domain.ContextPrincipal{}, false
		}
		if claims.Subject == "" {
			a.logger.Debug("bearer token has no subject")
			return domain.ContextPrincipal{}, false
		}
		return domain.ContextPrincipal{
			Name:    claims.Subject,
			Role:    strings.ToUpper(claims.Role),
			IsAdmin: claims.Admin,
			Type:    "user",
		}, true
	}

	if raw := r.Header.Get(a.cfg.APIKeyHeader); raw != "" && a.keys != nil {
		p, err := a.keys.Resolve(ctx, raw)
		if err != nil {
			a.logger.Debug("api key rejected", "error", err)
			return domain.ContextPrincipal{}, false
		}
		return p, true
	}
	return domain.ContextPrincipal{}, false
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    401,
		"message": "unauthorized: provide a valid JWT Bearer token or API key",
	})
}
