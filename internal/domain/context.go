package domain

import "context"

type principalKey struct{}

// ContextPrincipal carries the authenticated operator through request context.
type ContextPrincipal struct {
	Name    string
	Role    string // warehouse role claimed by the operator, may be empty
	IsAdmin bool
	Type    string // "user" or "api_key"
}

// WithPrincipal stores a ContextPrincipal in the context.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the ContextPrincipal from the context.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}
