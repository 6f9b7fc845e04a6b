package domain

import (
	"context"
	"time"
)

// EnvironmentRepository stores the registered deployment environments.
type EnvironmentRepository interface {
	List(ctx context.Context) ([]Environment, error)
	GetByName(ctx context.Context, name string) (*Environment, error)
	Upsert(ctx context.Context, e *Environment) error
}

// APIKeyRepository stores hashed API keys for operator authentication.
type APIKeyRepository interface {
	Create(ctx context.Context, k *APIKey) (*APIKey, error)
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
}

// AuditLogger appends audit events. Implementations never fail the caller.
type AuditLogger interface {
	LogAuditEvent(ctx context.Context, session Session, in AuditEventInput) LogResult
}

// RoleHierarchyLogger appends role-provisioning events.
type RoleHierarchyLogger interface {
	LogRoleHierarchyEvent(ctx context.Context, session Session, in RoleHierarchyEventInput) LogResult
}

// AuditReader reads back the append-only logs for review. The returned
// string is the token of the next page, empty on the last page.
type AuditReader interface {
	ListEvents(ctx context.Context, session Session, filter AuditFilter) ([]AuditEvent, string, error)
	ListRoleHierarchyEvents(ctx context.Context, session Session, page PageRequest) ([]RoleHierarchyEvent, string, error)
}

// TimeRange bounds a telemetry or review query. Zero values are open ends.
type TimeRange struct {
	From time.Time
	To   time.Time
}
