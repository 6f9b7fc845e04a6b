// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"strings"
	"sync"

	"prism-console/internal/domain"
)

// === Warehouse Session Fake ===

// Call is one statement received by a FakeSession.
type Call struct {
	Stmt string
	Args []any
}

// Responder answers a statement.
type Responder func(stmt string, args []any) ([]domain.Row, error)

type rule struct {
	match func(key string) bool
	fn    Responder
}

// FakeSession implements domain.SessionCloser. Statements are answered by
// the first matching rule; unmatched statements return no rows.
type FakeSession struct {
	mu     sync.Mutex
	rules  []rule
	Calls  []Call
	Closed bool
}

// NewFakeSession creates an empty FakeSession.
func NewFakeSession() *FakeSession {
	return &FakeSession{}
}

// On registers fn for statements starting with prefix.
func (s *FakeSession) On(prefix string, fn Responder) *FakeSession {
	prefix = strings.ToUpper(prefix)
	return s.OnMatch(func(key string) bool { return strings.HasPrefix(key, prefix) }, fn)
}

// OnMatch registers fn for statements accepted by match. match receives the
// trimmed, upper-cased statement.
func (s *FakeSession) OnMatch(match func(key string) bool, fn Responder) *FakeSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{match: match, fn: fn})
	return s
}

// Returns registers fixed rows for statements starting with prefix.
func (s *FakeSession) Returns(prefix string, rows ...domain.Row) *FakeSession {
	return s.On(prefix, func(string, []any) ([]domain.Row, error) { return rows, nil })
}

// Fails registers err for statements starting with prefix.
func (s *FakeSession) Fails(prefix string, err error) *FakeSession {
	return s.On(prefix, func(string, []any) ([]domain.Row, error) { return nil, err })
}

// WithIdentity answers the identity statements of either dialect.
func (s *FakeSession) WithIdentity(user, role string) *FakeSession {
	return s.
		Returns("SELECT CURRENT_USER()", domain.Row{"NAME": user}).
		Returns("SELECT CURRENT_ROLE()", domain.Row{"NAME": role}).
		Returns("SELECT getvariable('prism_user')", domain.Row{"NAME": user}).
		Returns("SELECT getvariable('prism_role')", domain.Row{"NAME": role})
}

// WithSequences answers next-value statements with per-sequence counters
// starting at start.
func (s *FakeSession) WithSequences(start int64) *FakeSession {
	var mu sync.Mutex
	next := map[string]int64{}
	seq := func(stmt string, _ []any) ([]domain.Row, error) {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := next[stmt]; !ok {
			next[stmt] = start
		}
		id := next[stmt]
		next[stmt]++
		return []domain.Row{{"ID": id}}, nil
	}
	return s.OnMatch(func(key string) bool {
		return strings.HasPrefix(key, "SELECT NEXTVAL(") || strings.HasSuffix(key, ".NEXTVAL AS ID")
	}, seq)
}

// Query implements domain.Session.
func (s *FakeSession) Query(_ context.Context, stmt string, args ...any) ([]domain.Row, error) {
	s.mu.Lock()
	if s.Closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionUnavailable
	}
	s.Calls = append(s.Calls, Call{Stmt: stmt, Args: args})
	rules := append([]rule(nil), s.rules...)
	s.mu.Unlock()

	key := strings.ToUpper(strings.TrimSpace(stmt))
	for _, r := range rules {
		if r.match(key) {
			return r.fn(stmt, args)
		}
	}
	return nil, nil
}

// Close implements domain.SessionCloser.
func (s *FakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// CallsWithPrefix returns the received statements starting with prefix.
func (s *FakeSession) CallsWithPrefix(prefix string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix = strings.ToUpper(prefix)
	var out []Call
	for _, c := range s.Calls {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(c.Stmt)), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Statements returns every received statement in order.
func (s *FakeSession) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Stmt
	}
	return out
}

// === Session Provider Mock ===

// MockSessionProvider implements domain.SessionProvider for testing. With
// NewSession set every open gets a fresh session; otherwise Session is shared.
type MockSessionProvider struct {
	mu         sync.Mutex
	Session    *FakeSession
	NewSession func() *FakeSession
	Err        error
	Opened     []domain.ContextPrincipal
	Sessions   []*FakeSession
}

// OpenSession implements the interface method for testing.
func (m *MockSessionProvider) OpenSession(_ context.Context, p domain.ContextPrincipal) (domain.SessionCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Opened = append(m.Opened, p)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.NewSession != nil {
		s := m.NewSession()
		m.Sessions = append(m.Sessions, s)
		return s, nil
	}
	if m.Session == nil {
		m.Session = NewFakeSession()
	}
	return m.Session, nil
}

// === Audit Logger Mock ===

// MockAuditLogger implements domain.AuditLogger for testing. Without LogFn
// every call is logged with ids counting up from NextID.
type MockAuditLogger struct {
	mu     sync.Mutex
	LogFn  func(ctx context.Context, session domain.Session, in domain.AuditEventInput) domain.LogResult
	NextID int64
	Inputs []domain.AuditEventInput
}

// LogAuditEvent implements the interface method for testing.
func (m *MockAuditLogger) LogAuditEvent(ctx context.Context, session domain.Session, in domain.AuditEventInput) domain.LogResult {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, in)
	m.mu.Unlock()
	if m.LogFn != nil {
		return m.LogFn(ctx, session, in)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextID++
	return domain.Logged(m.NextID)
}

// Last returns the last logged input, or nil if none.
func (m *MockAuditLogger) Last() *domain.AuditEventInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Inputs) == 0 {
		return nil
	}
	return &m.Inputs[len(m.Inputs)-1]
}

// === Role Hierarchy Logger Mock ===

// MockRoleHierarchyLogger implements domain.RoleHierarchyLogger for testing.
type MockRoleHierarchyLogger struct {
	LogFn  func(ctx context.Context, session domain.Session, in domain.RoleHierarchyEventInput) domain.LogResult
	NextID int64
	Inputs []domain.RoleHierarchyEventInput
}

// LogRoleHierarchyEvent implements the interface method for testing.
func (m *MockRoleHierarchyLogger) LogRoleHierarchyEvent(ctx context.Context, session domain.Session, in domain.RoleHierarchyEventInput) domain.LogResult {
	m.Inputs = append(m.Inputs, in)
	if m.LogFn != nil {
		return m.LogFn(ctx, session, in)
	}
	m.NextID++
	return domain.Logged(m.NextID)
}

// === Audit Reader Mock ===

// MockAuditReader implements domain.AuditReader for testing.
type MockAuditReader struct {
	ListEventsFn              func(ctx context.Context, session domain.Session, filter domain.AuditFilter) ([]domain.AuditEvent, string, error)
	ListRoleHierarchyEventsFn func(ctx context.Context, session domain.Session, page domain.PageRequest) ([]domain.RoleHierarchyEvent, string, error)
}

// ListEvents implements the interface method for testing.
func (m *MockAuditReader) ListEvents(ctx context.Context, session domain.Session, filter domain.AuditFilter) ([]domain.AuditEvent, string, error) {
	if m.ListEventsFn != nil {
		return m.ListEventsFn(ctx, session, filter)
	}
	panic("unexpected call to MockAuditReader.ListEvents")
}

// ListRoleHierarchyEvents implements the interface method for testing.
func (m *MockAuditReader) ListRoleHierarchyEvents(ctx context.Context, session domain.Session, page domain.PageRequest) ([]domain.RoleHierarchyEvent, string, error) {
	if m.ListRoleHierarchyEventsFn != nil {
		return m.ListRoleHierarchyEventsFn(ctx, session, page)
	}
	panic("unexpected call to MockAuditReader.ListRoleHierarchyEvents")
}

// === Environment Repository Mock ===

// MockEnvironmentRepo implements domain.EnvironmentRepository for testing.
type MockEnvironmentRepo struct {
	ListFn      func(ctx context.Context) ([]domain.Environment, error)
	GetByNameFn func(ctx context.Context, name string) (*domain.Environment, error)
	UpsertFn    func(ctx context.Context, e *domain.Environment) error
}

// List implements the interface method for testing.
func (m *MockEnvironmentRepo) List(ctx context.Context) ([]domain.Environment, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	panic("unexpected call to MockEnvironmentRepo.List")
}

// GetByName implements the interface method for testing.
func (m *MockEnvironmentRepo) GetByName(ctx context.Context, name string) (*domain.Environment, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	panic("unexpected call to MockEnvironmentRepo.GetByName")
}

// Upsert implements the interface method for testing.
func (m *MockEnvironmentRepo) Upsert(ctx context.Context, e *domain.Environment) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, e)
	}
	panic("unexpected call to MockEnvironmentRepo.Upsert")
}

// === API Key Repository Mock ===

// MockAPIKeyRepo implements domain.APIKeyRepository for testing.
type MockAPIKeyRepo struct {
	CreateFn    func(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error)
	GetByHashFn func(ctx context.Context, keyHash string) (*domain.APIKey, error)
}

// Create implements the interface method for testing.
func (m *MockAPIKeyRepo) Create(ctx context.Context, k *domain.APIKey) (*domain.APIKey, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, k)
	}
	panic("unexpected call to MockAPIKeyRepo.Create")
}

// GetByHash implements the interface method for testing.
func (m *MockAPIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	if m.GetByHashFn != nil {
		return m.GetByHashFn(ctx, keyHash)
	}
	panic("unexpected call to MockAPIKeyRepo.GetByHash")
}
