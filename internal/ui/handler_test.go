package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-console/internal/config"
	"prism-console/internal/domain"
	"prism-console/internal/testutil"
)

type stubRoles struct {
	nodes []domain.RoleHierarchyNode
	err   error
}

func (s stubRoles) RoleHierarchy(context.Context, domain.Session) ([]domain.RoleHierarchyNode, error) {
	return s.nodes, s.err
}

func newTestHandler(reader *testutil.MockAuditReader, roles stubRoles) (*Handler, *testutil.MockSessionProvider) {
	provider := &testutil.MockSessionProvider{NewSession: testutil.NewFakeSession}
	h := NewHandler(provider, roles, reader, config.AuthConfig{APIKeyHeader: "X-API-Key"}, false,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, provider
}

func signedIn(r *http.Request) *http.Request {
	ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{Name: "alice", Role: "SECURITYADMIN", IsAdmin: true})
	return r.WithContext(ctx)
}

func TestParseAuditQuery(t *testing.T) {
	now := time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ui/audit", nil)
		form, filter, err := parseAuditQuery(r, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01", form.From)
		assert.Equal(t, "2026-03-31", form.To)
		assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC), *filter.To)
		assert.Nil(t, filter.Status)
		assert.Equal(t, auditPageSize, filter.Page.MaxResults)
	})

	t.Run("filters", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ui/audit?from=2026-03-10&to=2026-03-11&event_type=CREATE_ROLE&event_type=GRANT_ROLE&status=failed", nil)
		form, filter, err := parseAuditQuery(r, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"CREATE_ROLE", "GRANT_ROLE"}, filter.EventTypes)
		require.NotNil(t, filter.Status)
		assert.Equal(t, domain.StatusFailed, *filter.Status)

		values, err := url.ParseQuery(form.encode())
		require.NoError(t, err)
		assert.Equal(t, []string{"CREATE_ROLE", "GRANT_ROLE"}, values["event_type"])
		assert.Equal(t, "FAILED", values.Get("status"))
	})

	tests := []struct {
		name  string
		query string
	}{
		{"bad_from", "from=03/10/2026"},
		{"bad_to", "to=tomorrow"},
		{"bad_status", "status=PENDING"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ui/audit?"+tt.query, nil)
			_, _, err := parseAuditQuery(r, now)
			var validation *domain.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
}

func TestAuditLog_RendersTableAndCharts(t *testing.T) {
	reader := &testutil.MockAuditReader{
		ListEventsFn: func(context.Context, domain.Session, domain.AuditFilter) ([]domain.AuditEvent, string, error) {
			return []domain.AuditEvent{
				{EventID: 7, EventTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), InvokedBy: "ALICE", InvokedByRole: "SYSADMIN",
					EventType: domain.EventCreateDatabase, ObjectName: "SALES", SQLCommand: "CREATE DATABASE SALES", Status: domain.StatusSuccess},
			}, "", nil
		},
	}
	h, provider := newTestHandler(reader, stubRoles{})

	rec := httptest.NewRecorder()
	h.AuditLog(rec, signedIn(httptest.NewRequest(http.MethodGet, "/ui/audit", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "CREATE DATABASE SALES")
	assert.Contains(t, body, `id="audit-figures"`)
	assert.Contains(t, body, "plotly_dark")
	assert.Contains(t, body, "Signed in as alice (SECURITYADMIN)")
	require.Len(t, provider.Sessions, 1)
	assert.True(t, provider.Sessions[0].Closed)
}

func TestAuditLog_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		providerErr error
		wantStatus  int
	}{
		{"not_admin", domain.ErrAccessDenied("admin privileges required"), nil, http.StatusForbidden},
		{"warehouse_down", nil, errors.New("dial tcp: timeout"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &testutil.MockAuditReader{
				ListEventsFn: func(context.Context, domain.Session, domain.AuditFilter) ([]domain.AuditEvent, string, error) {
					return nil, "", tt.err
				},
			}
			h, provider := newTestHandler(reader, stubRoles{})
			provider.Err = tt.providerErr

			rec := httptest.NewRecorder()
			h.AuditLog(rec, signedIn(httptest.NewRequest(http.MethodGet, "/ui/audit", nil)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAuditExport(t *testing.T) {
	reader := &testutil.MockAuditReader{
		ListEventsFn: func(context.Context, domain.Session, domain.AuditFilter) ([]domain.AuditEvent, string, error) {
			return []domain.AuditEvent{{EventID: 1, EventType: domain.EventGrantRole, Status: domain.StatusFailed, Message: "denied"}}, "", nil
		},
	}
	h, _ := newTestHandler(reader, stubRoles{})

	rec := httptest.NewRecorder()
	h.AuditExport(rec, signedIn(httptest.NewRequest(http.MethodGet, "/ui/audit/export.csv", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
}

func TestRoleHierarchy(t *testing.T) {
	auditID := int64(12)
	reader := &testutil.MockAuditReader{
		ListRoleHierarchyEventsFn: func(context.Context, domain.Session, domain.PageRequest) ([]domain.RoleHierarchyEvent, string, error) {
			return []domain.RoleHierarchyEvent{{LogID: 3, AuditEventID: &auditID, CreatedRoleName: "FIN_ANALYST",
				CreatedRoleType: domain.RoleTypeFunctional, Status: domain.StatusSuccess}}, "", nil
		},
	}

	t.Run("graph", func(t *testing.T) {
		h, _ := newTestHandler(reader, stubRoles{nodes: []domain.RoleHierarchyNode{{Role: "SYSADMIN", GrantedRoles: []string{"ETL", "FIN_ANALYST"}}}})
		rec := httptest.NewRecorder()
		h.RoleHierarchy(rec, signedIn(httptest.NewRequest(http.MethodGet, "/ui/roles/hierarchy", nil)))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "ETL, FIN_ANALYST")
		assert.Contains(t, body, "FIN_ANALYST")
		assert.Contains(t, body, ">12<")
	})

	t.Run("unsupported_warehouse", func(t *testing.T) {
		h, _ := newTestHandler(reader, stubRoles{err: domain.ErrValidation("role hierarchy is not supported by the duckdb warehouse")})
		rec := httptest.NewRecorder()
		h.RoleHierarchy(rec, signedIn(httptest.NewRequest(http.MethodGet, "/ui/roles/hierarchy", nil)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "not supported by the duckdb warehouse")
	})
}

func TestLoginSubmit_SetsCookies(t *testing.T) {
	h, _ := newTestHandler(&testutil.MockAuditReader{}, stubRoles{})

	tests := []struct {
		kind       string
		wantCookie string
	}{
		{"bearer", bearerCookieName},
		{"api_key", apiKeyCookieName},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			form := url.Values{"kind": {tt.kind}, "token": {"secret-token"}}
			r := httptest.NewRequest(http.MethodPost, "/ui/login", strings.NewReader(form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			h.LoginSubmit(rec, r)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			var set *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == tt.wantCookie {
					set = c
				}
			}
			require.NotNil(t, set)
			assert.Equal(t, "secret-token", set.Value)
			assert.True(t, set.HttpOnly)
		})
	}
}

func TestCookieHeaderBridge(t *testing.T) {
	h, _ := newTestHandler(&testutil.MockAuditReader{}, stubRoles{})
	var gotAuth, gotKey string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-API-Key")
	})

	r := httptest.NewRequest(http.MethodGet, "/ui/audit", nil)
	r.AddCookie(&http.Cookie{Name: bearerCookieName, Value: "jwt-value"})
	r.AddCookie(&http.Cookie{Name: apiKeyCookieName, Value: "key-value"})
	h.CookieHeaderBridge(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "Bearer jwt-value", gotAuth)
	assert.Equal(t, "key-value", gotKey)
}

func TestRedirectToLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	RedirectToLogin(rec, httptest.NewRequest(http.MethodGet, "/ui/audit", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/ui/login", rec.Header().Get("Location"))
}
