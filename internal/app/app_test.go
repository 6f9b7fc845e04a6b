package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prism-console/internal/config"
	"prism-console/internal/db"
	"prism-console/internal/middleware"
	"prism-console/internal/warehouse"
)

const testSecret = "test-secret"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	envFile := filepath.Join(t.TempDir(), "environments.yaml")
	require.NoError(t, os.WriteFile(envFile, []byte("environments:\n  - name: uat\n    description: User acceptance\n"), 0o600))
	return &config.Config{
		ListenAddr:         ":0",
		EnvironmentsFile:   envFile,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"*"},
		MetadataCacheTTL:   time.Minute,
		Auth:               config.AuthConfig{JWTSecret: testSecret, APIKeyHeader: "X-API-Key"},
		Warehouse: config.WarehouseConfig{
			Driver:        warehouse.DriverDuckDB,
			AuditDatabase: warehouse.DefaultAuditDatabase,
			AuditSchema:   warehouse.DefaultAuditSchema,
			AutoBootstrap: true,
		},
	}
}

func newTestApp(t *testing.T) (*App, http.Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	writeDB, readDB := db.OpenTestSQLite(t)
	client, err := warehouse.Open(ctx, warehouse.DriverDuckDB, "", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	a, err := New(ctx, Deps{Cfg: testConfig(t), WriteDB: writeDB, ReadDB: readDB, Warehouse: client, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, a.NewRouter(ctx)
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := middleware.SignHS256(testSecret, "alice", "SYSADMIN", true, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(t *testing.T, h http.Handler, method, path, body, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		r.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestPublicEndpoints(t *testing.T) {
	_, h := newTestApp(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "healthz", path: "/healthz", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{name: "metrics", path: "/metrics", wantStatus: http.StatusOK, wantBody: "go_goroutines"},
		{name: "api requires auth", path: "/v1/environments", wantStatus: http.StatusUnauthorized},
		{name: "ui redirects to login", path: "/ui/audit", wantStatus: http.StatusSeeOther},
		{name: "login page", path: "/ui/login", wantStatus: http.StatusOK, wantBody: "PRISM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tt.path, "", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestEnvironmentsFileRegistered(t *testing.T) {
	_, h := newTestApp(t)

	rec := serve(t, h, http.MethodGet, "/v1/environments", "", bearer(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	var names []string
	for _, e := range got.Data {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "UAT")
	assert.Contains(t, names, "DEV")
}

// TestFailedActionIsAudited runs an action DuckDB rejects and reads the
// FAILED audit event back through the API.
func TestFailedActionIsAudited(t *testing.T) {
	_, h := newTestApp(t)
	auth := bearer(t)

	rec := serve(t, h, http.MethodPost, "/v1/databases", `{"name":"SALES"}`, auth)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var action map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &action))
	assert.Equal(t, "FAILED", action["status"])
	assert.Equal(t, "logged", action["audit_outcome"])
	assert.NotNil(t, action["audit_event_id"])

	rec = serve(t, h, http.MethodGet, "/v1/audit/events?status=FAILED", "", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var events struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events.Data, 1)
	assert.Equal(t, "CREATE_DATABASE", events.Data[0]["event_type"])
	assert.Equal(t, "SALES", events.Data[0]["object_name"])
	assert.Equal(t, "alice", events.Data[0]["invoked_by"])
}

func TestAPIKeyRoundTrip(t *testing.T) {
	_, h := newTestApp(t)

	rec := serve(t, h, http.MethodPost, "/v1/api-keys", `{"principal":"bob","name":"ci"}`, bearer(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Key       string `json:"key"`
		Principal string `json:"principal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "bob", created.Principal)

	r := httptest.NewRequest(http.MethodGet, "/v1/environments", nil)
	r.Header.Set("X-API-Key", created.Key)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	r = httptest.NewRequest(http.MethodGet, "/v1/environments", nil)
	r.Header.Set("X-API-Key", "not-a-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_RequiresWarehouse(t *testing.T) {
	writeDB, readDB := db.OpenTestSQLite(t)
	_, err := New(context.Background(), Deps{Cfg: testConfig(t), WriteDB: writeDB, ReadDB: readDB})
	assert.Error(t, err)
}
