package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "prism-console/internal/db"
	"prism-console/internal/db/repository"
	"prism-console/internal/middleware"
	"prism-console/internal/service/apikey"
)

// isolateEnv points the CLI at a fresh metastore and an in-process DuckDB
// warehouse, and returns the metastore path.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	metaDB := filepath.Join(dir, "meta.sqlite")
	t.Setenv("ENV", "development")
	t.Setenv("META_DB_PATH", metaDB)
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("WAREHOUSE_DRIVER", "duckdb")
	t.Setenv("WAREHOUSE_DSN", "")
	t.Setenv("LOG_LEVEL", "error")
	return metaDB
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	envFile := filepath.Join(t.TempDir(), "missing.env")
	cmd.SetArgs(append([]string{"--env-file", envFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "migrate", "bootstrap", "apikey", "token", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "prism version dev (commit: none)\n", out)
}

func TestInvalidOutputFormat(t *testing.T) {
	isolateEnv(t)
	_, err := runCLI(t, "-o", "yaml", "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestInvalidConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("WAREHOUSE_DRIVER", "oracle")
	_, err := runCLI(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WAREHOUSE_DRIVER")
}

func TestMigrate(t *testing.T) {
	metaDB := isolateEnv(t)

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, metaDB)

	// Idempotent.
	_, err = runCLI(t, "migrate")
	require.NoError(t, err)
}

func TestTokenCreate(t *testing.T) {
	isolateEnv(t)

	out, err := runCLI(t, "token", "create", "--subject", "alice", "--role", "SYSADMIN", "--admin")
	require.NoError(t, err)

	v, err := middleware.NewHS256Validator("cli-test-secret")
	require.NoError(t, err)
	claims, err := v.Validate(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "SYSADMIN", claims.Role)
	assert.True(t, claims.Admin)
}

func TestTokenCreate_RequiresSubject(t *testing.T) {
	isolateEnv(t)
	_, err := runCLI(t, "token", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject")
}

func TestAPIKeyCreate(t *testing.T) {
	metaDB := isolateEnv(t)

	out, err := runCLI(t, "-o", "json", "apikey", "create", "--principal", "bob", "--name", "ci", "--expires", "24h")
	require.NoError(t, err)

	var got struct {
		Key       string `json:"key"`
		Principal string `json:"principal"`
		Admin     bool   `json:"admin"`
		ExpiresAt string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Key, 64)
	assert.Equal(t, "bob", got.Principal)
	assert.False(t, got.Admin)
	assert.NotEmpty(t, got.ExpiresAt)

	db, err := internaldb.OpenSQLite(metaDB, internaldb.ModeRead, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	stored, err := repository.NewAPIKeyRepo(db).GetByHash(context.Background(), apikey.HashKey(got.Key))
	require.NoError(t, err)
	assert.Equal(t, "ci", stored.Name)
	assert.Equal(t, got.Key[:8], stored.KeyPrefix)
}

func TestBootstrap(t *testing.T) {
	isolateEnv(t)

	out, err := runCLI(t, "bootstrap")
	require.NoError(t, err)
	assert.Contains(t, out, "ACCESS_CONTROL.AUDIT_LOG")
	assert.Contains(t, out, "ACCESS_CONTROL.ROLE_HIERARCHY_LOG")
}
