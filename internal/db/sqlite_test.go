package db

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		mode       Mode
		wantTxLock bool
	}{
		{mode: ModeWrite, wantTxLock: true},
		{mode: ModeRead, wantTxLock: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := dsn("/var/lib/prism/meta.sqlite", tt.mode)

			assert.True(t, strings.HasPrefix(got, "/var/lib/prism/meta.sqlite?"))
			for k, v := range pragmas {
				assert.Contains(t, got, k+"="+v)
			}
			assert.Equal(t, tt.wantTxLock, strings.Contains(got, "_txlock=immediate"))
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.sqlite")

	tests := []struct {
		name      string
		mode      Mode
		maxOpen   int
		wantConns int
	}{
		{name: "write_ignores_max_open", mode: ModeWrite, maxOpen: 8, wantConns: 1},
		{name: "read", mode: ModeRead, maxOpen: 2, wantConns: 2},
		{name: "read_default", mode: ModeRead, maxOpen: 0, wantConns: defaultReadConns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenSQLite(path, tt.mode, tt.maxOpen)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			assert.Equal(t, tt.wantConns, db.Stats().MaxOpenConnections)

			var journal string
			require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journal))
			assert.Equal(t, "wal", strings.ToLower(journal))

			var busy, fk int
			require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busy))
			require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
			assert.Equal(t, 5000, busy)
			assert.Equal(t, 1, fk)
		})
	}
}

func TestOpenSQLite_Errors(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "meta.sqlite"), Mode("admin"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")

	_, err = OpenSQLite("/nonexistent/dir/meta.sqlite", ModeWrite, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping metastore")

	_, _, err = OpenSQLitePair("/nonexistent/dir/meta.sqlite", 4)
	require.Error(t, err)
}

// TestOpenTestSQLite_Migrated checks that the seeded environments written
// through the write pool are visible on the read pool.
func TestOpenTestSQLite_Migrated(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	_, err := writeDB.Exec("INSERT INTO environments (name, description) VALUES ('UAT', 'User acceptance')")
	require.NoError(t, err)

	rows, err := readDB.Query("SELECT name FROM environments ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"DEV", "PROD", "TEST", "UAT"}, names)

	// Running the migrations again is a no-op.
	require.NoError(t, RunMigrations(writeDB))
}

// TestOpenSQLitePair_ConcurrentWritesAndReads issues API key writes while
// readers poll; busy_timeout must absorb the lock contention.
func TestOpenSQLitePair_ConcurrentWritesAndReads(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	const n = 20
	var wg sync.WaitGroup
	writeErrs := make([]error, n)
	readErrs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, writeErrs[i] = writeDB.Exec(
				"INSERT INTO api_keys (name, key_prefix, key_hash, principal_name) VALUES (?, ?, ?, ?)",
				"k", "prefix", strings.Repeat("h", i+1), "alice")
		}(i)
		go func(i int) {
			defer wg.Done()
			var count int
			readErrs[i] = readDB.QueryRow("SELECT count(*) FROM api_keys").Scan(&count)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.NoError(t, writeErrs[i], "writer %d", i)
		assert.NoError(t, readErrs[i], "reader %d", i)
	}
	var count int
	require.NoError(t, readDB.QueryRow("SELECT count(*) FROM api_keys").Scan(&count))
	assert.Equal(t, n, count)
}
