package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenSQLite_AppliesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seats.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	for _, table := range []string{"users", "webinars", "participations"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// Reopening an existing file must not fail on the schema.
	require.NoError(t, db.Close())
	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), " ")
	assert.Error(t, err)
}

func TestMigratePostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, MigratePostgres(ctx, pool))
	require.NoError(t, MigratePostgres(ctx, pool))
}

func TestNewPool_InvalidDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: "not-a-port", MaxConns: 1}

	_, err := NewPool(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
