package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/migrations"
	"github.com/pkordes/crimsoncollab/backend/testutil"
)

// TestMigrations applies every migration to a clean database, checks the
// documents table the postgres store backend relies on, then rolls back.
// Skipped unless TEST_DATABASE_URL is set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err)

	// The store package's TestMain may have migrated this database already.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "reset to version 0")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.NotEmpty(t, results)

	assert.Equal(t, map[string]string{
		"key":        "text",
		"body":       "jsonb",
		"version":    "bigint",
		"updated_at": "timestamp with time zone",
	}, documentColumns(t, db))

	// A fresh document starts at version 1; the body column refuses non-JSON.
	_, err = db.ExecContext(ctx, `INSERT INTO documents (key, body) VALUES ('crimsonCollabTrips', '[]')`)
	require.NoError(t, err)
	var version int64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT version FROM documents WHERE key = 'crimsonCollabTrips'`).Scan(&version))
	assert.EqualValues(t, 1, version)

	_, err = db.ExecContext(ctx, `INSERT INTO documents (key, body) VALUES ('broken', '{"name":')`)
	assert.Error(t, err, "body must be valid JSON")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	assert.Empty(t, documentColumns(t, db), "rollback drops the documents table")
}

// documentColumns maps each column of the documents table to its data type.
func documentColumns(t *testing.T, db *sql.DB) map[string]string {
	t.Helper()

	rows, err := db.QueryContext(context.Background(), `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = 'documents'`)
	require.NoError(t, err)
	defer rows.Close()

	cols := map[string]string{}
	for rows.Next() {
		var name, typ string
		require.NoError(t, rows.Scan(&name, &typ))
		cols[name] = typ
	}
	require.NoError(t, rows.Err())
	return cols
}
