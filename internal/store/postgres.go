package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend stores documents in the documents table created by the
// goose migrations in /migrations. Each write bumps the row's version.
type PostgresBackend struct {
	db     db
	closer func()
}

// NewPostgresBackend constructs a PostgresBackend on the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
// closer, if non-nil, is called by Close.
func NewPostgresBackend(conn db, closer func()) *PostgresBackend {
	return &PostgresBackend{db: conn, closer: closer}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT body FROM documents WHERE key = @key`

	var body []byte
	err := b.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store.PostgresBackend.Get: %w", err)
	}
	return body, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key string, data []byte) error {
	const q = `
		INSERT INTO documents (key, body)
		VALUES (@key, @body::jsonb)
		ON CONFLICT (key) DO UPDATE
		SET body       = EXCLUDED.body,
		    version    = documents.version + 1,
		    updated_at = now()`

	_, err := b.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "body": string(data)})
	if err != nil {
		return fmt.Errorf("store.PostgresBackend.Put: %w", err)
	}
	return nil
}

// Version returns how many times the document under key has been written.
// Returns ErrKeyNotFound if the key has never been written.
func (b *PostgresBackend) Version(ctx context.Context, key string) (int64, error) {
	const q = `SELECT version FROM documents WHERE key = @key`

	var v int64
	err := b.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrKeyNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("store.PostgresBackend.Version: %w", err)
	}
	return v, nil
}

func (b *PostgresBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.Query(ctx, `SELECT key FROM documents ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("store.PostgresBackend.Keys: %w", err)
	}
	defer rows.Close()

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("store.PostgresBackend.Keys: rows: %w", err)
	}
	return keys, nil
}

func (b *PostgresBackend) Close() error {
	if b.closer != nil {
		b.closer()
	}
	return nil
}
