package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/crimsoncollab/backend/migrations"
)

// Backend kinds accepted by OpenBackend.
const (
	KindMemory   = "memory"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindRedis    = "redis"
	KindMongo    = "mongo"
)

// Options selects and configures a Backend.
type Options struct {
	Kind          string
	DatabaseURL   string
	SQLitePath    string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
}

// OpenBackend opens the backend named by o.Kind. For postgres it also applies
// any pending goose migrations before returning.
func OpenBackend(ctx context.Context, o Options, log *slog.Logger) (Backend, error) {
	switch o.Kind {
	case "", KindMemory:
		return NewMemoryBackend(), nil
	case KindSQLite:
		return OpenSQLite(ctx, o.SQLitePath)
	case KindRedis:
		return OpenRedis(ctx, o.RedisURL)
	case KindMongo:
		return OpenMongo(ctx, o.MongoURI, o.MongoDatabase)
	case KindPostgres:
		return openPostgres(ctx, o.DatabaseURL, log)
	default:
		return nil, fmt.Errorf("store.OpenBackend: unknown backend %q", o.Kind)
	}
}

func openPostgres(ctx context.Context, dsn string, log *slog.Logger) (*PostgresBackend, error) {
	// New() does not open connections immediately; Ping does.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store.openPostgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store.openPostgres: ping: %w", err)
	}

	// goose needs database/sql; borrow a *sql.DB view of the same pool.
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("store.openPostgres: goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("store.openPostgres: migrate: %w", err)
	}
	if log != nil {
		log.InfoContext(ctx, "database migrations applied", "count", len(results))
	}

	return NewPostgresBackend(pool, pool.Close), nil
}
