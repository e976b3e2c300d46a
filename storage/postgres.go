package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS weather_kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// pgxConn is the subset of *pgxpool.Pool used here; pgxmock satisfies it in tests
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres stores values in a shared database, for deployments where the
// history should follow the user across machines.
type Postgres struct {
	conn pgxConn
	psql sq.StatementBuilderType
}

var _ KV = (*Postgres)(nil)

// NewPostgres connects to dsn and applies the schema
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store, err := newPostgresWithConn(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func newPostgresWithConn(ctx context.Context, conn pgxConn) (*Postgres, error) {
	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return &Postgres{
		conn: conn,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := p.psql.Select("value").From("weather_kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build query: %w", err)
	}

	var value string
	err = p.conn.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := p.psql.Insert("weather_kv").
		Columns("key", "value", "updated_at").
		Values(key, string(value), time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := p.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.conn.Close()
	return nil
}
