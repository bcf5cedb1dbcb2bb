package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores snapshots in a Postgres table, one row per state
// name. The URI is a standard postgres:// DSN; an optional name query
// parameter selects a row other than "default" and is stripped before
// connecting.
type PostgresBackend struct {
	pool *pgxpool.Pool
	name string
}

// NewPostgresBackend connects and ensures the state table exists.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres state location: %w", err)
	}

	name := "default"
	q := u.Query()
	if v := q.Get("name"); v != "" {
		name = v
		q.Del("name")
		u.RawQuery = q.Encode()
	}

	pool, err := pgxpool.New(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("connecting postgres state backend: %w", err)
	}

	b := &PostgresBackend{pool: pool, name: name}
	if err := b.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *PostgresBackend) ensureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS layermake_state (
			name       text PRIMARY KEY,
			snapshot   jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating state table: %w", err)
	}
	return nil
}

// Load implements Backend. A missing row means no snapshot yet.
func (b *PostgresBackend) Load(ctx context.Context) (*Snapshot, error) {
	var data []byte
	err := b.pool.QueryRow(ctx,
		`SELECT snapshot FROM layermake_state WHERE name = $1`, b.name).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading state %q: %w", b.name, err)
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decoding state %q: %w", b.name, err)
	}
	return snap, nil
}

// Save implements Backend. The upsert is atomic, so concurrent saves
// cannot interleave.
func (b *PostgresBackend) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = b.pool.Exec(ctx, `
		INSERT INTO layermake_state (name, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = now()`,
		b.name, data)
	if err != nil {
		return fmt.Errorf("saving state %q: %w", b.name, err)
	}
	return nil
}

// Close implements Backend.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
