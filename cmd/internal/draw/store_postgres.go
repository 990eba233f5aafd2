package draw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// drawRowID pins the aggregate to a single row: the service manages one
// draw at a time, replaced wholesale by setup and reset.
const drawRowID = 1

// PostgresStore persists the draw aggregate as one JSONB row.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
	log    *slog.Logger
}

// StoreOption configures PostgresStore.
type StoreOption func(*PostgresStore) error

// WithSchema sets the DB schema used by the store (default: "santa").
func WithSchema(schema string) StoreOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return ErrInvalidInput
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, log *slog.Logger, opts ...StoreOption) (*PostgresStore, error) {
	if pool == nil {
		return nil, ErrInvalidInput
	}
	if log == nil {
		log = slog.Default()
	}
	st := &PostgresStore{pool: pool, schema: "santa", log: log}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// EnsureSchema creates the schema and draws table if absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{s.schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	draws := s.table()
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+draws+` (
	    id         smallint PRIMARY KEY,
	    data       jsonb NOT NULL,
	    updated_at timestamptz NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Load reads the aggregate row. An absent or unparsable row degrades to
// the empty default Draw; Load never fails toward the core.
func (s *PostgresStore) Load(ctx context.Context) (Draw, error) {
	if err := ctx.Err(); err != nil {
		return Draw{}, err
	}

	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM `+s.table()+` WHERE id = $1`, drawRowID,
	).Scan(&raw)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn("store.load.unreadable", "err", err)
		}
		return Empty(), nil
	}

	var d Draw
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.Warn("store.load.corrupt", "err", err)
		return Empty(), nil
	}
	d.normalize()
	return d, nil
}

// Save upserts the aggregate row. The single-statement upsert keeps the
// write atomic from the core's perspective.
func (s *PostgresStore) Save(ctx context.Context, d Draw) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draw: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (id, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		drawRowID, raw,
	)
	if err != nil {
		return fmt.Errorf("write draw: %w", err)
	}
	return nil
}

// Close closes the store. The pool is owned by the app and closed there.
func (s *PostgresStore) Close() error { return nil }

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "draws"}.Sanitize()
}
