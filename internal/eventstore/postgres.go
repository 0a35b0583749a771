package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists event streams in a single append-only table. The
// (stream_id, version) primary key is what turns a stale expected version
// into a unique violation, i.e. the optimistic concurrency check.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const schema = `
	CREATE TABLE IF NOT EXISTS events (
		stream_id   TEXT NOT NULL,
		version     BIGINT NOT NULL,
		event_name  TEXT NOT NULL,
		payload     JSONB NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (stream_id, version)
	);
`

// EnsureSchema creates the events table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure events schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) ([]Envelope, error) {
	envelopes, err := encode(streamID, expectedVersion, events, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	var head int64
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1`, streamID).Scan(&head)
	if err != nil {
		return nil, fmt.Errorf("read stream head: %w", err)
	}
	if head != expectedVersion {
		return nil, ErrConcurrencyConflict
	}

	for _, env := range envelopes {
		_, err = tx.Exec(ctx,
			`INSERT INTO events (stream_id, version, event_name, payload, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
			env.StreamID, env.Version, env.EventName, env.Payload, env.RecordedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, ErrConcurrencyConflict
			}
			return nil, fmt.Errorf("append event %s v%d: %w", env.StreamID, env.Version, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return envelopes, nil
}

func (s *PostgresStore) Load(ctx context.Context, streamID string) ([]Envelope, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT stream_id, version, event_name, payload, recorded_at FROM events WHERE stream_id = $1 ORDER BY version`,
		streamID)
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", streamID, err)
	}
	defer rows.Close()

	var envelopes []Envelope
	for rows.Next() {
		var env Envelope
		if err := rows.Scan(&env.StreamID, &env.Version, &env.EventName, &env.Payload, &env.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		envelopes = append(envelopes, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stream %s: %w", streamID, err)
	}
	return envelopes, nil
}

func (s *PostgresStore) StreamIDs(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT stream_id FROM events WHERE stream_id LIKE $1 || '%' ORDER BY stream_id`,
		prefix)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stream id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stream ids: %w", err)
	}
	return ids, nil
}
