package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"heaterwatch/internal/types"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema creates the table used by PostgresStore.
const Schema = `CREATE TABLE IF NOT EXISTS heater_state (
	id         TEXT PRIMARY KEY,
	mode       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps the mode record in a single row of heater_state.
type PostgresStore struct {
	db     DBTX
	id     string
	logger *slog.Logger
}

// NewPostgresStore creates a PostgresStore backed by the given connection
// (pool or transaction).
func NewPostgresStore(db DBTX, recordID string, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	if recordID == "" {
		recordID = DefaultRecordID
	}
	return &PostgresStore{db: db, id: recordID, logger: logger}
}

// EnsureSchema creates the state table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return types.NewStateStoreError("failed to create heater_state table", err)
	}
	return nil
}

// Get returns the stored record, or nil when the row does not exist.
func (s *PostgresStore) Get(ctx context.Context) (*Record, error) {
	var (
		mode      string
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT mode, updated_at FROM heater_state WHERE id = $1`,
		s.id,
	).Scan(&mode, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewStateStoreError("failed to read state record", err)
	}
	return decodeRecord(mode, updatedAt)
}

// Put upserts the record with mode.
func (s *PostgresStore) Put(ctx context.Context, mode types.Mode, at time.Time) error {
	if !mode.Valid() {
		return types.NewStateStoreError(fmt.Sprintf("refusing to persist invalid mode %q", mode), nil)
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO heater_state (id, mode, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET mode = EXCLUDED.mode, updated_at = EXCLUDED.updated_at`,
		s.id, string(mode), at.UTC(),
	)
	if err != nil {
		return types.NewStateStoreError("failed to write state record", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewStateStoreError("state upsert affected no rows", nil)
	}

	s.logger.InfoContext(ctx, "state record written",
		"record_id", s.id,
		"mode", string(mode),
	)
	return nil
}

// Probe runs a trivial query to check connectivity.
func (s *PostgresStore) Probe(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("postgres probe failed: %w", err)
	}
	return nil
}
