package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"aegminer/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are rejected rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages mining history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "ledger.db"))
}

// OpenPath opens the ledger database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginSession inserts a new mining session row.
func (s *Store) BeginSession(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// RecordAddress stores the resolved reward address for a session.
func (s *Store) RecordAddress(ctx context.Context, sessionID, address string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET wallet_address = ? WHERE id = ?`,
		address, sessionID,
	)
	if err != nil {
		return fmt.Errorf("record address: %w", err)
	}
	return nil
}

// RecordBlock appends a mined block and bumps the session counter.
func (s *Store) RecordBlock(ctx context.Context, sessionID string, seq int64, hash string, minedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin block tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO blocks (session_id, seq, block_hash, mined_at) VALUES (?, ?, ?, ?)`,
		sessionID, seq, nullableString(hash), minedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert block: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET blocks_mined = ? WHERE id = ?`,
		seq, sessionID,
	); err != nil {
		return fmt.Errorf("update session counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}
	return nil
}

// EndSession marks a session as stopped. fatalError is empty for a clean stop.
func (s *Store) EndSession(ctx context.Context, sessionID string, stoppedAt time.Time, fatalError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET stopped_at = ?, fatal_error = ? WHERE id = ? AND stopped_at IS NULL`,
		stoppedAt.UTC().Format(time.RFC3339Nano), nullableString(fatalError), sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Sessions returns the most recent sessions, newest first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, wallet_address, started_at, stopped_at, blocks_mined, fatal_error
         FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Session returns a single session record by identifier.
func (s *Store) Session(ctx context.Context, id string) (SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, wallet_address, started_at, stopped_at, blocks_mined, fatal_error
         FROM sessions WHERE id = ?`, id)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return SessionRecord{}, fmt.Errorf("query session: %w", err)
		}
		return SessionRecord{}, sql.ErrNoRows
	}
	return scanSession(rows)
}

// SessionBlocks returns the mined blocks for one session, oldest first.
func (s *Store) SessionBlocks(ctx context.Context, sessionID string) ([]BlockRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, seq, block_hash, mined_at FROM blocks
         WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var records []BlockRecord
	for rows.Next() {
		var record BlockRecord
		var hash sql.NullString
		var minedAt string
		if err := rows.Scan(&record.SessionID, &record.Seq, &hash, &minedAt); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		record.BlockHash = hash.String
		if record.MinedAt, err = time.Parse(time.RFC3339Nano, minedAt); err != nil {
			return nil, fmt.Errorf("parse mined_at: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// TotalBlocks reports the number of blocks mined across all sessions.
func (s *Store) TotalBlocks(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM blocks").Scan(&total); err != nil {
		return 0, fmt.Errorf("count blocks: %w", err)
	}
	return total, nil
}

func scanSession(rows *sql.Rows) (SessionRecord, error) {
	var record SessionRecord
	var address, stoppedAt, fatalError sql.NullString
	var startedAt string
	if err := rows.Scan(&record.ID, &address, &startedAt, &stoppedAt, &record.BlocksMined, &fatalError); err != nil {
		return SessionRecord{}, fmt.Errorf("scan session: %w", err)
	}
	record.WalletAddress = address.String
	record.FatalError = fatalError.String

	parsed, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	record.StartedAt = parsed

	if stoppedAt.Valid {
		parsed, err := time.Parse(time.RFC3339Nano, stoppedAt.String)
		if err != nil {
			return SessionRecord{}, fmt.Errorf("parse stopped_at: %w", err)
		}
		record.StoppedAt = &parsed
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
