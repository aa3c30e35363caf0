package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/ternhq/tern/pkg/schema"
)

// SQLiteStore is the single-file local backend.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS contract_versions (
	id         TEXT PRIMARY KEY,
	contract   TEXT NOT NULL,
	version    TEXT NOT NULL,
	format     TEXT NOT NULL,
	content    BLOB NOT NULL,
	hash       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (contract, version)
);
CREATE INDEX IF NOT EXISTS idx_contract_versions_contract
	ON contract_versions (contract, created_at);
`

// NewSQLiteStore opens (and if needed initializes) a SQLite database.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite handles one writer at a time; a second connection would just
	// trade "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) PutVersion(ctx context.Context, v *Version) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.Hash = ContentHash([]byte(v.Content))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contract_versions (id, contract, version, format, content, hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Contract, v.Version, string(v.Format), []byte(v.Content), v.Hash, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store version %s of %s: %w", v.Version, v.Contract, err)
	}
	return nil
}

func (s *SQLiteStore) GetVersion(ctx context.Context, contract, version string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract, version, format, content, hash, created_at
		FROM contract_versions
		WHERE contract = ? AND version = ?`,
		contract, version,
	)
	return scanVersion(row)
}

func (s *SQLiteStore) LatestVersion(ctx context.Context, contract string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract, version, format, content, hash, created_at
		FROM contract_versions
		WHERE contract = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`,
		contract,
	)
	return scanVersion(row)
}

func (s *SQLiteStore) ListVersions(ctx context.Context, contract string) ([]*Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract, version, format, hash, created_at
		FROM contract_versions
		WHERE contract = ?
		ORDER BY created_at ASC, rowid ASC`,
		contract,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*Version
	for rows.Next() {
		var v Version
		var format string
		if err := rows.Scan(&v.ID, &v.Contract, &v.Version, &format, &v.Hash, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.Format = schema.Format(format)
		versions = append(versions, &v)
	}
	return versions, rows.Err()
}

func (s *SQLiteStore) ListContracts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT contract FROM contract_versions ORDER BY contract`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan contract name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*Version, error) {
	var v Version
	var format string
	var content []byte
	err := row.Scan(&v.ID, &v.Contract, &v.Version, &format, &content, &v.Hash, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	v.Format = schema.Format(format)
	v.Content = string(content)
	return &v, nil
}
