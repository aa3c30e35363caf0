package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ternhq/tern/pkg/schema"
)

// PostgresStore is the shared-deployment backend.
type PostgresStore struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS contract_versions (
	id         UUID PRIMARY KEY,
	contract   TEXT NOT NULL,
	version    TEXT NOT NULL,
	format     TEXT NOT NULL,
	content    BYTEA NOT NULL,
	hash       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (contract, version)
);
CREATE INDEX IF NOT EXISTS idx_contract_versions_contract
	ON contract_versions (contract, created_at);
`

// NewPostgresStore connects to PostgreSQL and ensures the schema exists.
func NewPostgresStore(config Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(config.PostgresMaxConns)
	db.SetMaxIdleConns(config.PostgresMinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), config.PostgresTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize postgres schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing connection. The caller owns the
// schema; nothing is created. Used by tests with a mock driver.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) PutVersion(ctx context.Context, v *Version) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.Hash = ContentHash([]byte(v.Content))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contract_versions (id, contract, version, format, content, hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.Contract, v.Version, string(v.Format), []byte(v.Content), v.Hash, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store version %s of %s: %w", v.Version, v.Contract, err)
	}
	return nil
}

func (s *PostgresStore) GetVersion(ctx context.Context, contract, version string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract, version, format, content, hash, created_at
		FROM contract_versions
		WHERE contract = $1 AND version = $2`,
		contract, version,
	)
	return scanVersion(row)
}

func (s *PostgresStore) LatestVersion(ctx context.Context, contract string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract, version, format, content, hash, created_at
		FROM contract_versions
		WHERE contract = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		contract,
	)
	return scanVersion(row)
}

func (s *PostgresStore) ListVersions(ctx context.Context, contract string) ([]*Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract, version, format, hash, created_at
		FROM contract_versions
		WHERE contract = $1
		ORDER BY created_at ASC`,
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

func (s *PostgresStore) ListContracts(ctx context.Context) ([]string, error) {
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

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
