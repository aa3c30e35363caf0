package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ternhq/tern/pkg/schema"
)

// ErrNotFound is returned when a contract or version does not exist.
var ErrNotFound = errors.New("not found")

// Version is one stored revision of a named contract.
type Version struct {
	ID        string        `json:"id"`
	Contract  string        `json:"contract"`
	Version   string        `json:"version"`
	Format    schema.Format `json:"format"`
	Content   string        `json:"content,omitempty"`
	Hash      string        `json:"hash"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store is the persistence surface for contract versions. Implementations
// must be safe for concurrent use.
type Store interface {
	// PutVersion stores a new version. The contract row is created on first
	// push. Pushing an existing (contract, version) pair fails.
	PutVersion(ctx context.Context, v *Version) error

	// GetVersion fetches one version with its content.
	GetVersion(ctx context.Context, contract, version string) (*Version, error)

	// LatestVersion fetches the most recently pushed version of a contract.
	LatestVersion(ctx context.Context, contract string) (*Version, error)

	// ListVersions returns all versions of a contract, oldest first,
	// without content.
	ListVersions(ctx context.Context, contract string) ([]*Version, error)

	// ListContracts returns the known contract names, sorted.
	ListContracts(ctx context.Context) ([]string, error)

	HealthCheck(ctx context.Context) error
	Close() error
}

// ContentHash returns the stable hex digest used to detect identical pushes.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// Config selects and tunes a storage backend.
type Config struct {
	Type string // "sqlite" or "postgres"

	// SQLite config
	SQLitePath string

	// PostgreSQL config
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:             "sqlite",
		SQLitePath:       "tern.db",
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
	}
}

// Open creates the backend named by config.Type.
func Open(config Config) (Store, error) {
	switch config.Type {
	case "sqlite", "":
		return NewSQLiteStore(config.SQLitePath)
	case "postgres":
		return NewPostgresStore(config)
	}
	return nil, fmt.Errorf("unknown storage type: %q", config.Type)
}
