// Package config provides application configuration management from environment variables.
//
// Configuration is loaded with sensible defaults for all settings and
// validated before use.
//
// Server settings:
//
//	TERN_HOST="0.0.0.0"
//	TERN_PORT="8080"
//	TERN_READ_TIMEOUT="15s"
//	TERN_WRITE_TIMEOUT="15s"
//	TERN_IDLE_TIMEOUT="60s"
//	TERN_SHUTDOWN_TIMEOUT="30s"
//
// Storage settings:
//
//	TERN_STORAGE_TYPE="sqlite"  # sqlite, postgres
//	TERN_SQLITE_PATH="tern.db"
//	TERN_POSTGRES_URL="postgres://..."
//	TERN_POSTGRES_MAX_CONNS="20"
//	TERN_POSTGRES_MIN_CONNS="2"
//	TERN_POSTGRES_TIMEOUT="10s"
//
// Observability settings:
//
//	TERN_LOG_LEVEL="info"  # debug, info, warn, error
//	TERN_METRICS_ENABLED="true"
package config
