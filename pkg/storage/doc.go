// Package storage persists named contract versions.
//
// A Store holds the raw contract text for every pushed version of a named
// contract, keyed by contract name and version string. Two backends are
// provided: SQLite for single-binary local use and PostgreSQL for shared
// deployments. Open selects the backend from Config.Type.
//
// Content is hashed with xxhash on write so identical pushes can be
// detected without comparing bodies. Lookups that miss return ErrNotFound.
package storage
