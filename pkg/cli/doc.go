// Package cli implements the tern command line interface.
//
// The CLI has two halves. The local commands (check-compat, diff,
// batch-check, watch) parse contract files on disk and run the
// compatibility engine directly. The registry commands (push, history,
// serve) talk to or run the HTTP registry.
//
// check-compat and batch-check return ErrIncompatible when the contracts
// parse cleanly but violate the requested compatibility mode, letting the
// entrypoint distinguish a negative verdict (exit 1) from an operational
// failure (exit 2).
package cli
