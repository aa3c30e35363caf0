// Package observability bundles the operational plumbing shared by the
// server and CLI: structured JSON logging over slog, Prometheus metrics,
// health probes, panic recovery, and graceful shutdown.
//
// Loggers are immutable; WithField and friends return derived loggers.
// Metrics are registered against an explicit prometheus.Registry so tests
// can use isolated registries.
package observability
