// Package api exposes the contract registry over HTTP.
//
// The server mounts three surfaces on one gorilla/mux router:
//
//   - comparison: POST /api/v1/compare for ad-hoc checks of two raw
//     contract bodies, and per-contract compatibility endpoints that read
//     stored versions
//   - registry: CRUD-ish routes for pushing and listing contract versions
//     backed by a storage.Store
//   - operations: health probes and the Prometheus /metrics endpoint
//
// Handlers speak JSON both ways, using the httputil helpers for encoding
// and the error envelope.
package api
