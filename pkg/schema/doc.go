// Package schema defines the normalized, format-agnostic schema model shared
// by every contract format the engine understands.
//
// # Overview
//
// Contracts arrive in very different shapes: OpenAPI documents, GraphQL SDL,
// JSON Schema, Avro schemas, Protocol Buffer definitions and SQL table
// definitions. Before any comparison happens, a per-format Adapter maps its
// native shape onto the closed Node variant set defined here. The differ and
// the rule tables only ever see this model, which lets one differ and one
// aggregator serve all formats.
//
// # Node Variants
//
// The variant set is closed. Format-unique constructs (GraphQL interfaces,
// OpenAPI security schemes, Protobuf oneof) are expressed through the Union
// and Record shapes rather than by growing the set:
//
//	Scalar     leaf type (string, int64, bytes, ...)
//	Record     named collection of fields, with reserved names/numbers
//	Enum       named symbol set, with reserved symbols
//	Union      oneOf/anyOf/oneof variants
//	Array      homogeneous list
//	Map        key/value pairs
//	Operation  route + method + parameters + request body + responses
//	Service    named group of operations
//
// # Stable Paths
//
// Every node is addressed by a Path: a sequence of identity tokens used to
// match the same logical entity across two schema versions even when the
// tree shape differs. Name-keyed formats (OpenAPI, GraphQL, JSON Schema, SQL)
// use the name chain; tag-keyed formats (Avro, Protobuf) additionally carry
// the numeric tag so a field rename without a tag change is recognized as a
// rename rather than a remove plus add.
//
// # Adapters
//
// An Adapter is a pure function from raw bytes to a Model. Adapters are
// registered on an AdapterRegistry instance owned by the caller; there is no
// process-global registry. Parse failures are reported as *ParseError and
// halt before the engine is ever invoked.
//
// Models are immutable once produced and live only for the duration of one
// comparison. Callers that want caching key it by content hash themselves.
package schema
