// Package adapters parses contract documents into the normalized schema
// model.
//
// One adapter exists per supported format: protobuf (via protocompile),
// Avro and JSON Schema (JSON documents), OpenAPI (YAML or JSON), GraphQL
// SDL, and SQL CREATE TABLE scripts. Each adapter maps its format's type
// vocabulary onto the closed node set in pkg/schema and never leaks
// format-specific structures to callers.
//
// Adapters are pure functions over their input bytes: same bytes in, same
// model out, with declaration order preserved so diffs stay deterministic.
// Constructs an adapter cannot express in the model are parsed permissively
// and surface later as UNKNOWN findings rather than failing the parse.
//
// Use DefaultRegistry to get a registry with every adapter wired:
//
//	reg := adapters.DefaultRegistry(log)
//	model, err := reg.Parse(raw, schema.FormatAvro)
package adapters
