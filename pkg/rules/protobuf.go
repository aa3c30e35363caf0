package rules

import "github.com/ternhq/tern/pkg/schema"

// NewProtobufClassifier builds the protobuf decision table. Field identity is
// the tag number, so the table enables reservation checks and lists the wire
// substitutions varint and length-delimited encodings tolerate.
func NewProtobufClassifier() *Table {
	t := NewTable(schema.FormatProtobuf)
	t.reserved = true
	t.strictConsumerCaveat = "breaks consumers doing exhaustive oneof or switch matching"

	// Varint encodings are interchangeable on the wire; the wider reader
	// decodes every value the narrower writer can produce.
	t.AllowWidening(schema.ScalarInt32, schema.ScalarInt64)
	t.AllowWidening(schema.ScalarUint32, schema.ScalarUint64)
	t.AllowWidening(schema.ScalarUint32, schema.ScalarInt64)
	t.AllowWidening(schema.ScalarInt32, schema.ScalarUint32)
	t.AllowWidening(schema.ScalarBool, schema.ScalarInt32)
	t.AllowWidening(schema.ScalarBool, schema.ScalarInt64)

	// string and bytes share a wire type and convert both ways.
	t.AllowWidening(schema.ScalarString, schema.ScalarBytes)
	t.AllowWidening(schema.ScalarBytes, schema.ScalarString)

	return t
}
