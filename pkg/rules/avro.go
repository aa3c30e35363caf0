package rules

import "github.com/ternhq/tern/pkg/schema"

// NewAvroClassifier builds the Avro decision table around the resolution
// rules a reader applies against a writer schema: numeric promotions, the
// string/bytes equivalence, and alias-backed renames resolved upstream by
// the differ.
func NewAvroClassifier() *Table {
	t := NewTable(schema.FormatAvro)
	t.reserved = true
	t.strictConsumerCaveat = "breaks consumers that reject unknown symbols instead of using the enum default"

	t.AllowWidening(schema.ScalarInt32, schema.ScalarInt64)
	t.AllowWidening(schema.ScalarInt32, schema.ScalarFloat32)
	t.AllowWidening(schema.ScalarInt32, schema.ScalarFloat64)
	t.AllowWidening(schema.ScalarInt64, schema.ScalarFloat32)
	t.AllowWidening(schema.ScalarInt64, schema.ScalarFloat64)
	t.AllowWidening(schema.ScalarFloat32, schema.ScalarFloat64)
	t.AllowWidening(schema.ScalarString, schema.ScalarBytes)
	t.AllowWidening(schema.ScalarBytes, schema.ScalarString)

	return t
}
