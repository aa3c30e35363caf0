package rules

import "github.com/ternhq/tern/pkg/schema"

// NewOpenAPIClassifier builds the OpenAPI decision table. The shared rules
// already carry the request/response asymmetry; this table contributes the
// JSON numeric promotions and format refinements.
func NewOpenAPIClassifier() *Table {
	t := NewTable(schema.FormatOpenAPI)
	t.strictConsumerCaveat = "breaks consumers validating payloads with additionalProperties: false"

	t.AllowWidening(schema.ScalarInteger, schema.ScalarNumber)
	t.AllowWidening(schema.ScalarInt32, schema.ScalarInt64)
	t.AllowWidening(schema.ScalarInt32, schema.ScalarInteger)
	t.AllowWidening(schema.ScalarFloat32, schema.ScalarFloat64)
	t.AllowWidening(schema.ScalarFloat32, schema.ScalarNumber)
	t.AllowWidening(schema.ScalarFloat64, schema.ScalarNumber)

	return t
}
