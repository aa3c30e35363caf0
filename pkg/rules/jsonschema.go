package rules

import "github.com/ternhq/tern/pkg/schema"

// NewJSONSchemaClassifier builds the JSON Schema decision table. JSON has a
// single number line, so integer to number is the only scalar widening;
// everything else rides on the shared constraint rules (enum, bounds,
// pattern, required).
func NewJSONSchemaClassifier() *Table {
	t := NewTable(schema.FormatJSONSchema)
	t.strictConsumerCaveat = "breaks consumers validating payloads with additionalProperties: false"

	t.AllowWidening(schema.ScalarInteger, schema.ScalarNumber)

	return t
}
