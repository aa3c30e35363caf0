package rules

import "github.com/ternhq/tern/pkg/schema"

// NewSQLClassifier builds the decision table for SQL table contracts. A
// column is a field, NOT NULL maps to required, and a DEFAULT clause to the
// field default. Widenings list the column retypes engines perform without
// data loss.
func NewSQLClassifier() *Table {
	t := NewTable(schema.FormatSQL)
	t.reserved = true
	t.strictConsumerCaveat = "breaks consumers using SELECT * with positional column access"

	t.AllowWidening(schema.ScalarInt32, schema.ScalarInt64)
	t.AllowWidening(schema.ScalarFloat32, schema.ScalarFloat64)
	t.AllowWidening(schema.ScalarInt32, schema.ScalarDecimal)
	t.AllowWidening(schema.ScalarInt64, schema.ScalarDecimal)
	t.AllowWidening(schema.ScalarDate, schema.ScalarTimestamp)

	return t
}
