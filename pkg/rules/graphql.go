package rules

import "github.com/ternhq/tern/pkg/schema"

// NewGraphQLClassifier builds the GraphQL SDL decision table. SDL scalars
// have no safe substitutions, so the widening table stays empty and every
// type change is reported as incompatible. Enum growth carries the closed
// matching caveat since clients commonly switch exhaustively over symbols.
func NewGraphQLClassifier() *Table {
	t := NewTable(schema.FormatGraphQL)
	t.strictConsumerCaveat = "breaks clients doing closed matching over enum values"
	return t
}
