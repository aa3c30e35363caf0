package rules

import (
	"fmt"

	"github.com/ternhq/tern/pkg/schema"
)

// For returns the decision table for a format.
func For(format schema.Format) (*Table, error) {
	switch format {
	case schema.FormatProtobuf:
		return NewProtobufClassifier(), nil
	case schema.FormatAvro:
		return NewAvroClassifier(), nil
	case schema.FormatOpenAPI:
		return NewOpenAPIClassifier(), nil
	case schema.FormatGraphQL:
		return NewGraphQLClassifier(), nil
	case schema.FormatJSONSchema:
		return NewJSONSchemaClassifier(), nil
	case schema.FormatSQL:
		return NewSQLClassifier(), nil
	default:
		return nil, fmt.Errorf("no rule table for format %q", format)
	}
}

// All returns every format decision table, keyed by format.
func All() map[schema.Format]*Table {
	return map[schema.Format]*Table{
		schema.FormatProtobuf:   NewProtobufClassifier(),
		schema.FormatAvro:       NewAvroClassifier(),
		schema.FormatOpenAPI:    NewOpenAPIClassifier(),
		schema.FormatGraphQL:    NewGraphQLClassifier(),
		schema.FormatJSONSchema: NewJSONSchemaClassifier(),
		schema.FormatSQL:        NewSQLClassifier(),
	}
}
