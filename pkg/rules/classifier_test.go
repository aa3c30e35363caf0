package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/diff"
	"github.com/ternhq/tern/pkg/schema"
)

func scalarNode(k schema.ScalarKind) *schema.Node {
	return &schema.Node{Kind: schema.KindScalar, Scalar: k}
}

func fieldChange(kind diff.Kind, oldF, newF *schema.Field) diff.Change {
	c := diff.Change{
		Path:     schema.Path{{Name: "User"}},
		Kind:     kind,
		OldField: oldF,
		NewField: newF,
	}
	if oldF != nil {
		c.Path = c.Path.Child(oldF.Name)
	} else if newF != nil {
		c.Path = c.Path.Child(newF.Name)
	}
	return c
}

func TestFieldRemoval(t *testing.T) {
	tbl := NewJSONSchemaClassifier()

	bc := tbl.Classify(fieldChange(diff.Removed, &schema.Field{Name: "email", Required: true}, nil))
	assert.Equal(t, CategoryRemovedField, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)

	bc = tbl.Classify(fieldChange(diff.Removed, &schema.Field{Name: "nickname"}, nil))
	assert.Equal(t, CategoryRemovedField, bc.Category)
	assert.Equal(t, SeverityMinor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)
}

func TestProtobufRemovalReservation(t *testing.T) {
	tbl := NewProtobufClassifier()
	removed := &schema.Field{Name: "email", Tag: 3, HasTag: true}

	// Removed without reserving the tag.
	c := fieldChange(diff.Removed, removed, nil)
	c.NewParent = &schema.Node{Kind: schema.KindRecord, Name: "User"}
	bc := tbl.Classify(c)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Contains(t, bc.Mitigation, "reserve")

	// Removed and properly reserved.
	c.NewParent = &schema.Node{
		Kind:            schema.KindRecord,
		Name:            "User",
		ReservedNumbers: []int32{3},
		ReservedNames:   []string{"email"},
	}
	bc = tbl.Classify(c)
	assert.Equal(t, SeverityMinor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)
}

func TestProtobufReservedReuse(t *testing.T) {
	tbl := NewProtobufClassifier()
	oldParent := &schema.Node{
		Kind:            schema.KindRecord,
		Name:            "User",
		ReservedNumbers: []int32{3},
		ReservedNames:   []string{"email"},
	}

	c := fieldChange(diff.Added, nil, &schema.Field{Name: "contact", Tag: 3, HasTag: true})
	c.OldParent = oldParent
	bc := tbl.Classify(c)
	assert.Equal(t, CategoryReservedNumberReuse, bc.Category)
	assert.Equal(t, SeverityCritical, bc.Severity)
	assert.Equal(t, BreaksBoth, bc.Direction)

	c = fieldChange(diff.Added, nil, &schema.Field{Name: "email", Tag: 9, HasTag: true})
	c.OldParent = oldParent
	bc = tbl.Classify(c)
	assert.Equal(t, CategoryReservedNameReuse, bc.Category)
	assert.Equal(t, SeverityCritical, bc.Severity)
	assert.Equal(t, BreaksBoth, bc.Direction)
}

func TestFieldAddition(t *testing.T) {
	tbl := NewOpenAPIClassifier()

	bc := tbl.Classify(fieldChange(diff.Added, nil, &schema.Field{Name: "tenant", Required: true}))
	assert.Equal(t, CategoryAddedRequiredField, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)

	// A default defuses the required addition.
	bc = tbl.Classify(fieldChange(diff.Added, nil, &schema.Field{
		Name: "tenant", Required: true, HasDefault: true, Default: "main",
	}))
	assert.Equal(t, CategoryAddedField, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)

	bc = tbl.Classify(fieldChange(diff.Added, nil, &schema.Field{Name: "note"}))
	assert.Equal(t, CategoryAddedField, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)
	assert.Equal(t, BreaksNewReaders, bc.Direction)
	assert.NotEmpty(t, bc.Caveat)
}

func TestScalarTypeChanges(t *testing.T) {
	tests := []struct {
		name      string
		table     *Table
		from, to  schema.ScalarKind
		category  Category
		severity  Severity
		direction Direction
	}{
		{"proto widen int32 to int64", NewProtobufClassifier(), schema.ScalarInt32, schema.ScalarInt64, CategoryWidenedType, SeverityMinor, BreaksNewReaders},
		{"proto narrow int64 to int32", NewProtobufClassifier(), schema.ScalarInt64, schema.ScalarInt32, CategoryNarrowedType, SeverityMajor, BreaksOldReaders},
		{"proto incompatible string to int32", NewProtobufClassifier(), schema.ScalarString, schema.ScalarInt32, CategoryChangedType, SeverityCritical, BreaksBoth},
		{"avro promote int to double", NewAvroClassifier(), schema.ScalarInt32, schema.ScalarFloat64, CategoryWidenedType, SeverityMinor, BreaksNewReaders},
		{"avro string to bytes", NewAvroClassifier(), schema.ScalarString, schema.ScalarBytes, CategoryWidenedType, SeverityMinor, BreaksNewReaders},
		{"jsonschema integer to number", NewJSONSchemaClassifier(), schema.ScalarInteger, schema.ScalarNumber, CategoryWidenedType, SeverityMinor, BreaksNewReaders},
		{"graphql has no widenings", NewGraphQLClassifier(), schema.ScalarInt32, schema.ScalarInt64, CategoryChangedType, SeverityCritical, BreaksBoth},
		{"sql date to timestamp", NewSQLClassifier(), schema.ScalarDate, schema.ScalarTimestamp, CategoryWidenedType, SeverityMinor, BreaksNewReaders},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := fieldChange(diff.TypeChanged,
				&schema.Field{Name: "v", Type: scalarNode(tc.from)},
				&schema.Field{Name: "v", Type: scalarNode(tc.to)},
			)
			bc := tc.table.Classify(c)
			assert.Equal(t, tc.category, bc.Category)
			assert.Equal(t, tc.severity, bc.Severity)
			assert.Equal(t, tc.direction, bc.Direction)
		})
	}
}

func TestResponseTypeChangeInversion(t *testing.T) {
	tbl := NewOpenAPIClassifier()
	c := fieldChange(diff.TypeChanged,
		&schema.Field{Name: "total", Type: scalarNode(schema.ScalarInteger)},
		&schema.Field{Name: "total", Type: scalarNode(schema.ScalarNumber)},
	)
	c.Context = diff.ContextResponse

	bc := tbl.Classify(c)
	assert.Equal(t, CategoryChangedResponseType, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)

	// Narrowing the produced type is a stronger promise.
	c = fieldChange(diff.TypeChanged,
		&schema.Field{Name: "total", Type: scalarNode(schema.ScalarNumber)},
		&schema.Field{Name: "total", Type: scalarNode(schema.ScalarInteger)},
	)
	c.Context = diff.ContextResponse
	bc = tbl.Classify(c)
	assert.Equal(t, SeverityInfo, bc.Severity)
	assert.Equal(t, DirectionNone, bc.Direction)
}

func TestRequiredAsymmetry(t *testing.T) {
	tbl := NewOpenAPIClassifier()
	optional := &schema.Field{Name: "limit"}
	required := &schema.Field{Name: "limit", Required: true}

	// Request side: tightening breaks existing callers.
	c := fieldChange(diff.RequiredChanged, optional, required)
	c.Context = diff.ContextRequest
	bc := tbl.Classify(c)
	assert.Equal(t, CategoryChangedRequired, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)

	// Response side: the same flip is a strengthened guarantee.
	c.Context = diff.ContextResponse
	bc = tbl.Classify(c)
	assert.Equal(t, SeverityInfo, bc.Severity)
	assert.Equal(t, DirectionNone, bc.Direction)

	// Response field no longer guaranteed.
	c = fieldChange(diff.RequiredChanged, required, optional)
	c.Context = diff.ContextResponse
	bc = tbl.Classify(c)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)
}

func TestEnumValueRules(t *testing.T) {
	tbl := NewProtobufClassifier()
	enum := &schema.Node{Kind: schema.KindEnum, Name: "Status"}

	c := fieldChange(diff.Added, nil, &schema.Field{Name: "STATUS_PAUSED", Tag: 3, HasTag: true})
	c.OldParent = enum
	c.NewParent = enum
	bc := tbl.Classify(c)
	assert.Equal(t, CategoryAddedEnumValue, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)
	assert.Equal(t, BreaksNewReaders, bc.Direction)

	c = fieldChange(diff.Removed, &schema.Field{Name: "STATUS_LEGACY", Tag: 2, HasTag: true}, nil)
	c.OldParent = enum
	c.NewParent = enum
	bc = tbl.Classify(c)
	assert.Equal(t, CategoryRemovedEnumValue, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)

	// Removal is softened when the symbol lands in the reserved set.
	c.NewParent = &schema.Node{
		Kind:           schema.KindEnum,
		Name:           "Status",
		ReservedValues: []string{"STATUS_LEGACY"},
	}
	bc = tbl.Classify(c)
	assert.Equal(t, SeverityMinor, bc.Severity)

	c = fieldChange(diff.TypeChanged,
		&schema.Field{Name: "STATUS_ACTIVE", Tag: 1, HasTag: true},
		&schema.Field{Name: "STATUS_ACTIVE", Tag: 5, HasTag: true},
	)
	c.OldParent = enum
	c.NewParent = enum
	bc = tbl.Classify(c)
	assert.Equal(t, CategoryChangedType, bc.Category)
	assert.Equal(t, SeverityCritical, bc.Severity)
	assert.Equal(t, BreaksBoth, bc.Direction)
}

func TestOperationRules(t *testing.T) {
	tbl := NewOpenAPIClassifier()
	op := &schema.Node{Kind: schema.KindOperation, Route: "/users/{id}", Method: "GET"}

	bc := tbl.Classify(diff.Change{
		Path:    schema.Path{{Name: "GET /users/{id}"}},
		Kind:    diff.Removed,
		OldNode: op,
	})
	assert.Equal(t, CategoryRemovedEndpoint, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)

	bc = tbl.Classify(diff.Change{
		Path:    schema.Path{{Name: "GET /users/{id}"}},
		Kind:    diff.Added,
		NewNode: op,
	})
	assert.Equal(t, CategoryAddedEndpoint, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)
	assert.Equal(t, DirectionNone, bc.Direction)

	post := &schema.Node{Kind: schema.KindOperation, Route: "/users/{id}", Method: "POST"}
	bc = tbl.Classify(diff.Change{
		Path:    schema.Path{{Name: "GET /users/{id}"}},
		Kind:    diff.TypeChanged,
		OldNode: op,
		NewNode: post,
		Note:    "http method changed",
	})
	assert.Equal(t, CategoryChangedMethod, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
}

func TestParameterRules(t *testing.T) {
	tbl := NewOpenAPIClassifier()

	c := fieldChange(diff.Added, nil, &schema.Field{Name: "tenant", Required: true})
	c.Context = diff.ContextParameter
	bc := tbl.Classify(c)
	assert.Equal(t, CategoryAddedRequiredParameter, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)

	c = fieldChange(diff.Added, nil, &schema.Field{Name: "verbose"})
	c.Context = diff.ContextParameter
	bc = tbl.Classify(c)
	assert.Equal(t, CategoryAddedParameter, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)

	c = fieldChange(diff.Removed, &schema.Field{Name: "page"}, nil)
	c.Context = diff.ContextParameter
	bc = tbl.Classify(c)
	assert.Equal(t, CategoryRemovedParameter, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)
}

func TestConstraintRules(t *testing.T) {
	tbl := NewJSONSchemaClassifier()

	c := fieldChange(diff.ConstraintNarrowed,
		&schema.Field{Name: "state"}, &schema.Field{Name: "state"})
	c.Note = "enum values removed: [archived]"
	bc := tbl.Classify(c)
	assert.Equal(t, CategoryNarrowedType, bc.Category)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)
	assert.Contains(t, bc.Message, "archived")

	c = fieldChange(diff.ConstraintWidened,
		&schema.Field{Name: "state"}, &schema.Field{Name: "state"})
	bc = tbl.Classify(c)
	assert.Equal(t, CategoryWidenedType, bc.Category)
	assert.Equal(t, SeverityMinor, bc.Severity)
	assert.Equal(t, BreaksNewReaders, bc.Direction)

	// Response side inverts the widen/narrow judgement.
	c.Context = diff.ContextResponse
	bc = tbl.Classify(c)
	assert.Equal(t, SeverityMajor, bc.Severity)
	assert.Equal(t, BreaksOldReaders, bc.Direction)
}

func TestDefaultRenameDeprecation(t *testing.T) {
	tbl := NewAvroClassifier()

	bc := tbl.Classify(fieldChange(diff.DefaultChanged,
		&schema.Field{Name: "region", HasDefault: true, Default: "us"},
		&schema.Field{Name: "region", HasDefault: true, Default: "eu"},
	))
	assert.Equal(t, CategoryChangedDefault, bc.Category)
	assert.Equal(t, SeverityMinor, bc.Severity)
	assert.Equal(t, DirectionNone, bc.Direction)

	bc = tbl.Classify(fieldChange(diff.Renamed,
		&schema.Field{Name: "user_name"},
		&schema.Field{Name: "username", Aliases: []string{"user_name"}},
	))
	assert.Equal(t, CategoryRenamedField, bc.Category)
	assert.Equal(t, SeverityMinor, bc.Severity)
	assert.Equal(t, DirectionNone, bc.Direction)

	bc = tbl.Classify(fieldChange(diff.Deprecated,
		&schema.Field{Name: "legacy_id"},
		&schema.Field{Name: "legacy_id", Deprecated: true},
	))
	assert.Equal(t, CategoryDeprecated, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)
}

func TestUnknownFallback(t *testing.T) {
	tbl := NewGraphQLClassifier()
	bc := tbl.Classify(diff.Change{
		Path:    schema.Path{{Name: "Thing"}},
		Kind:    diff.Unknown,
		OldNode: &schema.Node{Kind: schema.KindRecord, Name: "Thing"},
		Note:    "directive arguments not modeled",
	})
	assert.Equal(t, CategoryUnknown, bc.Category)
	assert.Equal(t, SeverityInfo, bc.Severity)
	assert.Equal(t, DirectionNone, bc.Direction)
	assert.Contains(t, bc.Message, "directive arguments")
}

func TestForCoversEveryFormat(t *testing.T) {
	for _, f := range []schema.Format{
		schema.FormatProtobuf, schema.FormatAvro, schema.FormatOpenAPI,
		schema.FormatGraphQL, schema.FormatJSONSchema, schema.FormatSQL,
	} {
		tbl, err := For(f)
		require.NoError(t, err)
		require.NotNil(t, tbl)
		assert.Equal(t, f, tbl.Format())
	}
	_, err := For(schema.Format("thrift"))
	require.Error(t, err)
}
