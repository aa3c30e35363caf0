package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/schema"
)

func scalar(k schema.ScalarKind) *schema.Node {
	return &schema.Node{Kind: schema.KindScalar, Scalar: k}
}

func record(name string, fields ...schema.Field) *schema.Node {
	return &schema.Node{Kind: schema.KindRecord, Name: name, Fields: fields}
}

func model(format schema.Format, nodes ...*schema.Node) *schema.Model {
	return &schema.Model{Format: format, Nodes: nodes}
}

func TestCompareIdentical(t *testing.T) {
	m := model(schema.FormatJSONSchema,
		record("User",
			schema.Field{Name: "id", Type: scalar(schema.ScalarString), Required: true},
			schema.Field{Name: "age", Type: scalar(schema.ScalarInteger)},
		),
		&schema.Node{Kind: schema.KindEnum, Name: "Role", Values: []schema.EnumValue{{Name: "admin"}}},
	)
	changes := New(schema.FormatJSONSchema).Compare(m, m)
	assert.Empty(t, changes)
}

func TestCompareFieldAddRemove(t *testing.T) {
	oldM := model(schema.FormatJSONSchema, record("User",
		schema.Field{Name: "id", Type: scalar(schema.ScalarString)},
		schema.Field{Name: "legacy", Type: scalar(schema.ScalarString)},
	))
	newM := model(schema.FormatJSONSchema, record("User",
		schema.Field{Name: "id", Type: scalar(schema.ScalarString)},
		schema.Field{Name: "email", Type: scalar(schema.ScalarString)},
	))

	changes := New(schema.FormatJSONSchema).Compare(oldM, newM)
	require.Len(t, changes, 2)

	assert.Equal(t, Removed, changes[0].Kind)
	assert.Equal(t, "User.legacy", changes[0].Path.String())
	require.NotNil(t, changes[0].OldField)
	assert.Equal(t, "legacy", changes[0].OldField.Name)
	require.NotNil(t, changes[0].NewParent)
	assert.Equal(t, "User", changes[0].NewParent.Name)

	assert.Equal(t, Added, changes[1].Kind)
	assert.Equal(t, "email", changes[1].NewField.Name)
}

func TestCompareTagKeyedRename(t *testing.T) {
	oldM := model(schema.FormatProtobuf, record("User",
		schema.Field{Name: "user_name", Tag: 2, HasTag: true, Type: scalar(schema.ScalarString)},
	))
	newM := model(schema.FormatProtobuf, record("User",
		schema.Field{Name: "display_name", Tag: 2, HasTag: true, Type: scalar(schema.ScalarString)},
	))

	changes := New(schema.FormatProtobuf).Compare(oldM, newM)
	require.Len(t, changes, 1)
	assert.Equal(t, Renamed, changes[0].Kind)
	assert.Equal(t, "user_name", changes[0].OldField.Name)
	assert.Equal(t, "display_name", changes[0].NewField.Name)
}

func TestCompareAliasRename(t *testing.T) {
	oldM := model(schema.FormatAvro, record("User",
		schema.Field{Name: "user_name", Type: scalar(schema.ScalarString)},
	))
	newM := model(schema.FormatAvro, record("User",
		schema.Field{Name: "username", Type: scalar(schema.ScalarString), Aliases: []string{"user_name"}},
	))

	changes := New(schema.FormatAvro).Compare(oldM, newM)
	require.Len(t, changes, 1)
	assert.Equal(t, Renamed, changes[0].Kind)
	assert.Empty(t, changes[0].Note)
}

func TestCompareAmbiguousAliasRename(t *testing.T) {
	oldM := model(schema.FormatAvro, record("User",
		schema.Field{Name: "user_name", Type: scalar(schema.ScalarString)},
	))
	newM := model(schema.FormatAvro, record("User",
		schema.Field{Name: "login", Type: scalar(schema.ScalarString), Aliases: []string{"user_name"}},
		schema.Field{Name: "display_name", Type: scalar(schema.ScalarString), Aliases: []string{"user_name"}},
	))

	changes := New(schema.FormatAvro).Compare(oldM, newM)

	// The rename resolves to the lexicographically first candidate and the
	// other new field reports as an addition.
	require.Len(t, changes, 2)
	assert.Equal(t, Renamed, changes[0].Kind)
	assert.Equal(t, "display_name", changes[0].NewField.Name)
	assert.Contains(t, changes[0].Note, "ambiguous rename")
	assert.Equal(t, Added, changes[1].Kind)
	assert.Equal(t, "login", changes[1].NewField.Name)
}

func TestCompareTypeAndAttrChanges(t *testing.T) {
	oldM := model(schema.FormatProtobuf, record("User",
		schema.Field{Name: "count", Tag: 1, HasTag: true, Type: scalar(schema.ScalarInt32)},
		schema.Field{Name: "note", Tag: 2, HasTag: true, Type: scalar(schema.ScalarString)},
	))
	newM := model(schema.FormatProtobuf, record("User",
		schema.Field{Name: "count", Tag: 1, HasTag: true, Type: scalar(schema.ScalarInt64)},
		schema.Field{Name: "note", Tag: 2, HasTag: true, Type: scalar(schema.ScalarString), Deprecated: true},
	))

	changes := New(schema.FormatProtobuf).Compare(oldM, newM)
	require.Len(t, changes, 2)
	assert.Equal(t, TypeChanged, changes[0].Kind)
	assert.Equal(t, Deprecated, changes[1].Kind)
}

func TestCompareEnumValues(t *testing.T) {
	oldM := model(schema.FormatProtobuf, &schema.Node{
		Kind: schema.KindEnum, Name: "Status",
		Values: []schema.EnumValue{
			{Name: "A", Number: 0, HasNumber: true},
			{Name: "B", Number: 1, HasNumber: true},
			{Name: "C", Number: 2, HasNumber: true},
		},
	})
	newM := model(schema.FormatProtobuf, &schema.Node{
		Kind: schema.KindEnum, Name: "Status",
		Values: []schema.EnumValue{
			{Name: "A", Number: 0, HasNumber: true},
			{Name: "B", Number: 5, HasNumber: true},
			{Name: "D", Number: 2, HasNumber: true},
		},
	})

	changes := New(schema.FormatProtobuf).Compare(oldM, newM)
	require.Len(t, changes, 3)

	assert.Equal(t, TypeChanged, changes[0].Kind)
	assert.Equal(t, "enum value number changed", changes[0].Note)
	assert.Equal(t, Removed, changes[1].Kind)
	assert.Equal(t, "C", changes[1].OldField.Name)
	assert.Equal(t, Added, changes[2].Kind)
	assert.Equal(t, "D", changes[2].NewField.Name)
}

func TestCompareMethodChangePairsOperations(t *testing.T) {
	oldM := model(schema.FormatOpenAPI, &schema.Node{
		Kind: schema.KindOperation, Route: "/users", Method: "PUT",
	})
	newM := model(schema.FormatOpenAPI, &schema.Node{
		Kind: schema.KindOperation, Route: "/users", Method: "PATCH",
	})

	changes := New(schema.FormatOpenAPI).Compare(oldM, newM)
	require.Len(t, changes, 1)
	assert.Equal(t, TypeChanged, changes[0].Kind)
	assert.Equal(t, "http method changed", changes[0].Note)
}

func TestCompareOperationContexts(t *testing.T) {
	op := func(param schema.Field, body, resp *schema.Node) *schema.Node {
		return &schema.Node{
			Kind: schema.KindOperation, Route: "/orders", Method: "POST",
			Parameters:  []schema.Field{param},
			RequestBody: body,
			Responses:   []schema.Response{{Status: "200", Body: resp}},
		}
	}

	oldM := model(schema.FormatOpenAPI, op(
		schema.Field{Name: "query:dryRun", Type: scalar(schema.ScalarBool)},
		record("Body", schema.Field{Name: "sku", Type: scalar(schema.ScalarString)}),
		record("Resp", schema.Field{Name: "total", Type: scalar(schema.ScalarInteger)}),
	))
	newM := model(schema.FormatOpenAPI, op(
		schema.Field{Name: "query:dryRun", Type: scalar(schema.ScalarBool), Required: true},
		record("Body", schema.Field{Name: "sku", Type: scalar(schema.ScalarString), Required: true}),
		record("Resp", schema.Field{Name: "total", Type: scalar(schema.ScalarNumber)}),
	))

	changes := New(schema.FormatOpenAPI).Compare(oldM, newM)
	require.Len(t, changes, 3)

	assert.Equal(t, ContextParameter, changes[0].Context)
	assert.Equal(t, RequiredChanged, changes[0].Kind)
	assert.Equal(t, ContextRequest, changes[1].Context)
	assert.Equal(t, RequiredChanged, changes[1].Kind)
	assert.Equal(t, ContextResponse, changes[2].Context)
	assert.Equal(t, TypeChanged, changes[2].Kind)
}

func TestCompareConstraints(t *testing.T) {
	min5 := 5
	oldM := model(schema.FormatJSONSchema, record("User",
		schema.Field{Name: "state", Type: &schema.Node{
			Kind: schema.KindScalar, Scalar: schema.ScalarString,
			Constraints: &schema.Constraints{Enum: []string{"a", "b", "c"}},
		}},
	))
	newM := model(schema.FormatJSONSchema, record("User",
		schema.Field{Name: "state", Type: &schema.Node{
			Kind: schema.KindScalar, Scalar: schema.ScalarString,
			Constraints: &schema.Constraints{Enum: []string{"a", "b"}, MinLength: &min5},
		}},
	))

	changes := New(schema.FormatJSONSchema).Compare(oldM, newM)
	require.Len(t, changes, 1)
	assert.Equal(t, ConstraintNarrowed, changes[0].Kind)
	assert.Contains(t, changes[0].Note, "c")
}

func TestCompareTypeReferenceSwap(t *testing.T) {
	oldM := model(schema.FormatProtobuf,
		record("Order", schema.Field{
			Name: "ship_to", Tag: 1, HasTag: true,
			Type: &schema.Node{Kind: schema.KindRecord, Name: "Address"},
		}),
	)
	newM := model(schema.FormatProtobuf,
		record("Order", schema.Field{
			Name: "ship_to", Tag: 1, HasTag: true,
			Type: &schema.Node{Kind: schema.KindRecord, Name: "Location"},
		}),
	)

	changes := New(schema.FormatProtobuf).Compare(oldM, newM)
	require.Len(t, changes, 1)
	assert.Equal(t, TypeChanged, changes[0].Kind)
}

func TestCompareUnionVariants(t *testing.T) {
	oldM := model(schema.FormatAvro, record("Val",
		schema.Field{Name: "v", Type: &schema.Node{
			Kind:     schema.KindUnion,
			Variants: []*schema.Node{scalar(schema.ScalarString), scalar(schema.ScalarInt64)},
		}},
	))
	newM := model(schema.FormatAvro, record("Val",
		schema.Field{Name: "v", Type: &schema.Node{
			Kind:     schema.KindUnion,
			Variants: []*schema.Node{scalar(schema.ScalarString), scalar(schema.ScalarFloat64)},
		}},
	))

	changes := New(schema.FormatAvro).Compare(oldM, newM)
	require.Len(t, changes, 2)
	assert.Equal(t, ConstraintNarrowed, changes[0].Kind)
	assert.Equal(t, "union variant removed", changes[0].Note)
	assert.Equal(t, ConstraintWidened, changes[1].Kind)
}

func TestCompareServiceOperations(t *testing.T) {
	svc := func(ops ...*schema.Node) *schema.Node {
		return &schema.Node{Kind: schema.KindService, Name: "UserService", Operations: ops}
	}
	rpc := func(name, out string) *schema.Node {
		return &schema.Node{
			Kind: schema.KindOperation, Name: name, Method: "RPC", Route: name,
			RequestBody: &schema.Node{Kind: schema.KindRecord, Name: "Req"},
			Responses:   []schema.Response{{Status: "response", Body: &schema.Node{Kind: schema.KindRecord, Name: out}}},
		}
	}

	oldM := model(schema.FormatProtobuf, svc(rpc("Get", "User"), rpc("Delete", "Empty")))
	newM := model(schema.FormatProtobuf, svc(rpc("Get", "User"), rpc("List", "UserList")))

	changes := New(schema.FormatProtobuf).Compare(oldM, newM)
	require.Len(t, changes, 2)
	assert.Equal(t, Removed, changes[0].Kind)
	assert.Equal(t, "RPC Delete", changes[0].Path[len(changes[0].Path)-1].Name)
	assert.Equal(t, Added, changes[1].Kind)
}

func TestCompareDeterministicOrder(t *testing.T) {
	oldM := model(schema.FormatJSONSchema, record("A",
		schema.Field{Name: "x", Type: scalar(schema.ScalarString)},
		schema.Field{Name: "y", Type: scalar(schema.ScalarString)},
	))
	newM := model(schema.FormatJSONSchema, record("A",
		schema.Field{Name: "z", Type: scalar(schema.ScalarString)},
	))

	first := New(schema.FormatJSONSchema).Compare(oldM, newM)
	for i := 0; i < 20; i++ {
		again := New(schema.FormatJSONSchema).Compare(oldM, newM)
		require.Equal(t, first, again)
	}
}
