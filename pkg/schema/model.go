package schema

import (
	"strconv"
	"strings"
)

// Format identifies a supported contract format
type Format string

const (
	FormatProtobuf   Format = "protobuf"
	FormatAvro       Format = "avro"
	FormatOpenAPI    Format = "openapi"
	FormatGraphQL    Format = "graphql"
	FormatJSONSchema Format = "jsonschema"
	FormatSQL        Format = "sql"
)

// TagKeyed reports whether field identity in this format is carried by a
// numeric tag rather than by name alone.
func (f Format) TagKeyed() bool {
	return f == FormatProtobuf || f == FormatAvro
}

// Kind discriminates the closed Node variant set
type Kind int

const (
	KindScalar Kind = iota
	KindRecord
	KindEnum
	KindUnion
	KindArray
	KindMap
	KindOperation
	KindService
)

func (k Kind) String() string {
	return []string{
		"scalar", "record", "enum", "union", "array", "map", "operation", "service",
	}[k]
}

// ScalarKind is the normalized leaf type vocabulary. Adapters map their
// native scalar names onto this set; widening tables are keyed on it.
type ScalarKind int

const (
	ScalarUnknown ScalarKind = iota
	ScalarBool
	ScalarInt32
	ScalarInt64
	ScalarUint32
	ScalarUint64
	ScalarFloat32
	ScalarFloat64
	ScalarInteger // JSON Schema "integer" (unsized)
	ScalarNumber  // JSON Schema "number" (unsized)
	ScalarString
	ScalarBytes
	ScalarID // GraphQL ID
	ScalarNull
	ScalarDate
	ScalarTimestamp
	ScalarDecimal
)

func (s ScalarKind) String() string {
	return []string{
		"unknown", "bool", "int32", "int64", "uint32", "uint64",
		"float32", "float64", "integer", "number", "string", "bytes",
		"id", "null", "date", "timestamp", "decimal",
	}[s]
}

// Node is the normalized schema tree node. Exactly one variant's fields are
// populated, selected by Kind. Pure data: nodes carry no behavior beyond
// identity helpers and are never mutated after an adapter produces them.
type Node struct {
	Kind Kind
	Name string

	// KindScalar
	Scalar      ScalarKind
	Constraints *Constraints

	// KindRecord
	Fields          []Field
	ReservedNames   []string
	ReservedNumbers []int32

	// KindEnum
	Values         []EnumValue
	ReservedValues []string

	// KindUnion
	Variants []*Node

	// KindArray
	Item *Node

	// KindMap
	Key   *Node
	Value *Node

	// KindOperation
	Route       string
	Method      string
	Parameters  []Field
	RequestBody *Node
	Responses   []Response

	// KindService
	Operations []*Node
}

// Field is a named member of a record, a parameter of an operation, or a
// synthesized stand-in for an enum symbol inside a Change.
type Field struct {
	Name       string
	Tag        int32 // numeric tag for Avro/Protobuf; meaningful only if HasTag
	HasTag     bool
	Type       *Node
	Required   bool
	HasDefault bool
	Default    string // opaque rendering of the default value
	Deprecated bool
	Aliases    []string
}

// EnumValue is a single enum symbol. Number is meaningful only where the
// format assigns numeric values (Protobuf, SQL check constraints do not).
type EnumValue struct {
	Name       string
	Number     int32
	HasNumber  bool
	Deprecated bool
}

// Response is one status-code arm of an operation.
type Response struct {
	Status string // "200", "404", "default"
	Body   *Node
}

// Constraints carries the value restrictions the differ compares for
// narrowing/widening detection. Nil pointers mean unconstrained.
type Constraints struct {
	Enum      []string
	MinLength *int
	MaxLength *int
	Minimum   *float64
	Maximum   *float64
	Pattern   string
}

// Model is the root of a parsed contract: an ordered list of top-level named
// declarations. Order is source order; the differ relies on it for
// deterministic change emission.
type Model struct {
	Format Format
	Nodes  []*Node
}

// Identity returns the sibling-matching key for a top-level node. Operations
// are keyed by route template plus method, everything else by name.
func (n *Node) Identity() string {
	if n.Kind == KindOperation {
		return strings.ToUpper(n.Method) + " " + n.Route
	}
	return n.Name
}

// Token is one step of a stable path. A token with HasTag set matches by tag
// first, which is what lets tag-keyed formats survive renames.
type Token struct {
	Name   string
	Tag    int32
	HasTag bool
}

func (t Token) String() string {
	if t.HasTag {
		return t.Name + "#" + strconv.FormatInt(int64(t.Tag), 10)
	}
	return t.Name
}

// Key returns the identity portion of the token used for sibling matching.
func (t Token) Key() string {
	if t.HasTag {
		return "#" + strconv.FormatInt(int64(t.Tag), 10)
	}
	return t.Name
}

// Path is a stable path: the identity chain of a node across versions.
type Path []Token

// Child returns a new path extended by a name token. The receiver is never
// mutated; paths are shared across emitted changes.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Token{Name: name})
}

// ChildTag returns a new path extended by a name+tag token.
func (p Path) ChildTag(name string, tag int32) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Token{Name: name, Tag: tag, HasTag: true})
}

func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.Name
	}
	return strings.Join(parts, ".")
}

// FieldIdentity returns the sibling-matching key for a field under the given
// format: the tag for tag-keyed formats when present, the name otherwise.
func FieldIdentity(f Field, format Format) string {
	if format.TagKeyed() && f.HasTag {
		return "#" + strconv.FormatInt(int64(f.Tag), 10)
	}
	return f.Name
}
