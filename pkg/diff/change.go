package diff

import (
	"fmt"
	"strings"

	"github.com/ternhq/tern/pkg/schema"
)

// Kind classifies a structural delta
type Kind int

const (
	Added Kind = iota
	Removed
	TypeChanged
	RequiredChanged
	DefaultChanged
	Renamed
	Deprecated
	ConstraintNarrowed
	ConstraintWidened
	Unknown // construct the differ cannot classify; never silently dropped
)

func (k Kind) String() string {
	return []string{
		"added", "removed", "type_changed", "required_changed",
		"default_changed", "renamed", "deprecated",
		"constraint_narrowed", "constraint_widened", "unknown",
	}[k]
}

// Context records which side of an operation a change sits on. Rule tables
// use it for the request/response directional asymmetry: a field becoming
// required in a request breaks old callers, while the same change in a
// response is a producer promising more.
type Context int

const (
	ContextSchema Context = iota
	ContextRequest
	ContextResponse
	ContextParameter
)

func (c Context) String() string {
	return []string{"schema", "request", "response", "parameter"}[c]
}

// Change is one structural delta between two schema versions. Exactly one of
// the node pair or field pair is populated depending on what changed. The
// parent nodes give rule tables access to reservation sets without any
// global state.
type Change struct {
	Path    schema.Path
	Kind    Kind
	Context Context

	OldNode *schema.Node
	NewNode *schema.Node

	OldField *schema.Field
	NewField *schema.Field

	// OldParent/NewParent are the enclosing Record or Enum, when any.
	OldParent *schema.Node
	NewParent *schema.Node

	// Note carries informational context: rename ambiguity resolution,
	// strict-consumer caveats, unknown-construct details.
	Note string
}

// OldValue renders the old side for reports.
func (c Change) OldValue() string {
	return renderSubject(c.OldField, c.OldNode)
}

// NewValue renders the new side for reports.
func (c Change) NewValue() string {
	return renderSubject(c.NewField, c.NewNode)
}

func renderSubject(f *schema.Field, n *schema.Node) string {
	switch {
	case f != nil:
		return RenderField(*f)
	case n != nil:
		return RenderNode(n)
	default:
		return ""
	}
}

// RenderField produces a compact single-line rendering of a field.
func RenderField(f schema.Field) string {
	var b strings.Builder
	b.WriteString(f.Name)
	if f.HasTag {
		fmt.Fprintf(&b, " = %d", f.Tag)
	}
	if f.Type != nil {
		b.WriteString(": ")
		b.WriteString(RenderNode(f.Type))
	}
	if f.Required {
		b.WriteString(" (required)")
	}
	if f.HasDefault {
		fmt.Fprintf(&b, " default=%s", f.Default)
	}
	if f.Deprecated {
		b.WriteString(" (deprecated)")
	}
	return b.String()
}

// RenderNode produces a compact single-line rendering of a node's type.
func RenderNode(n *schema.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case schema.KindScalar:
		return n.Scalar.String()
	case schema.KindRecord:
		if n.Name != "" {
			return "record " + n.Name
		}
		return "record"
	case schema.KindEnum:
		if n.Name != "" {
			return "enum " + n.Name
		}
		return "enum"
	case schema.KindUnion:
		parts := make([]string, len(n.Variants))
		for i, v := range n.Variants {
			parts[i] = RenderNode(v)
		}
		return "union<" + strings.Join(parts, "|") + ">"
	case schema.KindArray:
		return "array<" + RenderNode(n.Item) + ">"
	case schema.KindMap:
		return "map<" + RenderNode(n.Key) + "," + RenderNode(n.Value) + ">"
	case schema.KindOperation:
		return strings.ToUpper(n.Method) + " " + n.Route
	case schema.KindService:
		return "service " + n.Name
	}
	return "unknown"
}
