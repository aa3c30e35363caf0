package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ternhq/tern/pkg/schema"
)

// JSONSchema parses JSON Schema documents.
type JSONSchema struct{}

// NewJSONSchema creates the JSON Schema adapter.
func NewJSONSchema() *JSONSchema { return &JSONSchema{} }

func (a *JSONSchema) Format() schema.Format { return schema.FormatJSONSchema }

// Parse converts a JSON Schema document. The root schema becomes the first
// top-level node; $defs (and legacy definitions) follow in name order.
// Object properties are sorted by name so model order is stable regardless
// of document formatting.
func (a *JSONSchema) Parse(raw []byte) (*schema.Model, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, schema.NewParseError(schema.FormatJSONSchema, "invalid JSON", err)
	}

	rootName, _ := doc["title"].(string)
	if rootName == "" {
		rootName = "schema"
	}

	root, err := convertJSONSchema(doc)
	if err != nil {
		return nil, err
	}
	root.Name = rootName

	nodes := []*schema.Node{root}
	for _, defsKey := range []string{"$defs", "definitions"} {
		defs, ok := doc[defsKey].(map[string]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(defs))
		for name := range defs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			dm, ok := defs[name].(map[string]any)
			if !ok {
				return nil, schema.NewParseError(schema.FormatJSONSchema,
					fmt.Sprintf("definition %q is not an object", name), nil)
			}
			n, err := convertJSONSchema(dm)
			if err != nil {
				return nil, err
			}
			n.Name = name
			nodes = append(nodes, n)
		}
	}

	return &schema.Model{Format: schema.FormatJSONSchema, Nodes: nodes}, nil
}

func convertJSONSchema(m map[string]any) (*schema.Node, error) {
	if ref, ok := m["$ref"].(string); ok {
		return &schema.Node{Kind: schema.KindRecord, Name: refName(ref)}, nil
	}

	for _, unionKey := range []string{"oneOf", "anyOf"} {
		branches, ok := m[unionKey].([]any)
		if !ok {
			continue
		}
		variants := make([]*schema.Node, 0, len(branches))
		for _, b := range branches {
			bm, ok := b.(map[string]any)
			if !ok {
				return nil, schema.NewParseError(schema.FormatJSONSchema,
					unionKey+" branch is not an object", nil)
			}
			v, err := convertJSONSchema(bm)
			if err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
		return &schema.Node{Kind: schema.KindUnion, Variants: variants}, nil
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "object":
		return convertJSONObject(m)
	case "array":
		items, ok := m["items"].(map[string]any)
		if !ok {
			return &schema.Node{
				Kind: schema.KindArray,
				Item: &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarUnknown},
			}, nil
		}
		item, err := convertJSONSchema(items)
		if err != nil {
			return nil, err
		}
		return &schema.Node{Kind: schema.KindArray, Item: item}, nil
	case "string", "integer", "number", "boolean", "null", "":
		return convertJSONScalar(typ, m), nil
	default:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarUnknown}, nil
	}
}

func convertJSONObject(m map[string]any) (*schema.Node, error) {
	props, hasProps := m["properties"].(map[string]any)

	// An object with only an additionalProperties schema is a map.
	if !hasProps {
		if ap, ok := m["additionalProperties"].(map[string]any); ok {
			value, err := convertJSONSchema(ap)
			if err != nil {
				return nil, err
			}
			return &schema.Node{
				Kind:  schema.KindMap,
				Key:   &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarString},
				Value: value,
			}, nil
		}
		return &schema.Node{Kind: schema.KindRecord}, nil
	}

	required := make(map[string]bool)
	if rawReq, ok := m["required"].([]any); ok {
		for _, r := range rawReq {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]schema.Field, 0, len(names))
	for _, name := range names {
		pm, ok := props[name].(map[string]any)
		if !ok {
			return nil, schema.NewParseError(schema.FormatJSONSchema,
				fmt.Sprintf("property %q is not an object", name), nil)
		}
		typ, err := convertJSONSchema(pm)
		if err != nil {
			return nil, err
		}
		f := schema.Field{
			Name:     name,
			Type:     typ,
			Required: required[name],
		}
		if def, ok := pm["default"]; ok {
			f.HasDefault = true
			f.Default = renderJSON(def)
		}
		if dep, ok := pm["deprecated"].(bool); ok {
			f.Deprecated = dep
		}
		fields = append(fields, f)
	}

	return &schema.Node{Kind: schema.KindRecord, Fields: fields}, nil
}

func convertJSONScalar(typ string, m map[string]any) *schema.Node {
	format, _ := m["format"].(string)

	var kind schema.ScalarKind
	switch typ {
	case "string":
		switch format {
		case "date":
			kind = schema.ScalarDate
		case "date-time":
			kind = schema.ScalarTimestamp
		case "byte", "binary":
			kind = schema.ScalarBytes
		default:
			kind = schema.ScalarString
		}
	case "integer":
		switch format {
		case "int32":
			kind = schema.ScalarInt32
		case "int64":
			kind = schema.ScalarInt64
		default:
			kind = schema.ScalarInteger
		}
	case "number":
		switch format {
		case "float":
			kind = schema.ScalarFloat32
		case "double":
			kind = schema.ScalarFloat64
		default:
			kind = schema.ScalarNumber
		}
	case "boolean":
		kind = schema.ScalarBool
	case "null":
		kind = schema.ScalarNull
	default:
		kind = schema.ScalarUnknown
	}

	return &schema.Node{
		Kind:        schema.KindScalar,
		Scalar:      kind,
		Constraints: jsonConstraints(m),
	}
}

func jsonConstraints(m map[string]any) *schema.Constraints {
	c := &schema.Constraints{}
	empty := true

	if rawEnum, ok := m["enum"].([]any); ok && len(rawEnum) > 0 {
		for _, v := range rawEnum {
			c.Enum = append(c.Enum, renderJSON(v))
		}
		empty = false
	}
	if v, ok := asInt(m["minLength"]); ok {
		c.MinLength = &v
		empty = false
	}
	if v, ok := asInt(m["maxLength"]); ok {
		c.MaxLength = &v
		empty = false
	}
	if v, ok := asFloat(m["minimum"]); ok {
		c.Minimum = &v
		empty = false
	}
	if v, ok := asFloat(m["maximum"]); ok {
		c.Maximum = &v
		empty = false
	}
	if p, ok := m["pattern"].(string); ok && p != "" {
		c.Pattern = p
		empty = false
	}

	if empty {
		return nil
	}
	return c
}

// asInt tolerates both JSON (float64) and YAML (int) numeric decodings.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
