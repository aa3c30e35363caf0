package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/ternhq/tern/pkg/schema"
)

// Avro parses Avro schema documents (JSON).
type Avro struct{}

// NewAvro creates the Avro adapter.
func NewAvro() *Avro { return &Avro{} }

func (a *Avro) Format() schema.Format { return schema.FormatAvro }

// Parse converts an Avro schema into the normalized model. A field is
// required unless it declares a default or its type is a nullable union.
func (a *Avro) Parse(raw []byte) (*schema.Model, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, schema.NewParseError(schema.FormatAvro, "invalid JSON", err)
	}

	conv := &avroConverter{named: make(map[string]schema.Kind)}
	node, _, err := conv.convert(doc)
	if err != nil {
		return nil, err
	}

	return &schema.Model{Format: schema.FormatAvro, Nodes: []*schema.Node{node}}, nil
}

// avroConverter tracks named types seen during the walk so later references
// by name resolve to the right node kind.
type avroConverter struct {
	named map[string]schema.Kind
}

// convert returns the node for an Avro type plus whether the type admits
// null (a nullable union), which relaxes the enclosing field.
func (c *avroConverter) convert(v any) (*schema.Node, bool, error) {
	switch t := v.(type) {
	case string:
		return c.convertName(t), false, nil
	case []any:
		return c.convertUnion(t)
	case map[string]any:
		return c.convertComplex(t)
	default:
		return nil, false, schema.NewParseError(schema.FormatAvro,
			fmt.Sprintf("unexpected schema element of type %T", v), nil)
	}
}

func (c *avroConverter) convertName(name string) *schema.Node {
	switch name {
	case "null":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarNull}
	case "boolean":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarBool}
	case "int":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarInt32}
	case "long":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarInt64}
	case "float":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarFloat32}
	case "double":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarFloat64}
	case "bytes":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarBytes}
	case "string":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarString}
	}
	// Reference to a previously defined named type. The definition site
	// carries the structure; the reference only needs the name and kind.
	kind, ok := c.named[name]
	if !ok {
		kind = schema.KindRecord
	}
	return &schema.Node{Kind: kind, Name: name}
}

func (c *avroConverter) convertUnion(branches []any) (*schema.Node, bool, error) {
	variants := make([]*schema.Node, 0, len(branches))
	nullable := false
	for _, b := range branches {
		n, _, err := c.convert(b)
		if err != nil {
			return nil, false, err
		}
		if n.Kind == schema.KindScalar && n.Scalar == schema.ScalarNull {
			nullable = true
			continue
		}
		variants = append(variants, n)
	}
	// ["null", T] is the optional-field idiom, not a semantic union.
	if len(variants) == 1 && nullable {
		return variants[0], true, nil
	}
	return &schema.Node{Kind: schema.KindUnion, Variants: variants}, nullable, nil
}

func (c *avroConverter) convertComplex(m map[string]any) (*schema.Node, bool, error) {
	typ, _ := m["type"].(string)

	if lt, ok := m["logicalType"].(string); ok {
		if n := logicalScalar(typ, lt); n != nil {
			return n, false, nil
		}
	}

	switch typ {
	case "record", "error":
		return c.convertRecord(m)
	case "enum":
		return c.convertEnum(m)
	case "fixed":
		return c.convertFixed(m)
	case "array":
		item, _, err := c.convert(m["items"])
		if err != nil {
			return nil, false, err
		}
		return &schema.Node{Kind: schema.KindArray, Item: item}, false, nil
	case "map":
		value, _, err := c.convert(m["values"])
		if err != nil {
			return nil, false, err
		}
		return &schema.Node{
			Kind:  schema.KindMap,
			Key:   &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarString},
			Value: value,
		}, false, nil
	case "":
		return nil, false, schema.NewParseError(schema.FormatAvro, "schema object missing type", nil)
	default:
		// {"type": "long"} and friends are legal spellings of primitives.
		n, nullable, err := c.convert(typ)
		return n, nullable, err
	}
}

func logicalScalar(typ, logical string) *schema.Node {
	switch logical {
	case "date":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarDate}
	case "timestamp-millis", "timestamp-micros", "local-timestamp-millis", "local-timestamp-micros":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarTimestamp}
	case "decimal":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarDecimal}
	case "uuid":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarString}
	}
	return nil
}

func (c *avroConverter) convertRecord(m map[string]any) (*schema.Node, bool, error) {
	name, _ := m["name"].(string)
	if name == "" {
		return nil, false, schema.NewParseError(schema.FormatAvro, "record missing name", nil)
	}
	c.named[name] = schema.KindRecord

	rawFields, _ := m["fields"].([]any)
	fields := make([]schema.Field, 0, len(rawFields))
	for _, rf := range rawFields {
		fm, ok := rf.(map[string]any)
		if !ok {
			return nil, false, schema.NewParseError(schema.FormatAvro,
				fmt.Sprintf("record %s has a malformed field entry", name), nil)
		}
		f, err := c.convertField(name, fm)
		if err != nil {
			return nil, false, err
		}
		fields = append(fields, f)
	}

	return &schema.Node{Kind: schema.KindRecord, Name: name, Fields: fields}, false, nil
}

func (c *avroConverter) convertField(record string, fm map[string]any) (schema.Field, error) {
	fname, _ := fm["name"].(string)
	if fname == "" {
		return schema.Field{}, schema.NewParseError(schema.FormatAvro,
			fmt.Sprintf("record %s has a field without a name", record), nil)
	}

	typ, nullable, err := c.convert(fm["type"])
	if err != nil {
		return schema.Field{}, err
	}

	f := schema.Field{
		Name: fname,
		Type: typ,
	}
	if def, ok := fm["default"]; ok {
		f.HasDefault = true
		f.Default = renderJSON(def)
	}
	f.Required = !f.HasDefault && !nullable

	if rawAliases, ok := fm["aliases"].([]any); ok {
		for _, a := range rawAliases {
			if s, ok := a.(string); ok {
				f.Aliases = append(f.Aliases, s)
			}
		}
	}
	return f, nil
}

func (c *avroConverter) convertEnum(m map[string]any) (*schema.Node, bool, error) {
	name, _ := m["name"].(string)
	if name == "" {
		return nil, false, schema.NewParseError(schema.FormatAvro, "enum missing name", nil)
	}
	c.named[name] = schema.KindEnum

	rawSymbols, _ := m["symbols"].([]any)
	values := make([]schema.EnumValue, 0, len(rawSymbols))
	for _, rs := range rawSymbols {
		s, ok := rs.(string)
		if !ok {
			return nil, false, schema.NewParseError(schema.FormatAvro,
				fmt.Sprintf("enum %s has a non-string symbol", name), nil)
		}
		values = append(values, schema.EnumValue{Name: s})
	}

	return &schema.Node{Kind: schema.KindEnum, Name: name, Values: values}, false, nil
}

// convertFixed models fixed as bytes with an exact length constraint, so a
// size change surfaces as a constraint change on a stable path.
func (c *avroConverter) convertFixed(m map[string]any) (*schema.Node, bool, error) {
	name, _ := m["name"].(string)
	size, ok := m["size"].(float64)
	if name == "" || !ok {
		return nil, false, schema.NewParseError(schema.FormatAvro, "fixed requires name and size", nil)
	}
	c.named[name] = schema.KindScalar

	n := int(size)
	return &schema.Node{
		Kind:        schema.KindScalar,
		Name:        name,
		Scalar:      schema.ScalarBytes,
		Constraints: &schema.Constraints{MinLength: &n, MaxLength: &n},
	}, false, nil
}

func renderJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
