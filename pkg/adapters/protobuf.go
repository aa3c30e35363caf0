package adapters

import (
	"context"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/ternhq/tern/pkg/schema"
)

// Protobuf parses .proto sources with protocompile.
type Protobuf struct{}

// NewProtobuf creates the protobuf adapter.
func NewProtobuf() *Protobuf { return &Protobuf{} }

func (a *Protobuf) Format() schema.Format { return schema.FormatProtobuf }

// reservedExpansionCap bounds how many reserved numbers a single declaration
// contributes. Ranges like "reserved 1000 to max" would otherwise explode
// the model.
const reservedExpansionCap = 4096

// Parse compiles a single proto file and flattens its declarations into the
// model: messages and enums (nested ones under their dotted name), then
// services with their RPCs as operations. Field identity is the tag number.
func (a *Protobuf) Parse(raw []byte) (*schema.Model, error) {
	const filename = "contract.proto"
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				filename: string(raw),
			}),
		}),
	}

	files, err := compiler.Compile(context.Background(), filename)
	if err != nil {
		return nil, schema.NewParseError(schema.FormatProtobuf, "compile failed", err)
	}
	fd := files.FindFileByPath(filename)
	if fd == nil {
		return nil, schema.NewParseError(schema.FormatProtobuf, "no compiled output", nil)
	}

	var nodes []*schema.Node
	for i := 0; i < fd.Messages().Len(); i++ {
		nodes = appendMessage(nodes, fd.Messages().Get(i))
	}
	for i := 0; i < fd.Enums().Len(); i++ {
		nodes = append(nodes, convertProtoEnum(fd.Enums().Get(i)))
	}
	for i := 0; i < fd.Services().Len(); i++ {
		nodes = append(nodes, convertProtoService(fd.Services().Get(i)))
	}

	return &schema.Model{Format: schema.FormatProtobuf, Nodes: nodes}, nil
}

// protoDeclName strips the package prefix but keeps nesting, so a nested
// message diffs under a stable dotted name.
func protoDeclName(d protoreflect.Descriptor) string {
	full := string(d.FullName())
	pkg := string(d.ParentFile().Package())
	if pkg != "" && len(full) > len(pkg) && full[:len(pkg)] == pkg {
		return full[len(pkg)+1:]
	}
	return full
}

// appendMessage flattens a message and its nested declarations. Map entry
// messages are synthetic and skipped.
func appendMessage(nodes []*schema.Node, md protoreflect.MessageDescriptor) []*schema.Node {
	if md.IsMapEntry() {
		return nodes
	}
	nodes = append(nodes, convertProtoMessage(md))
	for i := 0; i < md.Messages().Len(); i++ {
		nodes = appendMessage(nodes, md.Messages().Get(i))
	}
	for i := 0; i < md.Enums().Len(); i++ {
		nodes = append(nodes, convertProtoEnum(md.Enums().Get(i)))
	}
	return nodes
}

func convertProtoMessage(md protoreflect.MessageDescriptor) *schema.Node {
	node := &schema.Node{
		Kind: schema.KindRecord,
		Name: protoDeclName(md),
	}

	for i := 0; i < md.Fields().Len(); i++ {
		node.Fields = append(node.Fields, convertProtoField(md.Fields().Get(i)))
	}

	names := md.ReservedNames()
	for i := 0; i < names.Len(); i++ {
		node.ReservedNames = append(node.ReservedNames, string(names.Get(i)))
	}
	ranges := md.ReservedRanges()
	for i := 0; i < ranges.Len(); i++ {
		r := ranges.Get(i)
		for n := r[0]; n < r[1] && len(node.ReservedNumbers) < reservedExpansionCap; n++ {
			node.ReservedNumbers = append(node.ReservedNumbers, int32(n))
		}
	}

	return node
}

func convertProtoField(fld protoreflect.FieldDescriptor) schema.Field {
	f := schema.Field{
		Name:     string(fld.Name()),
		Tag:      int32(fld.Number()),
		HasTag:   true,
		Required: fld.Cardinality() == protoreflect.Required,
	}
	if opts, ok := fld.Options().(*descriptorpb.FieldOptions); ok && opts.GetDeprecated() {
		f.Deprecated = true
	}
	if fld.HasDefault() {
		f.HasDefault = true
		f.Default = fld.Default().String()
	}

	switch {
	case fld.IsMap():
		f.Type = &schema.Node{
			Kind:  schema.KindMap,
			Key:   protoLeafType(fld.MapKey()),
			Value: protoLeafType(fld.MapValue()),
		}
	case fld.IsList():
		f.Type = &schema.Node{
			Kind: schema.KindArray,
			Item: protoLeafType(fld),
		}
	default:
		f.Type = protoLeafType(fld)
	}
	return f
}

// protoLeafType maps a field's element type to a model node. Message and
// enum fields become named references; the declaration site carries the
// structure.
func protoLeafType(fld protoreflect.FieldDescriptor) *schema.Node {
	switch fld.Kind() {
	case protoreflect.BoolKind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarBool}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarInt32}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarInt64}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarUint32}
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarUint64}
	case protoreflect.FloatKind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarFloat32}
	case protoreflect.DoubleKind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarFloat64}
	case protoreflect.StringKind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarString}
	case protoreflect.BytesKind:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarBytes}
	case protoreflect.EnumKind:
		return &schema.Node{Kind: schema.KindEnum, Name: protoDeclName(fld.Enum())}
	case protoreflect.MessageKind, protoreflect.GroupKind:
		md := fld.Message()
		if md.FullName() == "google.protobuf.Timestamp" {
			return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarTimestamp}
		}
		return &schema.Node{Kind: schema.KindRecord, Name: protoDeclName(md)}
	default:
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarUnknown}
	}
}

func convertProtoEnum(ed protoreflect.EnumDescriptor) *schema.Node {
	node := &schema.Node{
		Kind: schema.KindEnum,
		Name: protoDeclName(ed),
	}
	for i := 0; i < ed.Values().Len(); i++ {
		vd := ed.Values().Get(i)
		v := schema.EnumValue{
			Name:      string(vd.Name()),
			Number:    int32(vd.Number()),
			HasNumber: true,
		}
		if opts, ok := vd.Options().(*descriptorpb.EnumValueOptions); ok && opts.GetDeprecated() {
			v.Deprecated = true
		}
		node.Values = append(node.Values, v)
	}

	names := ed.ReservedNames()
	for i := 0; i < names.Len(); i++ {
		node.ReservedValues = append(node.ReservedValues, string(names.Get(i)))
	}
	ranges := ed.ReservedRanges()
	for i := 0; i < ranges.Len(); i++ {
		r := ranges.Get(i)
		// Enum reserved ranges are inclusive on both ends.
		for n := r[0]; n <= r[1] && len(node.ReservedNumbers) < reservedExpansionCap; n++ {
			node.ReservedNumbers = append(node.ReservedNumbers, int32(n))
		}
	}

	return node
}

// convertProtoService models each RPC as an operation whose request and
// response are references to the message declarations. Streaming changes
// surface as a type change on the body reference name.
func convertProtoService(sd protoreflect.ServiceDescriptor) *schema.Node {
	node := &schema.Node{
		Kind: schema.KindService,
		Name: protoDeclName(sd),
	}
	for i := 0; i < sd.Methods().Len(); i++ {
		m := sd.Methods().Get(i)
		op := &schema.Node{
			Kind:   schema.KindOperation,
			Name:   string(m.Name()),
			Method: "RPC",
			Route:  string(m.Name()),
			RequestBody: &schema.Node{
				Kind: schema.KindRecord,
				Name: streamedName(protoDeclName(m.Input()), m.IsStreamingClient()),
			},
			Responses: []schema.Response{{
				Status: "response",
				Body: &schema.Node{
					Kind: schema.KindRecord,
					Name: streamedName(protoDeclName(m.Output()), m.IsStreamingServer()),
				},
			}},
		}
		node.Operations = append(node.Operations, op)
	}
	return node
}

func streamedName(name string, streaming bool) string {
	if streaming {
		return "stream " + name
	}
	return name
}
