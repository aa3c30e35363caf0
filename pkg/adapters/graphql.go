package adapters

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ternhq/tern/pkg/schema"
)

// GraphQL parses GraphQL SDL documents.
type GraphQL struct{}

// NewGraphQL creates the GraphQL SDL adapter.
func NewGraphQL() *GraphQL { return &GraphQL{} }

func (a *GraphQL) Format() schema.Format { return schema.FormatGraphQL }

// operationRoots are the types whose fields are operations rather than data
// members.
var operationRoots = map[string]string{
	"Query":        "QUERY",
	"Mutation":     "MUTATION",
	"Subscription": "SUBSCRIPTION",
}

// Parse converts an SDL document. Object, input and interface types become
// records; the Query, Mutation and Subscription roots become services whose
// fields are operations with their arguments as parameters. Non-null markers
// map to required.
func (a *GraphQL) Parse(raw []byte) (*schema.Model, error) {
	p := &sdlParser{tokens: scanSDL(string(raw))}

	decls, err := p.parseDocument()
	if err != nil {
		return nil, schema.NewParseError(schema.FormatGraphQL, "invalid SDL", err)
	}

	// First pass records declared kinds so field type references resolve to
	// the right node kind.
	kinds := make(map[string]schema.Kind)
	for _, d := range decls {
		kinds[d.name] = d.kind
	}

	nodes := make([]*schema.Node, 0, len(decls))
	for _, d := range decls {
		nodes = append(nodes, d.build(kinds))
	}
	return &schema.Model{Format: schema.FormatGraphQL, Nodes: nodes}, nil
}

// sdlDecl is a parsed type declaration before reference resolution.
type sdlDecl struct {
	kind     schema.Kind
	keyword  string
	name     string
	fields   []sdlField
	enumVals []schema.EnumValue
	variants []string
}

type sdlField struct {
	name       string
	typ        sdlType
	args       []sdlArg
	deprecated bool
}

type sdlArg struct {
	name       string
	typ        sdlType
	hasDefault bool
	def        string
}

// sdlType is a type reference: possibly list-wrapped, possibly non-null.
type sdlType struct {
	name    string
	list    *sdlType
	nonNull bool
}

func (d *sdlDecl) build(kinds map[string]schema.Kind) *schema.Node {
	switch d.kind {
	case schema.KindEnum:
		return &schema.Node{Kind: schema.KindEnum, Name: d.name, Values: d.enumVals}
	case schema.KindUnion:
		variants := make([]*schema.Node, 0, len(d.variants))
		for _, v := range d.variants {
			variants = append(variants, typeRef(v, kinds))
		}
		return &schema.Node{Kind: schema.KindUnion, Name: d.name, Variants: variants}
	case schema.KindScalar:
		return &schema.Node{Kind: schema.KindScalar, Name: d.name, Scalar: schema.ScalarUnknown}
	case schema.KindService:
		svc := &schema.Node{Kind: schema.KindService, Name: d.name}
		method := operationRoots[d.name]
		for _, f := range d.fields {
			op := &schema.Node{
				Kind:   schema.KindOperation,
				Name:   f.name,
				Method: method,
				Route:  f.name,
				Responses: []schema.Response{{
					Status: "result",
					Body:   f.typ.build(kinds),
				}},
			}
			for _, arg := range f.args {
				op.Parameters = append(op.Parameters, schema.Field{
					Name:       arg.name,
					Type:       arg.typ.build(kinds),
					Required:   arg.typ.nonNull && !arg.hasDefault,
					HasDefault: arg.hasDefault,
					Default:    arg.def,
				})
			}
			svc.Operations = append(svc.Operations, op)
		}
		return svc
	default:
		rec := &schema.Node{Kind: schema.KindRecord, Name: d.name}
		for _, f := range d.fields {
			rec.Fields = append(rec.Fields, schema.Field{
				Name:       f.name,
				Type:       f.typ.build(kinds),
				Required:   f.typ.nonNull,
				Deprecated: f.deprecated,
			})
		}
		return rec
	}
}

func (t sdlType) build(kinds map[string]schema.Kind) *schema.Node {
	if t.list != nil {
		return &schema.Node{Kind: schema.KindArray, Item: t.list.build(kinds)}
	}
	return typeRef(t.name, kinds)
}

func typeRef(name string, kinds map[string]schema.Kind) *schema.Node {
	switch name {
	case "Int":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarInt32}
	case "Float":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarFloat64}
	case "String":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarString}
	case "Boolean":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarBool}
	case "ID":
		return &schema.Node{Kind: schema.KindScalar, Scalar: schema.ScalarID}
	}
	kind, ok := kinds[name]
	if !ok {
		kind = schema.KindRecord
	}
	if kind == schema.KindScalar {
		return &schema.Node{Kind: schema.KindScalar, Name: name, Scalar: schema.ScalarUnknown}
	}
	return &schema.Node{Kind: kind, Name: name}
}

// scanSDL tokenizes SDL, dropping comments, commas and block-string
// descriptions.
func scanSDL(src string) []string {
	var tokens []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case strings.HasPrefix(src[i:], `"""`):
			end := strings.Index(src[i+3:], `"""`)
			if end < 0 {
				i = len(src)
			} else {
				i += end + 6
			}
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(src) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		case unicode.IsSpace(rune(c)) || c == ',':
			i++
		case isSDLWordByte(c):
			j := i
			for j < len(src) && isSDLWordByte(src[j]) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		default:
			tokens = append(tokens, string(c))
			i++
		}
	}
	return tokens
}

func isSDLWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.' || c == '-'
}

type sdlParser struct {
	tokens []string
	pos    int
}

func (p *sdlParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *sdlParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *sdlParser) expect(tok string) error {
	if got := p.next(); got != tok {
		return fmt.Errorf("expected %q, got %q", tok, got)
	}
	return nil
}

func (p *sdlParser) parseDocument() ([]*sdlDecl, error) {
	var decls []*sdlDecl
	for p.pos < len(p.tokens) {
		keyword := p.next()
		switch keyword {
		case "type", "interface", "input":
			d, err := p.parseObject(keyword)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		case "enum":
			d, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		case "union":
			d, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		case "scalar":
			name := p.next()
			if name == "" {
				return nil, fmt.Errorf("scalar declaration missing name")
			}
			p.skipDirectives()
			decls = append(decls, &sdlDecl{kind: schema.KindScalar, keyword: keyword, name: name})
		case "schema":
			// Root operation bindings; the default names are assumed.
			if err := p.skipBlock(); err != nil {
				return nil, err
			}
		case "extend", "directive":
			// Not modeled; skip through the next block or declaration.
			p.skipToNextDecl()
		default:
			return nil, fmt.Errorf("unexpected token %q", keyword)
		}
	}
	return decls, nil
}

func (p *sdlParser) parseObject(keyword string) (*sdlDecl, error) {
	name := p.next()
	if name == "" {
		return nil, fmt.Errorf("%s declaration missing name", keyword)
	}

	kind := schema.KindRecord
	if keyword == "type" {
		if _, ok := operationRoots[name]; ok {
			kind = schema.KindService
		}
	}
	d := &sdlDecl{kind: kind, keyword: keyword, name: name}

	// implements clause and directives precede the body.
	for p.peek() != "{" && p.peek() != "" {
		p.next()
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	for p.peek() != "}" && p.peek() != "" {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		d.fields = append(d.fields, f)
	}
	return d, p.expect("}")
}

func (p *sdlParser) parseField() (sdlField, error) {
	f := sdlField{name: p.next()}
	if f.name == "" {
		return f, fmt.Errorf("field missing name")
	}

	if p.peek() == "(" {
		p.next()
		for p.peek() != ")" && p.peek() != "" {
			arg, err := p.parseArg()
			if err != nil {
				return f, err
			}
			f.args = append(f.args, arg)
		}
		if err := p.expect(")"); err != nil {
			return f, err
		}
	}

	if err := p.expect(":"); err != nil {
		return f, fmt.Errorf("field %s: %w", f.name, err)
	}
	typ, err := p.parseType()
	if err != nil {
		return f, fmt.Errorf("field %s: %w", f.name, err)
	}
	f.typ = typ
	f.deprecated = p.skipDirectives()
	return f, nil
}

func (p *sdlParser) parseArg() (sdlArg, error) {
	arg := sdlArg{name: p.next()}
	if err := p.expect(":"); err != nil {
		return arg, fmt.Errorf("argument %s: %w", arg.name, err)
	}
	typ, err := p.parseType()
	if err != nil {
		return arg, fmt.Errorf("argument %s: %w", arg.name, err)
	}
	arg.typ = typ
	if p.peek() == "=" {
		p.next()
		arg.hasDefault = true
		arg.def = p.parseValue()
	}
	p.skipDirectives()
	return arg, nil
}

// parseValue consumes one literal, including list and object literals.
func (p *sdlParser) parseValue() string {
	switch p.peek() {
	case "[":
		return p.consumeBalanced("[", "]")
	case "{":
		return p.consumeBalanced("{", "}")
	default:
		return p.next()
	}
}

func (p *sdlParser) consumeBalanced(open, close string) string {
	var sb strings.Builder
	depth := 0
	for p.pos < len(p.tokens) {
		t := p.next()
		sb.WriteString(t)
		if t == open {
			depth++
		}
		if t == close {
			depth--
			if depth == 0 {
				break
			}
		}
	}
	return sb.String()
}

func (p *sdlParser) parseType() (sdlType, error) {
	var t sdlType
	if p.peek() == "[" {
		p.next()
		inner, err := p.parseType()
		if err != nil {
			return t, err
		}
		if err := p.expect("]"); err != nil {
			return t, err
		}
		t.list = &inner
	} else {
		t.name = p.next()
		if t.name == "" || !isSDLWordByte(t.name[0]) {
			return t, fmt.Errorf("expected type name, got %q", t.name)
		}
	}
	if p.peek() == "!" {
		p.next()
		t.nonNull = true
	}
	return t, nil
}

func (p *sdlParser) parseEnum() (*sdlDecl, error) {
	name := p.next()
	if name == "" {
		return nil, fmt.Errorf("enum declaration missing name")
	}
	d := &sdlDecl{kind: schema.KindEnum, keyword: "enum", name: name}

	for p.peek() != "{" && p.peek() != "" {
		p.next()
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	for p.peek() != "}" && p.peek() != "" {
		v := schema.EnumValue{Name: p.next()}
		v.Deprecated = p.skipDirectives()
		d.enumVals = append(d.enumVals, v)
	}
	return d, p.expect("}")
}

func (p *sdlParser) parseUnion() (*sdlDecl, error) {
	name := p.next()
	if name == "" {
		return nil, fmt.Errorf("union declaration missing name")
	}
	d := &sdlDecl{kind: schema.KindUnion, keyword: "union", name: name}

	for p.peek() != "=" && p.peek() != "" {
		p.next()
	}
	if err := p.expect("="); err != nil {
		return nil, err
	}
	for {
		member := p.next()
		if member == "" {
			break
		}
		d.variants = append(d.variants, member)
		if p.peek() != "|" {
			break
		}
		p.next()
	}
	return d, nil
}

// skipDirectives consumes trailing directives and reports whether
// @deprecated was among them.
func (p *sdlParser) skipDirectives() bool {
	deprecated := false
	for p.peek() == "@" {
		p.next()
		if p.next() == "deprecated" {
			deprecated = true
		}
		if p.peek() == "(" {
			p.consumeBalanced("(", ")")
		}
	}
	return deprecated
}

func (p *sdlParser) skipBlock() error {
	for p.peek() != "{" && p.peek() != "" {
		p.next()
	}
	if p.peek() == "" {
		return fmt.Errorf("expected block")
	}
	p.consumeBalanced("{", "}")
	return nil
}

// skipToNextDecl advances past an unmodeled declaration, consuming its block
// if it has one.
func (p *sdlParser) skipToNextDecl() {
	for p.pos < len(p.tokens) {
		switch p.peek() {
		case "{":
			p.consumeBalanced("{", "}")
			return
		case "type", "interface", "input", "enum", "union", "scalar", "schema", "extend", "directive":
			return
		default:
			p.next()
		}
	}
}
