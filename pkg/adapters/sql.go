package adapters

import (
	"fmt"
	"strings"

	"github.com/ternhq/tern/pkg/schema"
)

// SQL parses CREATE TABLE scripts into table contracts.
type SQL struct{}

// NewSQL creates the SQL adapter.
func NewSQL() *SQL { return &SQL{} }

func (a *SQL) Format() schema.Format { return schema.FormatSQL }

// Parse converts every CREATE TABLE statement into a record node: columns
// become fields, NOT NULL maps to required, and DEFAULT clauses to field
// defaults. Statements other than CREATE TABLE are ignored so migration
// scripts parse as-is.
func (a *SQL) Parse(raw []byte) (*schema.Model, error) {
	statements := splitSQLStatements(string(raw))

	var nodes []*schema.Node
	for _, stmt := range statements {
		tokens := scanSQL(stmt)
		if len(tokens) == 0 {
			continue
		}
		if !tokenEquals(tokens, 0, "CREATE") || !tokenEquals(tokens, 1, "TABLE") {
			continue
		}
		node, err := parseCreateTable(tokens)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		return nil, schema.NewParseError(schema.FormatSQL, "no CREATE TABLE statements found", nil)
	}
	return &schema.Model{Format: schema.FormatSQL, Nodes: nodes}, nil
}

func parseCreateTable(tokens []string) (*schema.Node, error) {
	i := 2
	if tokenEquals(tokens, i, "IF") && tokenEquals(tokens, i+1, "NOT") && tokenEquals(tokens, i+2, "EXISTS") {
		i += 3
	}
	if i >= len(tokens) {
		return nil, schema.NewParseError(schema.FormatSQL, "CREATE TABLE missing name", nil)
	}
	name := unquoteSQLIdent(tokens[i])
	i++

	// Schema-qualified names keep only the table part.
	for tokenEquals(tokens, i, ".") {
		i++
		if i < len(tokens) {
			name = unquoteSQLIdent(tokens[i])
			i++
		}
	}

	if !tokenEquals(tokens, i, "(") {
		return nil, schema.NewParseError(schema.FormatSQL,
			fmt.Sprintf("table %s: expected column list", name), nil)
	}

	items, err := splitParenItems(tokens, i)
	if err != nil {
		return nil, schema.NewParseError(schema.FormatSQL, fmt.Sprintf("table %s", name), err)
	}

	node := &schema.Node{Kind: schema.KindRecord, Name: name}
	for _, item := range items {
		if len(item) == 0 || isTableConstraint(item[0]) {
			continue
		}
		f, err := parseColumn(name, item)
		if err != nil {
			return nil, err
		}
		node.Fields = append(node.Fields, f)
	}
	return node, nil
}

var tableConstraintKeywords = map[string]bool{
	"PRIMARY": true, "UNIQUE": true, "CONSTRAINT": true, "FOREIGN": true,
	"KEY": true, "CHECK": true, "INDEX": true, "EXCLUDE": true,
}

func isTableConstraint(tok string) bool {
	return tableConstraintKeywords[strings.ToUpper(tok)]
}

func parseColumn(table string, item []string) (schema.Field, error) {
	f := schema.Field{Name: unquoteSQLIdent(item[0])}
	if len(item) < 2 {
		return f, schema.NewParseError(schema.FormatSQL,
			fmt.Sprintf("table %s: column %s has no type", table, f.Name), nil)
	}

	typ, rest := parseSQLType(item[1:])
	f.Type = typ

	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(rest[i]) {
		case "NOT":
			if i+1 < len(rest) && strings.EqualFold(rest[i+1], "NULL") {
				f.Required = true
				i++
			}
		case "DEFAULT":
			if i+1 < len(rest) {
				f.HasDefault = true
				f.Default = stripSQLQuotes(rest[i+1])
				i++
			}
		case "PRIMARY":
			// PRIMARY KEY implies NOT NULL.
			f.Required = true
		}
	}
	return f, nil
}

// parseSQLType consumes the type name and optional length/precision or enum
// arguments, returning the node and the remaining column tokens.
func parseSQLType(tokens []string) (*schema.Node, []string) {
	typeName := strings.ToUpper(tokens[0])
	rest := tokens[1:]

	// Two-word types: DOUBLE PRECISION, CHARACTER VARYING.
	if len(rest) > 0 {
		second := strings.ToUpper(rest[0])
		if (typeName == "DOUBLE" && second == "PRECISION") ||
			(typeName == "CHARACTER" && second == "VARYING") {
			typeName += " " + second
			rest = rest[1:]
		}
	}

	var args []string
	if len(rest) > 0 && rest[0] == "(" {
		items, err := splitParenItems(rest, 0)
		if err == nil {
			for _, it := range items {
				args = append(args, strings.Join(it, ""))
			}
			depth := 0
			consumed := 0
			for j, t := range rest {
				if t == "(" {
					depth++
				}
				if t == ")" {
					depth--
					if depth == 0 {
						consumed = j + 1
						break
					}
				}
			}
			rest = rest[consumed:]
		}
	}

	node := &schema.Node{Kind: schema.KindScalar}
	switch typeName {
	case "TINYINT", "SMALLINT", "INT", "INTEGER", "MEDIUMINT", "SERIAL":
		node.Scalar = schema.ScalarInt32
	case "BIGINT", "BIGSERIAL":
		node.Scalar = schema.ScalarInt64
	case "REAL", "FLOAT":
		node.Scalar = schema.ScalarFloat32
	case "DOUBLE", "DOUBLE PRECISION":
		node.Scalar = schema.ScalarFloat64
	case "DECIMAL", "NUMERIC", "MONEY":
		node.Scalar = schema.ScalarDecimal
	case "CHAR", "VARCHAR", "NVARCHAR", "CHARACTER", "CHARACTER VARYING", "TEXT", "CLOB":
		node.Scalar = schema.ScalarString
		if len(args) == 1 {
			if n, ok := parseIntToken(args[0]); ok {
				node.Constraints = &schema.Constraints{MaxLength: &n}
			}
		}
	case "BOOL", "BOOLEAN":
		node.Scalar = schema.ScalarBool
	case "DATE":
		node.Scalar = schema.ScalarDate
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME":
		node.Scalar = schema.ScalarTimestamp
	case "BLOB", "BYTEA", "BINARY", "VARBINARY":
		node.Scalar = schema.ScalarBytes
	case "UUID":
		node.Scalar = schema.ScalarString
	case "ENUM":
		node.Scalar = schema.ScalarString
		if len(args) > 0 {
			c := &schema.Constraints{}
			for _, a := range args {
				c.Enum = append(c.Enum, stripSQLQuotes(a))
			}
			node.Constraints = c
		}
	default:
		node.Scalar = schema.ScalarUnknown
		node.Name = typeName
	}

	return node, rest
}

// splitParenItems splits the parenthesized list starting at tokens[open]
// into top-level comma-separated items.
func splitParenItems(tokens []string, open int) ([][]string, error) {
	if open >= len(tokens) || tokens[open] != "(" {
		return nil, fmt.Errorf("expected opening parenthesis")
	}
	var items [][]string
	var current []string
	depth := 0
	for i := open; i < len(tokens); i++ {
		t := tokens[i]
		switch t {
		case "(":
			depth++
			if depth > 1 {
				current = append(current, t)
			}
		case ")":
			depth--
			if depth == 0 {
				if len(current) > 0 {
					items = append(items, current)
				}
				return items, nil
			}
			current = append(current, t)
		case ",":
			if depth == 1 {
				if len(current) > 0 {
					items = append(items, current)
				}
				current = nil
			} else {
				current = append(current, t)
			}
		default:
			current = append(current, t)
		}
	}
	return nil, fmt.Errorf("unbalanced parentheses")
}

// splitSQLStatements splits on semicolons outside string literals.
func splitSQLStatements(src string) []string {
	var out []string
	var sb strings.Builder
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\'' {
			inString = !inString
		}
		if c == ';' && !inString {
			out = append(out, sb.String())
			sb.Reset()
			continue
		}
		sb.WriteByte(c)
	}
	if strings.TrimSpace(sb.String()) != "" {
		out = append(out, sb.String())
	}
	return out
}

// scanSQL tokenizes one statement, dropping line and block comments.
func scanSQL(src string) []string {
	var tokens []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case strings.HasPrefix(src[i:], "--"):
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = len(src)
			} else {
				i += end + 4
			}
		case c == '\'':
			j := i + 1
			for j < len(src) && src[j] != '\'' {
				j++
			}
			if j < len(src) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		case c == '"' || c == '`':
			quote := c
			j := i + 1
			for j < len(src) && src[j] != quote {
				j++
			}
			if j < len(src) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isSQLWordByte(c):
			j := i
			for j < len(src) && isSQLWordByte(src[j]) {
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

func isSQLWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func tokenEquals(tokens []string, i int, want string) bool {
	return i < len(tokens) && strings.EqualFold(tokens[i], want)
}

func unquoteSQLIdent(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func stripSQLQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseIntToken(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
