package rules

import (
	"fmt"

	"github.com/ternhq/tern/pkg/diff"
	"github.com/ternhq/tern/pkg/schema"
)

// Category is the closed enumeration of breaking-change categories. These
// strings are a stable contract consumed by CI gates and changelog tooling;
// they must not be renamed without a major version bump of the engine.
type Category string

const (
	CategoryRemovedEndpoint        Category = "REMOVED_ENDPOINT"
	CategoryAddedEndpoint          Category = "ADDED_ENDPOINT"
	CategoryRemovedField           Category = "REMOVED_FIELD"
	CategoryAddedField             Category = "ADDED_FIELD"
	CategoryAddedRequiredField     Category = "ADDED_REQUIRED_FIELD"
	CategoryRemovedEnumValue       Category = "REMOVED_ENUM_VALUE"
	CategoryAddedEnumValue         Category = "ADDED_ENUM_VALUE"
	CategoryRemovedType            Category = "REMOVED_TYPE"
	CategoryAddedType              Category = "ADDED_TYPE"
	CategoryChangedType            Category = "CHANGED_TYPE"
	CategoryNarrowedType           Category = "NARROWED_TYPE"
	CategoryWidenedType            Category = "WIDENED_TYPE"
	CategoryChangedRequired        Category = "CHANGED_REQUIRED"
	CategoryChangedDefault         Category = "CHANGED_DEFAULT"
	CategoryRemovedParameter       Category = "REMOVED_PARAMETER"
	CategoryAddedParameter         Category = "ADDED_PARAMETER"
	CategoryAddedRequiredParameter Category = "ADDED_REQUIRED_PARAMETER"
	CategoryChangedPath            Category = "CHANGED_PATH"
	CategoryChangedMethod          Category = "CHANGED_METHOD"
	CategoryRemovedResponse        Category = "REMOVED_RESPONSE"
	CategoryAddedResponse          Category = "ADDED_RESPONSE"
	CategoryChangedResponseType    Category = "CHANGED_RESPONSE_TYPE"
	CategoryReservedNumberReuse    Category = "RESERVED_NUMBER_REUSE"
	CategoryReservedNameReuse      Category = "RESERVED_NAME_REUSE"
	CategoryRenamedField           Category = "RENAMED_FIELD"
	CategoryDeprecated             Category = "DEPRECATED"
	CategoryUnknown                Category = "UNKNOWN"
)

// Severity ranks how serious a classified change is
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMinor
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	return []string{"info", "minor", "major", "critical"}[s]
}

// Direction records which side of the schema exchange a change can break
type Direction int

const (
	DirectionNone Direction = iota
	BreaksOldReaders
	BreaksNewReaders
	BreaksBoth
)

func (d Direction) String() string {
	return []string{"none", "breaks_old_readers", "breaks_new_readers", "breaks_both"}[d]
}

// BreakingChange is a classified structural change
type BreakingChange struct {
	Change     diff.Change
	Category   Category
	Severity   Severity
	Direction  Direction
	Message    string
	Mitigation string
	// Caveat carries the strict-consumer note for additive changes; it is
	// reported, never used to escalate severity.
	Caveat string
}

// Classifier maps differ output to classified entries for one format
type Classifier interface {
	Format() schema.Format
	Classify(c diff.Change) BreakingChange
}

// subject identifies what part of the schema a change touches. Together with
// the change kind and operation context it forms the rule-table key.
type subject int

const (
	subjectField subject = iota
	subjectEnumValue
	subjectParameter
	subjectOperation
	subjectRecord
	subjectEnum
	subjectService
	subjectResponse
	subjectRequestBody
	subjectType // inner type node: scalar, union variant, array item, map value
)

func (s subject) String() string {
	return []string{
		"field", "enum_value", "parameter", "operation", "record",
		"enum", "service", "response", "request_body", "type",
	}[s]
}

// subjectOf derives the rule-table subject from a change.
func subjectOf(c diff.Change) subject {
	if c.OldField != nil || c.NewField != nil {
		if parentKind(c) == schema.KindEnum {
			return subjectEnumValue
		}
		if c.Context == diff.ContextParameter {
			return subjectParameter
		}
		return subjectField
	}

	n := c.OldNode
	if n == nil {
		n = c.NewNode
	}
	if n == nil {
		return subjectType
	}
	if c.Context == diff.ContextResponse && (c.Kind == diff.Added || c.Kind == diff.Removed) {
		return subjectResponse
	}
	if c.Context == diff.ContextRequest && (c.Kind == diff.Added || c.Kind == diff.Removed) {
		return subjectRequestBody
	}
	switch n.Kind {
	case schema.KindOperation:
		return subjectOperation
	case schema.KindRecord:
		return subjectRecord
	case schema.KindEnum:
		return subjectEnum
	case schema.KindService:
		return subjectService
	default:
		return subjectType
	}
}

func parentKind(c diff.Change) schema.Kind {
	if c.OldParent != nil {
		return c.OldParent.Kind
	}
	if c.NewParent != nil {
		return c.NewParent.Kind
	}
	return schema.KindRecord
}

// ruleKey addresses one entry of the decision table. ctxAny matches every
// operation context and is the fallback when no context-specific entry
// exists.
type ruleKey struct {
	kind    diff.Kind
	subject subject
	ctx     diff.Context
}

const ctxAny = diff.Context(-1)

// RuleFunc produces the classification for one table entry
type RuleFunc func(t *Table, c diff.Change) BreakingChange

// Table is a format's compiled decision table plus its extension points.
type Table struct {
	format schema.Format

	// widening lists the scalar substitutions safe for readers of the new
	// schema. The reverse substitution is reported as a narrowing.
	widening map[[2]schema.ScalarKind]bool

	// reserved enables reservation checks. Formats without a reservation
	// mechanism leave it off and the checks never fire.
	reserved bool

	// strictConsumerCaveat is attached to additive changes that can break
	// closed/exhaustive matchers, when the format has such consumers.
	strictConsumerCaveat string

	rules map[ruleKey]RuleFunc
}

// NewTable builds a table with the shared rule families installed. Format
// constructors override individual entries afterwards.
func NewTable(format schema.Format) *Table {
	t := &Table{
		format:   format,
		widening: make(map[[2]schema.ScalarKind]bool),
		rules:    make(map[ruleKey]RuleFunc),
	}
	installSharedRules(t)
	return t
}

// Override installs or replaces the entry for (kind, subject) in every
// context.
func (t *Table) Override(kind diff.Kind, s subject, fn RuleFunc) {
	t.rules[ruleKey{kind, s, ctxAny}] = fn
}

// OverrideCtx installs or replaces a context-specific entry.
func (t *Table) OverrideCtx(kind diff.Kind, s subject, ctx diff.Context, fn RuleFunc) {
	t.rules[ruleKey{kind, s, ctx}] = fn
}

// AllowWidening marks old -> new as a safe reader-side substitution.
func (t *Table) AllowWidening(old, new schema.ScalarKind) {
	t.widening[[2]schema.ScalarKind{old, new}] = true
}

// Widens reports whether old -> new is in the widening table.
func (t *Table) Widens(old, new schema.ScalarKind) bool {
	return t.widening[[2]schema.ScalarKind{old, new}]
}

// Narrows reports whether old -> new is the reverse of a widening entry.
func (t *Table) Narrows(old, new schema.ScalarKind) bool {
	return t.widening[[2]schema.ScalarKind{new, old}]
}

func (t *Table) Format() schema.Format {
	return t.format
}

// Classify looks up the table entry for the change. Context-specific entries
// win over wildcard entries; a change with no entry at all is reported as
// UNKNOWN at Info severity so unfamiliar constructs never pass silently.
func (t *Table) Classify(c diff.Change) BreakingChange {
	s := subjectOf(c)
	if fn, ok := t.rules[ruleKey{c.Kind, s, c.Context}]; ok {
		return fn(t, c)
	}
	if fn, ok := t.rules[ruleKey{c.Kind, s, ctxAny}]; ok {
		return fn(t, c)
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryUnknown,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   fmt.Sprintf("unclassified %s change at %s", c.Kind, c.Path),
	}
}
