package rules

import (
	"fmt"

	"github.com/ternhq/tern/pkg/diff"
	"github.com/ternhq/tern/pkg/schema"
)

// installSharedRules wires the rule families every format starts from.
// Format constructors then override the entries whose semantics differ.
func installSharedRules(t *Table) {
	// Removal family.
	t.Override(diff.Removed, subjectField, RuleFieldRemoved)
	t.Override(diff.Removed, subjectEnumValue, RuleEnumValueRemoved)
	t.Override(diff.Removed, subjectParameter, RuleParameterRemoved)
	t.Override(diff.Removed, subjectOperation, RuleOperationRemoved)
	t.Override(diff.Removed, subjectRecord, RuleTypeRemoved)
	t.Override(diff.Removed, subjectEnum, RuleTypeRemoved)
	t.Override(diff.Removed, subjectService, RuleServiceRemoved)
	t.Override(diff.Removed, subjectResponse, RuleResponseRemoved)
	t.Override(diff.Removed, subjectRequestBody, RuleRequestBodyRemoved)
	t.Override(diff.Removed, subjectType, RuleTypeRemoved)

	// Addition family.
	t.Override(diff.Added, subjectField, RuleFieldAdded)
	t.Override(diff.Added, subjectEnumValue, RuleEnumValueAdded)
	t.Override(diff.Added, subjectParameter, RuleParameterAdded)
	t.Override(diff.Added, subjectOperation, RuleOperationAdded)
	t.Override(diff.Added, subjectRecord, RuleTypeAdded)
	t.Override(diff.Added, subjectEnum, RuleTypeAdded)
	t.Override(diff.Added, subjectService, RuleTypeAdded)
	t.Override(diff.Added, subjectResponse, RuleResponseAdded)
	t.Override(diff.Added, subjectRequestBody, RuleRequestBodyAdded)
	t.Override(diff.Added, subjectType, RuleTypeAdded)

	// Type changes.
	t.Override(diff.TypeChanged, subjectField, RuleTypeChanged)
	t.Override(diff.TypeChanged, subjectParameter, RuleTypeChanged)
	t.Override(diff.TypeChanged, subjectType, RuleTypeChanged)
	t.OverrideCtx(diff.TypeChanged, subjectType, diff.ContextResponse, RuleResponseTypeChanged)
	t.OverrideCtx(diff.TypeChanged, subjectField, diff.ContextResponse, RuleResponseTypeChanged)
	t.Override(diff.TypeChanged, subjectEnumValue, RuleEnumValueNumberChanged)
	t.Override(diff.TypeChanged, subjectOperation, RuleMethodChanged)
	t.Override(diff.TypeChanged, subjectRecord, RuleShapeChanged)
	t.Override(diff.TypeChanged, subjectEnum, RuleShapeChanged)
	t.Override(diff.TypeChanged, subjectService, RuleShapeChanged)

	// Required-ness.
	t.Override(diff.RequiredChanged, subjectField, RuleRequiredChanged)
	t.Override(diff.RequiredChanged, subjectParameter, RuleRequiredChanged)
	t.OverrideCtx(diff.RequiredChanged, subjectField, diff.ContextResponse, RuleResponseRequiredChanged)

	// Defaults, renames, deprecation.
	t.Override(diff.DefaultChanged, subjectField, RuleDefaultChanged)
	t.Override(diff.DefaultChanged, subjectParameter, RuleDefaultChanged)
	t.Override(diff.Renamed, subjectField, RuleRenamed)
	t.Override(diff.Renamed, subjectParameter, RuleRenamed)
	t.Override(diff.Deprecated, subjectField, RuleDeprecated)
	t.Override(diff.Deprecated, subjectEnumValue, RuleDeprecated)
	t.Override(diff.Deprecated, subjectParameter, RuleDeprecated)

	// Constraint movement.
	for _, s := range []subject{subjectField, subjectParameter, subjectType} {
		t.Override(diff.ConstraintNarrowed, s, RuleConstraintNarrowed)
		t.Override(diff.ConstraintWidened, s, RuleConstraintWidened)
		t.OverrideCtx(diff.ConstraintNarrowed, s, diff.ContextResponse, RuleResponseConstraintNarrowed)
		t.OverrideCtx(diff.ConstraintWidened, s, diff.ContextResponse, RuleResponseConstraintWidened)
	}

	// Unclassifiable constructs surface as UNKNOWN/Info, never dropped.
	for _, s := range []subject{
		subjectField, subjectEnumValue, subjectParameter, subjectOperation,
		subjectRecord, subjectEnum, subjectService, subjectResponse,
		subjectRequestBody, subjectType,
	} {
		t.Override(diff.Unknown, s, RuleUnknown)
	}
}

// RuleFieldRemoved classifies a removed record field. Removing a required
// field is a hard break for old readers; removing an optional field is a
// relaxation old readers only notice if they insisted on its presence. For
// formats with reservation semantics an un-reserved removal keeps the door
// open for tag reuse and is escalated.
func RuleFieldRemoved(t *Table, c diff.Change) BreakingChange {
	f := c.OldField
	bc := BreakingChange{
		Change:    c,
		Category:  CategoryRemovedField,
		Severity:  SeverityMinor,
		Direction: BreaksOldReaders,
		Message:   fmt.Sprintf("field %q was removed", f.Name),
	}
	if f.Required {
		bc.Severity = SeverityMajor
		bc.Message = fmt.Sprintf("required field %q was removed", f.Name)
		bc.Mitigation = "keep the field with a default value and deprecate it first"
	}
	if t.reserved && f.HasTag {
		if !reservedNumber(c.NewParent, f.Tag) && !reservedName(c.NewParent, f.Name) {
			bc.Severity = SeverityMajor
			bc.Message = fmt.Sprintf("field %q (tag %d) was removed without reserving its tag", f.Name, f.Tag)
			bc.Mitigation = "reserve the field tag and name to prevent reuse"
		} else {
			bc.Message = fmt.Sprintf("field %q (tag %d) was removed and properly reserved", f.Name, f.Tag)
		}
	}
	return bc
}

// RuleEnumValueRemoved classifies a removed enum symbol. A symbol moved into
// the reserved set in the same version is bookkeeping that prevents reuse
// regressions, not an active break.
func RuleEnumValueRemoved(t *Table, c diff.Change) BreakingChange {
	f := c.OldField
	if reservedEnumValue(c.NewParent, f) {
		return BreakingChange{
			Change:    c,
			Category:  CategoryRemovedEnumValue,
			Severity:  SeverityMinor,
			Direction: BreaksOldReaders,
			Message:   fmt.Sprintf("enum value %q was removed and added to the reserved set", f.Name),
		}
	}
	return BreakingChange{
		Change:     c,
		Category:   CategoryRemovedEnumValue,
		Severity:   SeverityMajor,
		Direction:  BreaksOldReaders,
		Message:    fmt.Sprintf("enum value %q was removed", f.Name),
		Mitigation: "add the value to the reserved set so it cannot be reused",
	}
}

// RuleParameterRemoved classifies a removed operation parameter.
func RuleParameterRemoved(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:     c,
		Category:   CategoryRemovedParameter,
		Severity:   SeverityMajor,
		Direction:  BreaksOldReaders,
		Message:    fmt.Sprintf("parameter %q was removed", c.OldField.Name),
		Mitigation: "keep accepting the parameter and ignore it if unused",
	}
}

// RuleOperationRemoved classifies a removed endpoint.
func RuleOperationRemoved(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:     c,
		Category:   CategoryRemovedEndpoint,
		Severity:   SeverityMajor,
		Direction:  BreaksOldReaders,
		Message:    fmt.Sprintf("endpoint %s was removed", c.OldNode.Identity()),
		Mitigation: "keep the endpoint with a deprecation notice or version the API",
	}
}

// RuleServiceRemoved classifies a removed service and all its operations.
func RuleServiceRemoved(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:     c,
		Category:   CategoryRemovedEndpoint,
		Severity:   SeverityMajor,
		Direction:  BreaksOldReaders,
		Message:    fmt.Sprintf("service %q was removed", c.OldNode.Name),
		Mitigation: "keep the service or deprecate it first",
	}
}

// RuleTypeRemoved classifies a removed named type (record, enum, union).
func RuleTypeRemoved(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryRemovedType,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   fmt.Sprintf("%s was removed", diff.RenderNode(c.OldNode)),
	}
}

// RuleResponseRemoved classifies a removed response status arm.
func RuleResponseRemoved(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryRemovedResponse,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   fmt.Sprintf("response %s was removed", c.Path[len(c.Path)-1].Name),
	}
}

// RuleRequestBodyRemoved classifies removal of an operation's request body.
func RuleRequestBodyRemoved(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryRemovedField,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   "request body was removed",
	}
}

// RuleFieldAdded classifies an added record field. Adding a required member
// without a default invalidates every existing payload; optional additions
// only threaten consumers doing closed matching, which is surfaced as a
// caveat. Reservation reuse is checked first because historical data silently
// mis-decodes when a reserved tag comes back.
func RuleFieldAdded(t *Table, c diff.Change) BreakingChange {
	f := c.NewField
	if t.reserved {
		if f.HasTag && reservedNumber(c.OldParent, f.Tag) {
			return BreakingChange{
				Change:     c,
				Category:   CategoryReservedNumberReuse,
				Severity:   SeverityCritical,
				Direction:  BreaksBoth,
				Message:    fmt.Sprintf("field %q reuses reserved tag %d", f.Name, f.Tag),
				Mitigation: "reserved tags must never be reused; pick a fresh tag",
			}
		}
		if reservedName(c.OldParent, f.Name) {
			return BreakingChange{
				Change:     c,
				Category:   CategoryReservedNameReuse,
				Severity:   SeverityCritical,
				Direction:  BreaksBoth,
				Message:    fmt.Sprintf("field %q reuses a reserved name", f.Name),
				Mitigation: "reserved names must never be reused; pick a fresh name",
			}
		}
	}
	if f.Required && !f.HasDefault {
		return BreakingChange{
			Change:     c,
			Category:   CategoryAddedRequiredField,
			Severity:   SeverityMajor,
			Direction:  BreaksOldReaders,
			Message:    fmt.Sprintf("required field %q was added without a default", f.Name),
			Mitigation: "make the field optional or give it a default value",
		}
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryAddedField,
		Severity:  SeverityInfo,
		Direction: BreaksNewReaders,
		Message:   fmt.Sprintf("optional field %q was added", f.Name),
		Caveat:    t.strictConsumerCaveat,
	}
}

// RuleEnumValueAdded classifies an added enum symbol.
func RuleEnumValueAdded(t *Table, c diff.Change) BreakingChange {
	f := c.NewField
	if t.reserved && reservedEnumValue(c.OldParent, f) {
		return BreakingChange{
			Change:     c,
			Category:   CategoryReservedNameReuse,
			Severity:   SeverityCritical,
			Direction:  BreaksBoth,
			Message:    fmt.Sprintf("enum value %q reuses a reserved symbol", f.Name),
			Mitigation: "reserved enum values must never be reused",
		}
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryAddedEnumValue,
		Severity:  SeverityInfo,
		Direction: BreaksNewReaders,
		Message:   fmt.Sprintf("enum value %q was added", f.Name),
		Caveat:    t.strictConsumerCaveat,
	}
}

// RuleParameterAdded classifies an added operation parameter.
func RuleParameterAdded(t *Table, c diff.Change) BreakingChange {
	f := c.NewField
	if f.Required && !f.HasDefault {
		return BreakingChange{
			Change:     c,
			Category:   CategoryAddedRequiredParameter,
			Severity:   SeverityMajor,
			Direction:  BreaksOldReaders,
			Message:    fmt.Sprintf("required parameter %q was added", f.Name),
			Mitigation: "make the parameter optional with a sensible default",
		}
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryAddedParameter,
		Severity:  SeverityInfo,
		Direction: BreaksNewReaders,
		Message:   fmt.Sprintf("optional parameter %q was added", f.Name),
	}
}

// RuleOperationAdded classifies a new endpoint.
func RuleOperationAdded(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryAddedEndpoint,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   fmt.Sprintf("endpoint %s was added", c.NewNode.Identity()),
	}
}

// RuleTypeAdded classifies a new named type.
func RuleTypeAdded(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryAddedType,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   fmt.Sprintf("%s was added", diff.RenderNode(c.NewNode)),
	}
}

// RuleResponseAdded classifies a new response status arm.
func RuleResponseAdded(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryAddedResponse,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   fmt.Sprintf("response %s was added", c.Path[len(c.Path)-1].Name),
	}
}

// RuleRequestBodyAdded classifies the introduction of a request body, which
// existing callers will not be sending.
func RuleRequestBodyAdded(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:     c,
		Category:   CategoryChangedRequired,
		Severity:   SeverityMajor,
		Direction:  BreaksOldReaders,
		Message:    "request body was added",
		Mitigation: "accept requests without a body during a transition period",
	}
}

// RuleTypeChanged classifies a scalar or shape type change through the
// format's widening table. Substitutions in the table are reader-safe in one
// direction only; anything outside the table mis-decodes for both sides.
func RuleTypeChanged(t *Table, c diff.Change) BreakingChange {
	oldScalar, newScalar, scalarOK := changeScalars(c)
	if scalarOK {
		if t.Widens(oldScalar, newScalar) {
			return BreakingChange{
				Change:    c,
				Category:  CategoryWidenedType,
				Severity:  SeverityMinor,
				Direction: BreaksNewReaders,
				Message:   fmt.Sprintf("type widened from %s to %s", oldScalar, newScalar),
			}
		}
		if t.Narrows(oldScalar, newScalar) {
			return BreakingChange{
				Change:    c,
				Category:  CategoryNarrowedType,
				Severity:  SeverityMajor,
				Direction: BreaksOldReaders,
				Message:   fmt.Sprintf("type narrowed from %s to %s", oldScalar, newScalar),
			}
		}
	}
	return BreakingChange{
		Change:     c,
		Category:   CategoryChangedType,
		Severity:   SeverityCritical,
		Direction:  BreaksBoth,
		Message:    fmt.Sprintf("type changed from %s to %s", c.OldValue(), c.NewValue()),
		Mitigation: "introduce a new member with the new type instead of mutating this one",
	}
}

// RuleResponseTypeChanged mirrors RuleTypeChanged for the response side,
// where the reader is the old client: producing a wider type breaks old
// readers, producing a narrower one is a stronger promise.
func RuleResponseTypeChanged(t *Table, c diff.Change) BreakingChange {
	oldScalar, newScalar, scalarOK := changeScalars(c)
	if scalarOK {
		if t.Widens(oldScalar, newScalar) {
			return BreakingChange{
				Change:    c,
				Category:  CategoryChangedResponseType,
				Severity:  SeverityMajor,
				Direction: BreaksOldReaders,
				Message:   fmt.Sprintf("response type widened from %s to %s", oldScalar, newScalar),
			}
		}
		if t.Narrows(oldScalar, newScalar) {
			return BreakingChange{
				Change:    c,
				Category:  CategoryChangedResponseType,
				Severity:  SeverityInfo,
				Direction: DirectionNone,
				Message:   fmt.Sprintf("response type narrowed from %s to %s", oldScalar, newScalar),
			}
		}
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryChangedResponseType,
		Severity:  SeverityCritical,
		Direction: BreaksBoth,
		Message:   fmt.Sprintf("response type changed from %s to %s", c.OldValue(), c.NewValue()),
	}
}

// RuleEnumValueNumberChanged classifies a renumbered enum symbol: wire
// identity is lost in both directions.
func RuleEnumValueNumberChanged(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:     c,
		Category:   CategoryChangedType,
		Severity:   SeverityCritical,
		Direction:  BreaksBoth,
		Message:    fmt.Sprintf("enum value %q changed number from %d to %d", c.OldField.Name, c.OldField.Tag, c.NewField.Tag),
		Mitigation: "enum value numbers must remain stable",
	}
}

// RuleMethodChanged classifies an operation keeping its route but changing
// HTTP method.
func RuleMethodChanged(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryChangedMethod,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   fmt.Sprintf("http method changed from %s to %s", c.OldNode.Method, c.NewNode.Method),
	}
}

// RuleShapeChanged classifies a named type switching variants entirely,
// for example a record becoming an enum.
func RuleShapeChanged(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryChangedType,
		Severity:  SeverityCritical,
		Direction: BreaksBoth,
		Message:   fmt.Sprintf("declaration changed from %s to %s", diff.RenderNode(c.OldNode), diff.RenderNode(c.NewNode)),
	}
}

// RuleRequiredChanged classifies required-ness flips in schema, request and
// parameter positions. Tightening strands every old payload; relaxing only
// asks consumers to tolerate absence.
func RuleRequiredChanged(t *Table, c diff.Change) BreakingChange {
	if !c.OldField.Required && c.NewField.Required {
		return BreakingChange{
			Change:     c,
			Category:   CategoryChangedRequired,
			Severity:   SeverityMajor,
			Direction:  BreaksOldReaders,
			Message:    fmt.Sprintf("field %q changed from optional to required", c.OldField.Name),
			Mitigation: "keep the field optional with a default value",
		}
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryChangedRequired,
		Severity:  SeverityMinor,
		Direction: BreaksOldReaders,
		Message:   fmt.Sprintf("field %q changed from required to optional; consumers must tolerate absence", c.OldField.Name),
	}
}

// RuleResponseRequiredChanged handles the response-side asymmetry: a
// producer promising a field it previously might omit is safe for old
// readers, while withdrawing such a promise breaks them.
func RuleResponseRequiredChanged(t *Table, c diff.Change) BreakingChange {
	if !c.OldField.Required && c.NewField.Required {
		return BreakingChange{
			Change:    c,
			Category:  CategoryChangedRequired,
			Severity:  SeverityInfo,
			Direction: DirectionNone,
			Message:   fmt.Sprintf("response field %q is now always present", c.OldField.Name),
		}
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryChangedRequired,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   fmt.Sprintf("response field %q is no longer guaranteed to be present", c.OldField.Name),
	}
}

// RuleDefaultChanged classifies a default-value change. Defaults only matter
// when the member can be absent, so required members get an Info entry.
func RuleDefaultChanged(t *Table, c diff.Change) BreakingChange {
	sev := SeverityMinor
	if c.NewField.Required {
		sev = SeverityInfo
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryChangedDefault,
		Severity:  sev,
		Direction: DirectionNone,
		Message:   fmt.Sprintf("default for %q changed from %q to %q", c.OldField.Name, c.OldField.Default, c.NewField.Default),
	}
}

// RuleRenamed classifies a documented rename (alias-backed or tag-stable).
func RuleRenamed(t *Table, c diff.Change) BreakingChange {
	msg := fmt.Sprintf("field %q was renamed to %q", c.OldField.Name, c.NewField.Name)
	if c.Note != "" {
		msg += " (" + c.Note + ")"
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryRenamedField,
		Severity:  SeverityMinor,
		Direction: DirectionNone,
		Message:   msg,
	}
}

// RuleDeprecated classifies a new deprecation marker.
func RuleDeprecated(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryDeprecated,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   fmt.Sprintf("%q was marked deprecated", c.OldField.Name),
	}
}

// RuleConstraintNarrowed classifies tightened value constraints in schema,
// request and parameter positions: existing writers may now produce invalid
// values.
func RuleConstraintNarrowed(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryNarrowedType,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   constraintMessage("constraint narrowed", c),
	}
}

// RuleConstraintWidened classifies loosened constraints: safe except for
// consumers doing closed matching over the old value set.
func RuleConstraintWidened(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryWidenedType,
		Severity:  SeverityMinor,
		Direction: BreaksNewReaders,
		Message:   constraintMessage("constraint widened", c),
		Caveat:    t.strictConsumerCaveat,
	}
}

// RuleResponseConstraintNarrowed: response-side inversion of narrowing, the
// producer now promises a subset of what it used to.
func RuleResponseConstraintNarrowed(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryNarrowedType,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   constraintMessage("response constraint narrowed", c),
	}
}

// RuleResponseConstraintWidened: a response producing values outside the old
// constraint set breaks old readers.
func RuleResponseConstraintWidened(t *Table, c diff.Change) BreakingChange {
	return BreakingChange{
		Change:    c,
		Category:  CategoryWidenedType,
		Severity:  SeverityMajor,
		Direction: BreaksOldReaders,
		Message:   constraintMessage("response constraint widened", c),
	}
}

// RuleUnknown preserves unclassifiable constructs in the report.
func RuleUnknown(t *Table, c diff.Change) BreakingChange {
	msg := fmt.Sprintf("unsupported construct at %s", c.Path)
	if c.Note != "" {
		msg += ": " + c.Note
	}
	return BreakingChange{
		Change:    c,
		Category:  CategoryUnknown,
		Severity:  SeverityInfo,
		Direction: DirectionNone,
		Message:   msg,
	}
}

func constraintMessage(prefix string, c diff.Change) string {
	if c.Note != "" {
		return fmt.Sprintf("%s at %s: %s", prefix, c.Path, c.Note)
	}
	return fmt.Sprintf("%s at %s", prefix, c.Path)
}

// changeScalars extracts the scalar pair from either a field-level or a
// node-level type change.
func changeScalars(c diff.Change) (old, new schema.ScalarKind, ok bool) {
	oldNode, newNode := c.OldNode, c.NewNode
	if c.OldField != nil && c.OldField.Type != nil {
		oldNode = c.OldField.Type
	}
	if c.NewField != nil && c.NewField.Type != nil {
		newNode = c.NewField.Type
	}
	if oldNode == nil || newNode == nil {
		return 0, 0, false
	}
	if oldNode.Kind != schema.KindScalar || newNode.Kind != schema.KindScalar {
		return 0, 0, false
	}
	return oldNode.Scalar, newNode.Scalar, true
}

func reservedNumber(parent *schema.Node, tag int32) bool {
	if parent == nil {
		return false
	}
	for _, n := range parent.ReservedNumbers {
		if n == tag {
			return true
		}
	}
	return false
}

func reservedName(parent *schema.Node, name string) bool {
	if parent == nil {
		return false
	}
	for _, n := range parent.ReservedNames {
		if n == name {
			return true
		}
	}
	return false
}

// reservedEnumValue checks an enum's reserved symbol set and, for numbered
// enums, its reserved numbers.
func reservedEnumValue(parent *schema.Node, f *schema.Field) bool {
	if parent == nil {
		return false
	}
	for _, v := range parent.ReservedValues {
		if v == f.Name {
			return true
		}
	}
	if f.HasTag {
		for _, n := range parent.ReservedNumbers {
			if n == f.Tag {
				return true
			}
		}
	}
	return false
}
