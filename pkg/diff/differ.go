package diff

import (
	"sort"
	"strings"

	"github.com/ternhq/tern/pkg/schema"
)

// Differ walks two models of the same format in lock-step and collects the
// ordered change list. A Differ is stateless and safe for concurrent use;
// each Compare call allocates its own output.
type Differ struct {
	format schema.Format
}

// New creates a differ for the given format. The format controls field
// identity (name vs numeric tag) during sibling alignment.
func New(format schema.Format) *Differ {
	return &Differ{format: format}
}

// Compare aligns the two trees and returns every structural delta, in
// deterministic pre-order: old-tree order first, then new-only paths.
func (d *Differ) Compare(oldModel, newModel *schema.Model) []Change {
	w := &walker{format: d.format}
	w.compareTopLevel(oldModel.Nodes, newModel.Nodes)
	return w.changes
}

type walker struct {
	format  schema.Format
	changes []Change
}

func (w *walker) emit(c Change) {
	w.changes = append(w.changes, c)
}

func (w *walker) compareTopLevel(oldNodes, newNodes []*schema.Node) {
	oldByID := indexNodes(oldNodes)
	newByID := indexNodes(newNodes)

	var removed []*schema.Node
	for _, on := range oldNodes {
		nn, ok := newByID[on.Identity()]
		if !ok {
			removed = append(removed, on)
			continue
		}
		w.compareNode(schema.Path{}.Child(on.Identity()), on, nn, ContextSchema, nil, nil)
	}

	var added []*schema.Node
	for _, nn := range newNodes {
		if _, ok := oldByID[nn.Identity()]; !ok {
			added = append(added, nn)
		}
	}

	// An operation that kept its route but changed HTTP method would
	// otherwise surface as an unrelated remove/add pair. Pair those up
	// before reporting plain removals.
	consumedAdd := make(map[*schema.Node]bool)
	for _, on := range removed {
		if on.Kind == schema.KindOperation {
			if nn := findRouteMate(on, added, consumedAdd); nn != nil {
				consumedAdd[nn] = true
				w.emit(Change{
					Path:    schema.Path{}.Child(on.Route),
					Kind:    TypeChanged,
					Context: ContextSchema,
					OldNode: on,
					NewNode: nn,
					Note:    "http method changed",
				})
				continue
			}
		}
		w.emit(Change{
			Path:    schema.Path{}.Child(on.Identity()),
			Kind:    Removed,
			Context: ContextSchema,
			OldNode: on,
		})
	}
	for _, nn := range added {
		if consumedAdd[nn] {
			continue
		}
		w.emit(Change{
			Path:    schema.Path{}.Child(nn.Identity()),
			Kind:    Added,
			Context: ContextSchema,
			NewNode: nn,
		})
	}
}

func findRouteMate(op *schema.Node, added []*schema.Node, consumed map[*schema.Node]bool) *schema.Node {
	for _, cand := range added {
		if consumed[cand] {
			continue
		}
		if cand.Kind == schema.KindOperation && cand.Route == op.Route {
			return cand
		}
	}
	return nil
}

func indexNodes(nodes []*schema.Node) map[string]*schema.Node {
	m := make(map[string]*schema.Node, len(nodes))
	for _, n := range nodes {
		m[n.Identity()] = n
	}
	return m
}

func (w *walker) compareNode(path schema.Path, oldNode, newNode *schema.Node, ctx Context, oldParent, newParent *schema.Node) {
	if oldNode.Kind != newNode.Kind {
		w.emit(Change{
			Path: path, Kind: TypeChanged, Context: ctx,
			OldNode: oldNode, NewNode: newNode,
			OldParent: oldParent, NewParent: newParent,
		})
		return
	}

	// A named composite at a non-root position is a type reference; pointing
	// it at a different declaration is a type change even when the shapes
	// happen to align.
	switch oldNode.Kind {
	case schema.KindRecord, schema.KindEnum, schema.KindUnion:
		if len(path) > 1 && oldNode.Name != "" && newNode.Name != "" && oldNode.Name != newNode.Name {
			w.emit(Change{
				Path: path, Kind: TypeChanged, Context: ctx,
				OldNode: oldNode, NewNode: newNode,
				OldParent: oldParent, NewParent: newParent,
			})
			return
		}
	}

	switch oldNode.Kind {
	case schema.KindScalar:
		w.compareScalar(path, oldNode, newNode, ctx, oldParent, newParent)
	case schema.KindRecord:
		w.compareFields(path, oldNode.Fields, newNode.Fields, ctx, oldNode, newNode)
	case schema.KindEnum:
		w.compareEnum(path, oldNode, newNode, ctx)
	case schema.KindUnion:
		w.compareUnion(path, oldNode, newNode, ctx)
	case schema.KindArray:
		w.compareNode(path.Child("items"), oldNode.Item, newNode.Item, ctx, oldParent, newParent)
	case schema.KindMap:
		w.compareNode(path.Child("keys"), oldNode.Key, newNode.Key, ctx, oldParent, newParent)
		w.compareNode(path.Child("values"), oldNode.Value, newNode.Value, ctx, oldParent, newParent)
	case schema.KindOperation:
		w.compareOperation(path, oldNode, newNode)
	case schema.KindService:
		w.compareTopLevelUnder(path, oldNode.Operations, newNode.Operations)
	default:
		w.emit(Change{
			Path: path, Kind: Unknown, Context: ctx,
			OldNode: oldNode, NewNode: newNode,
			Note: "unrecognized node kind",
		})
	}
}

// compareTopLevelUnder aligns a named sub-collection the same way the root
// collection is aligned (used for service operations).
func (w *walker) compareTopLevelUnder(path schema.Path, oldNodes, newNodes []*schema.Node) {
	oldByID := indexNodes(oldNodes)
	newByID := indexNodes(newNodes)

	for _, on := range oldNodes {
		nn, ok := newByID[on.Identity()]
		if !ok {
			w.emit(Change{
				Path: path.Child(on.Identity()), Kind: Removed,
				Context: ContextSchema, OldNode: on,
			})
			continue
		}
		w.compareNode(path.Child(on.Identity()), on, nn, ContextSchema, nil, nil)
	}
	for _, nn := range newNodes {
		if _, ok := oldByID[nn.Identity()]; !ok {
			w.emit(Change{
				Path: path.Child(nn.Identity()), Kind: Added,
				Context: ContextSchema, NewNode: nn,
			})
		}
	}
}

func (w *walker) compareScalar(path schema.Path, oldNode, newNode *schema.Node, ctx Context, oldParent, newParent *schema.Node) {
	if oldNode.Scalar == schema.ScalarUnknown || newNode.Scalar == schema.ScalarUnknown {
		// Two opaque scalars under the same name are the same type; only a
		// mismatch is reportable.
		if oldNode.Scalar == newNode.Scalar && oldNode.Name == newNode.Name {
			w.compareConstraints(path, oldNode, newNode, ctx)
			return
		}
		w.emit(Change{
			Path: path, Kind: Unknown, Context: ctx,
			OldNode: oldNode, NewNode: newNode,
			Note: "unrecognized scalar type",
		})
		return
	}
	if oldNode.Scalar != newNode.Scalar {
		w.emit(Change{
			Path: path, Kind: TypeChanged, Context: ctx,
			OldNode: oldNode, NewNode: newNode,
			OldParent: oldParent, NewParent: newParent,
		})
		return
	}
	w.compareConstraints(path, oldNode, newNode, ctx)
}

func (w *walker) compareConstraints(path schema.Path, oldNode, newNode *schema.Node, ctx Context) {
	oc, nc := oldNode.Constraints, newNode.Constraints
	if oc == nil && nc == nil {
		return
	}
	narrowed, widened, note := compareConstraintSets(oc, nc)
	if narrowed {
		w.emit(Change{
			Path: path, Kind: ConstraintNarrowed, Context: ctx,
			OldNode: oldNode, NewNode: newNode, Note: note,
		})
	}
	if widened {
		w.emit(Change{
			Path: path, Kind: ConstraintWidened, Context: ctx,
			OldNode: oldNode, NewNode: newNode, Note: note,
		})
	}
}

// compareConstraintSets reports whether the new constraints tighten or loosen
// the old ones. A nil set is unconstrained.
func compareConstraintSets(oc, nc *schema.Constraints) (narrowed, widened bool, note string) {
	if oc == nil {
		oc = &schema.Constraints{}
	}
	if nc == nil {
		nc = &schema.Constraints{}
	}

	if len(oc.Enum) > 0 || len(nc.Enum) > 0 {
		oldSet := stringSet(oc.Enum)
		newSet := stringSet(nc.Enum)
		var lost, gained []string
		for _, v := range oc.Enum {
			if _, ok := newSet[v]; !ok {
				lost = append(lost, v)
			}
		}
		for _, v := range nc.Enum {
			if _, ok := oldSet[v]; !ok {
				gained = append(gained, v)
			}
		}
		switch {
		case len(oc.Enum) == 0 && len(nc.Enum) > 0:
			narrowed = true
			note = "value set constrained to enum"
		case len(nc.Enum) == 0 && len(oc.Enum) > 0:
			widened = true
			note = "enum constraint lifted"
		case len(lost) > 0:
			narrowed = true
			note = "enum values removed: " + strings.Join(lost, ", ")
		case len(gained) > 0:
			widened = true
			note = "enum values added: " + strings.Join(gained, ", ")
		}
	}

	if intTightened(oc.MinLength, nc.MinLength, false) ||
		intTightened(oc.MaxLength, nc.MaxLength, true) ||
		floatTightened(oc.Minimum, nc.Minimum, false) ||
		floatTightened(oc.Maximum, nc.Maximum, true) ||
		(oc.Pattern == "" && nc.Pattern != "") ||
		(oc.Pattern != "" && nc.Pattern != "" && oc.Pattern != nc.Pattern) {
		narrowed = true
	}
	if intTightened(nc.MinLength, oc.MinLength, false) ||
		intTightened(nc.MaxLength, oc.MaxLength, true) ||
		floatTightened(nc.Minimum, oc.Minimum, false) ||
		floatTightened(nc.Maximum, oc.Maximum, true) ||
		(nc.Pattern == "" && oc.Pattern != "") {
		widened = true
	}
	return narrowed, widened, note
}

// intTightened reports whether going old -> new tightens the bound. For
// upper bounds (isMax) a smaller value tightens; for lower bounds a larger
// value does. Introducing a bound where none existed always tightens.
func intTightened(old, new *int, isMax bool) bool {
	if new == nil {
		return false
	}
	if old == nil {
		return true
	}
	if isMax {
		return *new < *old
	}
	return *new > *old
}

func floatTightened(old, new *float64, isMax bool) bool {
	if new == nil {
		return false
	}
	if old == nil {
		return true
	}
	if isMax {
		return *new < *old
	}
	return *new > *old
}

func stringSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func (w *walker) compareEnum(path schema.Path, oldEnum, newEnum *schema.Node, ctx Context) {
	newByName := make(map[string]schema.EnumValue, len(newEnum.Values))
	for _, v := range newEnum.Values {
		newByName[v.Name] = v
	}
	oldByName := make(map[string]schema.EnumValue, len(oldEnum.Values))
	for _, v := range oldEnum.Values {
		oldByName[v.Name] = v
	}

	for _, ov := range oldEnum.Values {
		nv, ok := newByName[ov.Name]
		if !ok {
			f := enumValueField(ov)
			w.emit(Change{
				Path: path.Child(ov.Name), Kind: Removed, Context: ctx,
				OldField: &f, OldParent: oldEnum, NewParent: newEnum,
			})
			continue
		}
		if ov.HasNumber && nv.HasNumber && ov.Number != nv.Number {
			of, nf := enumValueField(ov), enumValueField(nv)
			w.emit(Change{
				Path: path.Child(ov.Name), Kind: TypeChanged, Context: ctx,
				OldField: &of, NewField: &nf,
				OldParent: oldEnum, NewParent: newEnum,
				Note: "enum value number changed",
			})
		}
		if !ov.Deprecated && nv.Deprecated {
			of, nf := enumValueField(ov), enumValueField(nv)
			w.emit(Change{
				Path: path.Child(ov.Name), Kind: Deprecated, Context: ctx,
				OldField: &of, NewField: &nf,
				OldParent: oldEnum, NewParent: newEnum,
			})
		}
	}
	for _, nv := range newEnum.Values {
		if _, ok := oldByName[nv.Name]; !ok {
			f := enumValueField(nv)
			w.emit(Change{
				Path: path.Child(nv.Name), Kind: Added, Context: ctx,
				NewField: &f, OldParent: oldEnum, NewParent: newEnum,
			})
		}
	}
}

// enumValueField lifts an enum symbol into the Field shape changes carry.
func enumValueField(v schema.EnumValue) schema.Field {
	return schema.Field{
		Name:       v.Name,
		Tag:        v.Number,
		HasTag:     v.HasNumber,
		Deprecated: v.Deprecated,
	}
}

func (w *walker) compareUnion(path schema.Path, oldUnion, newUnion *schema.Node, ctx Context) {
	oldByID := make(map[string]*schema.Node, len(oldUnion.Variants))
	for _, v := range oldUnion.Variants {
		oldByID[variantIdentity(v)] = v
	}
	newByID := make(map[string]*schema.Node, len(newUnion.Variants))
	for _, v := range newUnion.Variants {
		newByID[variantIdentity(v)] = v
	}

	for _, ov := range oldUnion.Variants {
		id := variantIdentity(ov)
		nv, ok := newByID[id]
		if !ok {
			w.emit(Change{
				Path: path.Child(id), Kind: ConstraintNarrowed, Context: ctx,
				OldNode: ov, OldParent: oldUnion, NewParent: newUnion,
				Note: "union variant removed",
			})
			continue
		}
		w.compareNode(path.Child(id), ov, nv, ctx, oldUnion, newUnion)
	}
	for _, nv := range newUnion.Variants {
		id := variantIdentity(nv)
		if _, ok := oldByID[id]; !ok {
			w.emit(Change{
				Path: path.Child(id), Kind: ConstraintWidened, Context: ctx,
				NewNode: nv, OldParent: oldUnion, NewParent: newUnion,
				Note: "union variant added",
			})
		}
	}
}

func variantIdentity(n *schema.Node) string {
	if n.Name != "" {
		return n.Name
	}
	if n.Kind == schema.KindScalar {
		return n.Scalar.String()
	}
	return RenderNode(n)
}

func (w *walker) compareOperation(path schema.Path, oldOp, newOp *schema.Node) {
	w.compareFields(path.Child("parameters"), oldOp.Parameters, newOp.Parameters, ContextParameter, nil, nil)

	switch {
	case oldOp.RequestBody != nil && newOp.RequestBody == nil:
		w.emit(Change{
			Path: path.Child("requestBody"), Kind: Removed,
			Context: ContextRequest, OldNode: oldOp.RequestBody,
		})
	case oldOp.RequestBody == nil && newOp.RequestBody != nil:
		w.emit(Change{
			Path: path.Child("requestBody"), Kind: Added,
			Context: ContextRequest, NewNode: newOp.RequestBody,
		})
	case oldOp.RequestBody != nil:
		w.compareNode(path.Child("requestBody"), oldOp.RequestBody, newOp.RequestBody, ContextRequest, nil, nil)
	}

	newResp := make(map[string]schema.Response, len(newOp.Responses))
	for _, r := range newOp.Responses {
		newResp[r.Status] = r
	}
	oldResp := make(map[string]schema.Response, len(oldOp.Responses))
	for _, r := range oldOp.Responses {
		oldResp[r.Status] = r
	}
	for _, or := range oldOp.Responses {
		nr, ok := newResp[or.Status]
		if !ok {
			w.emit(Change{
				Path: path.Child("responses").Child(or.Status), Kind: Removed,
				Context: ContextResponse, OldNode: or.Body,
			})
			continue
		}
		if or.Body != nil && nr.Body != nil {
			w.compareNode(path.Child("responses").Child(or.Status), or.Body, nr.Body, ContextResponse, nil, nil)
		}
	}
	for _, nr := range newOp.Responses {
		if _, ok := oldResp[nr.Status]; !ok {
			w.emit(Change{
				Path: path.Child("responses").Child(nr.Status), Kind: Added,
				Context: ContextResponse, NewNode: nr.Body,
			})
		}
	}
}

func (w *walker) compareFields(path schema.Path, oldFields, newFields []schema.Field, ctx Context, oldParent, newParent *schema.Node) {
	oldByID := make(map[string]int, len(oldFields))
	for i, f := range oldFields {
		oldByID[schema.FieldIdentity(f, w.format)] = i
	}
	newByID := make(map[string]int, len(newFields))
	for i, f := range newFields {
		newByID[schema.FieldIdentity(f, w.format)] = i
	}

	var removedIdx []int
	for i, of := range oldFields {
		j, ok := newByID[schema.FieldIdentity(of, w.format)]
		if !ok {
			removedIdx = append(removedIdx, i)
			continue
		}
		w.compareField(path, of, newFields[j], ctx, oldParent, newParent)
	}
	var addedIdx []int
	for j, nf := range newFields {
		if _, ok := oldByID[schema.FieldIdentity(nf, w.format)]; !ok {
			addedIdx = append(addedIdx, j)
		}
	}

	// Alias-aware rename detection: a removed old field whose name appears
	// in an added field's alias set (or vice versa) is the same logical
	// field under a new name.
	consumedAdd := make(map[int]bool)
	for _, i := range removedIdx {
		of := oldFields[i]
		candidates := renameCandidates(of, newFields, addedIdx, consumedAdd)
		if len(candidates) == 0 {
			w.emit(Change{
				Path: fieldPath(path, of), Kind: Removed, Context: ctx,
				OldField: &oldFields[i], OldParent: oldParent, NewParent: newParent,
			})
			continue
		}
		// Deterministic resolution: prefer the lexicographically first
		// candidate name, and surface the ambiguity instead of failing.
		sort.Slice(candidates, func(a, b int) bool {
			return newFields[candidates[a]].Name < newFields[candidates[b]].Name
		})
		chosen := candidates[0]
		consumedAdd[chosen] = true
		note := ""
		if len(candidates) > 1 {
			note = "ambiguous rename: multiple alias candidates, resolved to lexicographically first"
		}
		w.emit(Change{
			Path: fieldPath(path, of), Kind: Renamed, Context: ctx,
			OldField: &oldFields[i], NewField: &newFields[chosen],
			OldParent: oldParent, NewParent: newParent, Note: note,
		})
		w.compareFieldAttrs(path, of, newFields[chosen], ctx, oldParent, newParent)
	}
	for _, j := range addedIdx {
		if consumedAdd[j] {
			continue
		}
		w.emit(Change{
			Path: fieldPath(path, newFields[j]), Kind: Added, Context: ctx,
			NewField: &newFields[j], OldParent: oldParent, NewParent: newParent,
		})
	}
}

func renameCandidates(old schema.Field, newFields []schema.Field, addedIdx []int, consumed map[int]bool) []int {
	var out []int
	for _, j := range addedIdx {
		if consumed[j] {
			continue
		}
		nf := newFields[j]
		if containsString(nf.Aliases, old.Name) || containsString(old.Aliases, nf.Name) {
			out = append(out, j)
		}
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func fieldPath(parent schema.Path, f schema.Field) schema.Path {
	if f.HasTag {
		return parent.ChildTag(f.Name, f.Tag)
	}
	return parent.Child(f.Name)
}

func (w *walker) compareField(path schema.Path, oldField, newField schema.Field, ctx Context, oldParent, newParent *schema.Node) {
	// Tag-keyed formats match by number, so a differing name here is a
	// rename carried by the stable tag.
	if w.format.TagKeyed() && oldField.HasTag && newField.HasTag && oldField.Name != newField.Name {
		of, nf := oldField, newField
		w.emit(Change{
			Path: fieldPath(path, oldField), Kind: Renamed, Context: ctx,
			OldField: &of, NewField: &nf,
			OldParent: oldParent, NewParent: newParent,
		})
	}
	w.compareFieldAttrs(path, oldField, newField, ctx, oldParent, newParent)
}

func (w *walker) compareFieldAttrs(path schema.Path, oldField, newField schema.Field, ctx Context, oldParent, newParent *schema.Node) {
	fp := fieldPath(path, oldField)
	of, nf := oldField, newField

	switch {
	case oldField.Type == nil || newField.Type == nil:
		if oldField.Type != newField.Type {
			w.emit(Change{
				Path: fp, Kind: Unknown, Context: ctx,
				OldField: &of, NewField: &nf,
				OldParent: oldParent, NewParent: newParent,
				Note: "untyped field",
			})
		}
	case oldField.Type.Kind != newField.Type.Kind:
		w.emit(Change{
			Path: fp, Kind: TypeChanged, Context: ctx,
			OldField: &of, NewField: &nf,
			OldParent: oldParent, NewParent: newParent,
		})
	case oldField.Type.Kind == schema.KindScalar:
		if oldField.Type.Scalar == schema.ScalarUnknown || newField.Type.Scalar == schema.ScalarUnknown {
			if oldField.Type.Scalar != newField.Type.Scalar || oldField.Type.Name != newField.Type.Name {
				w.emit(Change{
					Path: fp, Kind: Unknown, Context: ctx,
					OldField: &of, NewField: &nf,
					OldParent: oldParent, NewParent: newParent,
					Note: "unrecognized scalar type",
				})
			}
		} else if oldField.Type.Scalar != newField.Type.Scalar {
			w.emit(Change{
				Path: fp, Kind: TypeChanged, Context: ctx,
				OldField: &of, NewField: &nf,
				OldParent: oldParent, NewParent: newParent,
			})
		} else {
			w.compareConstraints(fp, oldField.Type, newField.Type, ctx)
		}
	default:
		w.compareNode(fp, oldField.Type, newField.Type, ctx, oldParent, newParent)
	}

	if oldField.Required != newField.Required {
		w.emit(Change{
			Path: fp, Kind: RequiredChanged, Context: ctx,
			OldField: &of, NewField: &nf,
			OldParent: oldParent, NewParent: newParent,
		})
	}
	if oldField.HasDefault != newField.HasDefault || oldField.Default != newField.Default {
		w.emit(Change{
			Path: fp, Kind: DefaultChanged, Context: ctx,
			OldField: &of, NewField: &nf,
			OldParent: oldParent, NewParent: newParent,
		})
	}
	if !oldField.Deprecated && newField.Deprecated {
		w.emit(Change{
			Path: fp, Kind: Deprecated, Context: ctx,
			OldField: &of, NewField: &nf,
			OldParent: oldParent, NewParent: newParent,
		})
	}
}
