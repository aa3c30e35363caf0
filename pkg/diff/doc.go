// Package diff implements the structural differ: a lock-step walk of two
// normalized schema trees that emits one typed Change per structural delta.
//
// Sibling collections (fields, enum values, operations, parameters, response
// arms) are aligned by stable-path identity, never by position. A path present
// only on the old side yields Removed; only on the new side yields Added;
// present on both recurses. A single field can contribute several changes,
// for example both TypeChanged and RequiredChanged.
//
// Rename handling is alias-aware: before declaring a removed/added pair, the
// differ checks whether the added node's alias set names the removed node (or
// vice versa) and collapses the pair into one Renamed change. For tag-keyed
// formats a field keeps its identity through the numeric tag, so a rename
// without a tag change is detected directly. When alias sets point at more
// than one candidate the differ resolves to the lexicographically first
// candidate and records the ambiguity as an informational change rather than
// failing the comparison.
//
// Emission order is deterministic: a pre-order traversal of the union of both
// trees' paths, old-tree order first, then new-only paths. No map iteration
// order or wall-clock time leaks into the output, so structurally identical
// inputs always produce byte-identical change lists.
package diff
