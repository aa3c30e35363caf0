// Package rules contains the per-format compatibility rule tables.
//
// Each supported contract format contributes a Classifier that maps a
// structural change from the differ to a classified entry: a category from
// the closed, documented enumeration, a severity, and a directional
// compatibility impact. Classification is consulted by table lookup keyed on
// change kind, subject and operation context, never by cascading
// conditionals, so every rule is independently testable and a format can
// override exactly the rules whose semantics differ.
//
// A format registers four extension points when its table is built:
//
//   - the field identity scheme (name-only or name plus numeric tag),
//     consumed by the differ rather than here;
//   - a type-widening table listing the scalar substitutions the format
//     considers safe for readers;
//   - reserved-range semantics (present for Protobuf, Avro and SQL; for the
//     other formats the reservation check simply never fires);
//   - a strict-consumer caveat string attached to additive changes that can
//     break consumers doing closed or exhaustive matching. The caveat is
//     surfaced in the report, never auto-escalated, because the engine
//     cannot observe consumer behavior.
//
// The Category values form the stable contract CI tooling depends on;
// renaming one is a major version change of this engine.
package rules
