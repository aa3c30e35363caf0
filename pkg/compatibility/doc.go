// Package compatibility turns classified schema changes into a verdict.
//
// # Overview
//
// The Engine diffs two schema models, classifies every change through the
// format's rule table, and aggregates the findings into a compatibility
// level and a suggested semantic version bump. It is format-agnostic: the
// same aggregation runs over protobuf, Avro, OpenAPI, GraphQL, JSON Schema
// and SQL models, with per-format judgement living in pkg/rules.
//
// # Compatibility Levels
//
// A comparison produces one of four levels:
//
// FULL: nothing in the change set breaks either side. Old and new consumers
// interoperate freely.
//
// BACKWARD: consumers of the new schema can still handle data produced under
// the old one. Typical for optional-field removals and additive changes.
//
// FORWARD: consumers of the old schema can still handle data produced under
// the new one, but the reverse does not hold.
//
// NONE: the change set contains at least one finding that breaks both sides,
// or hard breaks in both directions at once.
//
// # Compatibility Modes
//
// Modes express the policy a contract is checked against, following the
// registry convention:
//
// NONE: accept any change.
//
// BACKWARD: require the result level to be BACKWARD or FULL against the
// latest stored version.
//
// FORWARD: require FORWARD or FULL against the latest stored version.
//
// FULL: require FULL against the latest stored version.
//
// BACKWARD_TRANSITIVE, FORWARD_TRANSITIVE, FULL_TRANSITIVE: the same
// requirement checked against every stored version, not just the latest.
//
// # Usage Example
//
//	engine := compatibility.NewEngine()
//
//	result, err := engine.Compare(oldModel, newModel)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(result.Level)         // e.g. BACKWARD
//	fmt.Println(result.SuggestedBump) // e.g. minor
//	for _, f := range result.Findings {
//		fmt.Printf("[%s] %s %s: %s\n", f.Severity, f.Category, f.Path, f.Message)
//	}
//
//	if err := compatibility.Check(result, compatibility.ModeBackward); err != nil {
//		os.Exit(1)
//	}
//
// # Aggregation
//
// The level is decided by the hardest findings in the set. Critical findings
// and findings that break both sides force NONE. Otherwise only Major
// findings steer the level: if they all break old readers the remaining
// guarantee is FORWARD, if they all break new readers it is BACKWARD, and if
// they pull in both directions the result degrades to NONE. Change sets with
// no Major findings stay BACKWARD, or FULL when no finding breaks anyone.
//
// The suggested bump follows the level: NONE or any Major finding suggests a
// major bump, a non-empty compatible change set suggests minor, and an empty
// one suggests patch.
//
// # Related Packages
//
//   - pkg/diff: produces the structural change set the engine consumes
//   - pkg/rules: per-format decision tables assigning category and severity
//   - pkg/report: renders results as text, markdown or JSON
//   - pkg/storage: stores contract versions for transitive checks
package compatibility
