package compatibility

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ternhq/tern/pkg/diff"
	"github.com/ternhq/tern/pkg/rules"
	"github.com/ternhq/tern/pkg/schema"
)

// Engine compares schema models and aggregates classified changes into a
// compatibility result.
type Engine struct {
	classifiers map[schema.Format]rules.Classifier
}

// NewEngine builds an engine with the default decision table for every
// supported format. Extra classifiers override the default for their format.
func NewEngine(extra ...rules.Classifier) *Engine {
	classifiers := make(map[schema.Format]rules.Classifier)
	for f, t := range rules.All() {
		classifiers[f] = t
	}
	for _, c := range extra {
		classifiers[c.Format()] = c
	}
	return &Engine{classifiers: classifiers}
}

// Compare diffs two models of the same format and classifies the change set.
func (e *Engine) Compare(oldModel, newModel *schema.Model) (*Result, error) {
	if oldModel == nil || newModel == nil {
		return nil, fmt.Errorf("compare requires both models")
	}
	if oldModel.Format != newModel.Format {
		return nil, fmt.Errorf("format mismatch: %s vs %s", oldModel.Format, newModel.Format)
	}
	classifier, ok := e.classifiers[oldModel.Format]
	if !ok {
		return nil, fmt.Errorf("no classifier registered for format %q", oldModel.Format)
	}

	changes := diff.New(oldModel.Format).Compare(oldModel, newModel)

	entries := make([]rules.BreakingChange, 0, len(changes))
	findings := make([]Finding, 0, len(changes))
	for _, c := range changes {
		bc := classifier.Classify(c)
		entries = append(entries, bc)
		findings = append(findings, newFinding(bc))
	}

	level, bump := aggregate(entries)

	return &Result{
		ID:            uuid.NewString(),
		Format:        oldModel.Format,
		Level:         level,
		SuggestedBump: bump,
		Findings:      findings,
		Entries:       entries,
		ComparedAt:    time.Now().UTC(),
	}, nil
}

// aggregate folds the classified set into a level and bump. Only Major
// findings steer the level between BACKWARD, FORWARD and NONE; Info and
// Minor findings degrade FULL to BACKWARD at most.
func aggregate(entries []rules.BreakingChange) (Level, Bump) {
	if len(entries) == 0 {
		return LevelFull, BumpPatch
	}

	var (
		breaksOld, breaksNew bool // Major findings only
		anyDirectional       bool
	)
	for _, e := range entries {
		if e.Severity == rules.SeverityCritical || e.Direction == rules.BreaksBoth {
			return LevelNone, BumpMajor
		}
		if e.Direction != rules.DirectionNone {
			anyDirectional = true
		}
		if e.Severity == rules.SeverityMajor {
			switch e.Direction {
			case rules.BreaksOldReaders:
				breaksOld = true
			case rules.BreaksNewReaders:
				breaksNew = true
			}
		}
	}

	switch {
	case breaksOld && breaksNew:
		return LevelNone, BumpMajor
	case breaksOld:
		return LevelForward, BumpMajor
	case breaksNew:
		return LevelBackward, BumpMajor
	case anyDirectional:
		return LevelBackward, BumpMinor
	default:
		return LevelFull, BumpMinor
	}
}
