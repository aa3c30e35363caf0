package compatibility

import (
	"fmt"

	"github.com/ternhq/tern/pkg/schema"
)

// Mode is the compatibility policy a contract is checked against.
type Mode int

const (
	ModeNone Mode = iota
	ModeBackward
	ModeForward
	ModeFull
	ModeBackwardTransitive
	ModeForwardTransitive
	ModeFullTransitive
)

func (m Mode) String() string {
	return []string{
		"NONE", "BACKWARD", "FORWARD", "FULL",
		"BACKWARD_TRANSITIVE", "FORWARD_TRANSITIVE", "FULL_TRANSITIVE",
	}[m]
}

// Transitive reports whether the mode checks against the full version
// history rather than only the latest version.
func (m Mode) Transitive() bool {
	switch m {
	case ModeBackwardTransitive, ModeForwardTransitive, ModeFullTransitive:
		return true
	}
	return false
}

// base collapses a transitive mode to its pairwise requirement.
func (m Mode) base() Mode {
	switch m {
	case ModeBackwardTransitive:
		return ModeBackward
	case ModeForwardTransitive:
		return ModeForward
	case ModeFullTransitive:
		return ModeFull
	}
	return m
}

// ParseMode converts a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	modes := map[string]Mode{
		"NONE":                ModeNone,
		"BACKWARD":            ModeBackward,
		"FORWARD":             ModeForward,
		"FULL":                ModeFull,
		"BACKWARD_TRANSITIVE": ModeBackwardTransitive,
		"FORWARD_TRANSITIVE":  ModeForwardTransitive,
		"FULL_TRANSITIVE":     ModeFullTransitive,
	}
	if mode, ok := modes[s]; ok {
		return mode, nil
	}
	return ModeNone, fmt.Errorf("unknown compatibility mode: %s", s)
}

// PolicyError reports a result that does not satisfy the checked mode.
type PolicyError struct {
	Mode   Mode
	Result *Result
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("change set is %s, policy requires %s", e.Result.Level, e.Mode.base())
}

// Check verifies a single comparison result against a mode. Transitive modes
// collapse to their pairwise requirement here; use CompareTransitive to run
// the check across a version history.
func Check(result *Result, mode Mode) error {
	if result == nil {
		return fmt.Errorf("check requires a result")
	}
	ok := false
	switch mode.base() {
	case ModeNone:
		ok = true
	case ModeBackward:
		ok = result.Level == LevelBackward || result.Level == LevelFull
	case ModeForward:
		ok = result.Level == LevelForward || result.Level == LevelFull
	case ModeFull:
		ok = result.Level == LevelFull
	}
	if !ok {
		return &PolicyError{Mode: mode, Result: result}
	}
	return nil
}

// CompareTransitive checks a candidate model against every prior version,
// oldest first, and returns the per-version results. The error is the first
// policy violation encountered; all results are returned regardless so
// callers can report every incompatible pair.
func (e *Engine) CompareTransitive(history []*schema.Model, candidate *schema.Model, mode Mode) ([]*Result, error) {
	if !mode.Transitive() && len(history) > 1 {
		history = history[len(history)-1:]
	}
	results := make([]*Result, 0, len(history))
	var firstErr error
	for _, prior := range history {
		result, err := e.Compare(prior, candidate)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if err := Check(result, mode); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}
