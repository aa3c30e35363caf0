package compatibility

import (
	"time"

	"github.com/ternhq/tern/pkg/diff"
	"github.com/ternhq/tern/pkg/rules"
	"github.com/ternhq/tern/pkg/schema"
)

// Level is the aggregate compatibility verdict for a comparison.
type Level string

const (
	LevelFull     Level = "FULL"
	LevelBackward Level = "BACKWARD"
	LevelForward  Level = "FORWARD"
	LevelNone     Level = "NONE"
)

// Bump is the suggested semantic version increment.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
)

// Finding is one classified change in wire form. Severity and direction are
// serialized as their string names so the JSON output is stable across
// releases.
type Finding struct {
	Path       string `json:"path"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Direction  string `json:"direction"`
	Context    string `json:"context,omitempty"`
	Message    string `json:"message"`
	Mitigation string `json:"mitigation,omitempty"`
	Caveat     string `json:"caveat,omitempty"`
	Old        string `json:"old,omitempty"`
	New        string `json:"new,omitempty"`
}

// Result is the outcome of comparing two versions of a contract.
type Result struct {
	ID            string        `json:"id"`
	Format        schema.Format `json:"format"`
	Level         Level         `json:"level"`
	SuggestedBump Bump          `json:"suggested_bump"`
	Findings      []Finding     `json:"breaking_changes"`
	ComparedAt    time.Time     `json:"compared_at"`

	// Entries keeps the full classified changes for in-process consumers
	// such as pkg/report; Findings is the serialized projection.
	Entries []rules.BreakingChange `json:"-"`
}

// Compatible reports whether the result carries no hard break.
func (r *Result) Compatible() bool {
	return r.Level != LevelNone
}

// CountBySeverity tallies findings at the given severity.
func (r *Result) CountBySeverity(s rules.Severity) int {
	n := 0
	for _, e := range r.Entries {
		if e.Severity == s {
			n++
		}
	}
	return n
}

func newFinding(bc rules.BreakingChange) Finding {
	f := Finding{
		Path:       bc.Change.Path.String(),
		Category:   string(bc.Category),
		Severity:   bc.Severity.String(),
		Direction:  bc.Direction.String(),
		Message:    bc.Message,
		Mitigation: bc.Mitigation,
		Caveat:     bc.Caveat,
		Old:        bc.Change.OldValue(),
		New:        bc.Change.NewValue(),
	}
	if bc.Change.Context != diff.ContextSchema {
		f.Context = bc.Change.Context.String()
	}
	return f
}
