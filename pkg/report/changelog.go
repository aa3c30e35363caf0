package report

import (
	"fmt"
	"strings"

	"github.com/ternhq/tern/pkg/compatibility"
)

// Changelog builds a release-notes fragment for the result, grouped by
// change category. The version string is printed verbatim in the heading.
func Changelog(result *compatibility.Result, version string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Breaking Changes in %s\n\n", version)

	if len(result.Findings) == 0 {
		b.WriteString("No breaking changes in this release.\n")
		return b.String()
	}

	order, byCat := Categorize(result)
	for _, cat := range order {
		fmt.Fprintf(&b, "### %s\n\n", categoryHeading(cat))
		for _, f := range byCat[cat] {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Path, f.Message)
			if f.Mitigation != "" {
				fmt.Fprintf(&b, "  - *Mitigation*: %s\n", f.Mitigation)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// categoryHeading turns REMOVED_ENUM_VALUE into "Removed Enum Value".
func categoryHeading(cat string) string {
	words := strings.Split(strings.ToLower(cat), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
