package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternhq/tern/pkg/compatibility"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatMarkdown:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format: %q", s)
}

// Render produces the report in the requested format.
func Render(result *compatibility.Result, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(result)
	case FormatMarkdown:
		return Markdown(result), nil
	case FormatText:
		return Text(result), nil
	}
	return "", fmt.Errorf("unknown report format: %q", format)
}

// JSON renders the result's wire form, indented.
func JSON(result *compatibility.Result) (string, error) {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(out), nil
}

const rule = "============================================================"

// Text renders the fixed-width console report.
func Text(result *compatibility.Result) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("Contract Compatibility Report\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Format: %s\n", result.Format)
	fmt.Fprintf(&b, "Compatible: %s\n", yesNo(result.Compatible()))
	fmt.Fprintf(&b, "Compatibility Level: %s\n", result.Level)
	fmt.Fprintf(&b, "Suggested Bump: %s\n", result.SuggestedBump)
	fmt.Fprintf(&b, "Changes: %d\n", len(result.Findings))
	b.WriteString(strings.Repeat("-", len(rule)) + "\n")

	if len(result.Findings) > 0 {
		b.WriteString("\nChanges:\n")
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", f.Category, f.Path, f.Message)
			if f.Context != "" {
				fmt.Fprintf(&b, "    Context: %s\n", f.Context)
			}
			if f.Mitigation != "" {
				fmt.Fprintf(&b, "    Mitigation: %s\n", f.Mitigation)
			}
			if f.Caveat != "" {
				fmt.Fprintf(&b, "    Caveat: %s\n", f.Caveat)
			}
		}
	}

	sev := SeveritySummary(result)
	fmt.Fprintf(&b, "\nSeverity: %d critical, %d major, %d minor, %d info\n",
		sev["critical"], sev["major"], sev["minor"], sev["info"])
	b.WriteString(rule + "\n")
	return b.String()
}

// Markdown renders a document suitable for pull request comments.
func Markdown(result *compatibility.Result) string {
	var b strings.Builder
	b.WriteString("# Contract Compatibility Report\n\n")
	fmt.Fprintf(&b, "- **Format**: %s\n", result.Format)
	fmt.Fprintf(&b, "- **Compatible**: %s\n", yesNo(result.Compatible()))
	fmt.Fprintf(&b, "- **Compatibility Level**: %s\n", result.Level)
	fmt.Fprintf(&b, "- **Suggested Bump**: %s\n", result.SuggestedBump)
	fmt.Fprintf(&b, "- **Changes**: %d\n", len(result.Findings))

	if len(result.Findings) > 0 {
		b.WriteString("\n## Changes\n\n")
		b.WriteString("| Severity | Category | Path | Message |\n")
		b.WriteString("|----------|----------|------|---------|\n")
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n",
				f.Severity, f.Category, f.Path, mdCell(f.Message))
		}
	}

	mitigated := false
	for _, f := range result.Findings {
		if f.Mitigation == "" {
			continue
		}
		if !mitigated {
			b.WriteString("\n## Mitigations\n\n")
			mitigated = true
		}
		fmt.Fprintf(&b, "- `%s`: %s\n", f.Path, f.Mitigation)
	}
	return b.String()
}

// SeveritySummary tallies findings per severity name. Every severity appears
// in the map, zero or not.
func SeveritySummary(result *compatibility.Result) map[string]int {
	out := map[string]int{"critical": 0, "major": 0, "minor": 0, "info": 0}
	for _, f := range result.Findings {
		out[f.Severity]++
	}
	return out
}

// Categorize groups findings by category, preserving first-appearance order.
func Categorize(result *compatibility.Result) ([]string, map[string][]compatibility.Finding) {
	var order []string
	byCat := make(map[string][]compatibility.Finding)
	for _, f := range result.Findings {
		if _, seen := byCat[f.Category]; !seen {
			order = append(order, f.Category)
		}
		byCat[f.Category] = append(byCat[f.Category], f)
	}
	return order, byCat
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// mdCell keeps a finding message from breaking the table layout.
func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
