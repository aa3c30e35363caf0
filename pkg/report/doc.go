// Package report renders comparison results for humans and machines.
//
// Three renderers share one entry point:
//
//	out, err := report.Render(result, report.FormatMarkdown)
//
// FormatText produces the fixed-width console report, FormatMarkdown a
// table-based document suitable for pull request comments, and FormatJSON
// the indented wire form of the result itself.
//
// Changelog builds a release-notes fragment grouping findings by category,
// with mitigation hints inlined where a rule supplied one.
package report
