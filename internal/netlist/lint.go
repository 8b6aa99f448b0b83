package netlist

import (
	"strings"

	"asdl/internal/diag"
)

// Lint re-scans emitted SPICE text for structural defects Emit cannot
// see locally: unbalanced .subckt/.ends nesting and leftover
// unresolved {placeholder} braces that slipped past template
// substitution. Comment lines (starting with '*') are not scanned for
// placeholders. Both defects are reported as errors.
func Lint(d *Design, reporter diag.Reporter) bool {
	ok := true
	depth := 0
	for _, line := range strings.Split(d.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, ".subckt"):
			depth++
		case strings.HasPrefix(lower, ".ends"):
			depth--
			if depth < 0 {
				reporter.Report(diag.Errorf(diag.CodeUnbalancedSubckt, diag.StageEmit,
					".ends with no matching .subckt").MustBuild())
				ok = false
				depth = 0
			}
		}
		if strings.HasPrefix(trimmed, "*") {
			continue
		}
		if idx := strings.IndexByte(line, '{'); idx >= 0 {
			if end := strings.IndexByte(line[idx:], '}'); end >= 0 {
				reporter.Report(diag.Errorf(diag.CodeUnresolvedPlaceholder, diag.StageEmit,
					"unresolved template placeholder in emitted output: "+line[idx:idx+end+1]).MustBuild())
				ok = false
			}
		}
	}
	if depth != 0 {
		reporter.Report(diag.Errorf(diag.CodeUnbalancedSubckt, diag.StageEmit,
			"unclosed .subckt block(s) in emitted output").MustBuild())
		ok = false
	}
	return ok
}
