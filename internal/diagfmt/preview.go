package diagfmt

import (
	"strings"

	"asdl/internal/diag"
	"asdl/internal/source"
)

type fixitPreview struct {
	before []string
	after  []string
}

// buildFixitPreview renders the source lines spanned by fix.Span before
// and after applying fix.Replacement, for PrettyOpts.ShowPreview output.
func buildFixitPreview(f *source.File, fix diag.Fixit) fixitPreview {
	startLine, endLine := fix.Span.Start.Line, fix.Span.End.Line
	if endLine < startLine {
		endLine = startLine
	}

	var before []string
	for l := startLine; l <= endLine; l++ {
		before = append(before, f.Line(l))
	}

	joined := strings.Join(before, "\n")
	startCol := int(fix.Span.Start.Col) - 1
	endCol := int(fix.Span.End.Col) - 1
	if startCol < 0 {
		startCol = 0
	}
	if endCol < startCol || endCol > len(joined) {
		endCol = startCol
	}
	if startCol > len(joined) {
		startCol = len(joined)
	}

	after := joined[:startCol] + fix.Replacement + joined[endCol:]

	return fixitPreview{
		before: before,
		after:  strings.Split(after, "\n"),
	}
}
