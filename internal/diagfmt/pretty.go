package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"asdl/internal/diag"
	"asdl/internal/source"
)

// visualWidthUpTo computes the visual column width of s up to the given
// 1-based byte column, expanding tabs and accounting for wide runes.
func visualWidthUpTo(s string, col uint32, tabWidth int) int {
	if col <= 1 {
		return 0
	}
	bytePos, visualPos := 0, 0
	for _, r := range s {
		if bytePos >= int(col-1) {
			break
		}
		if r == '\t' {
			visualPos = (visualPos + tabWidth) / tabWidth * tabWidth
		} else {
			visualPos += runewidth.RuneWidth(r)
		}
		bytePos += len(string(r))
	}
	return visualPos
}

// Pretty renders bag to w in the text format of spec.md §4.A: one header
// line per diagnostic, source context with a caret underline when the
// registry has the file, then indented note:/help:/fix-it: lines.
// Diagnostics are always rendered in the stable sort order of
// bag.ToList(true), whatever order they were emitted in.
func Pretty(w io.Writer, bag *diag.Bag, reg *source.Registry, opts PrettyOpts) {
	errorColor := color.New(color.FgRed, color.Bold)
	warningColor := color.New(color.FgYellow, color.Bold)
	infoColor := color.New(color.FgCyan, color.Bold)
	fatalColor := color.New(color.FgHiRed, color.Bold)
	pathColor := color.New(color.FgWhite, color.Bold)
	codeColor := color.New(color.FgMagenta)
	lineNumColor := color.New(color.FgBlue)
	underlineColor := color.New(color.FgRed, color.Bold)
	fixColor := color.New(color.FgGreen)

	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	context := opts.Context
	if context <= 0 {
		context = 1
	}

	items := bag.ToList(true)

	for idx, d := range items {
		if idx > 0 {
			fmt.Fprintln(w)
		}

		sevColored := d.Severity.String()
		switch d.Severity {
		case diag.SevFatal:
			sevColored = fatalColor.Sprint(sevColored)
		case diag.SevError:
			sevColored = errorColor.Sprint(sevColored)
		case diag.SevWarning:
			sevColored = warningColor.Sprint(sevColored)
		case diag.SevInfo:
			sevColored = infoColor.Sprint(sevColored)
		}

		if d.Primary == nil {
			fmt.Fprintf(w, "%s %s: %s\n", sevColored, codeColor.Sprint(string(d.Code)), d.Message)
		} else {
			fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
				pathColor.Sprint(displayPath(d.Primary.File, opts.PathMode)),
				d.Primary.Start.Line, d.Primary.Start.Col,
				sevColored, codeColor.Sprint(string(d.Code)), d.Message)

			if reg != nil {
				if f, ok := reg.Get(d.Primary.File); ok {
					printContext(w, f, *d.Primary, int(context), lineNumColor, underlineColor)
				}
			}
		}

		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s: %s\n", infoColor.Sprint("note"), note)
		}
		if d.Help != "" {
			fmt.Fprintf(w, "  %s: %s\n", infoColor.Sprint("help"), d.Help)
		}
		for _, fix := range d.Fixits {
			loc := ""
			if fix.Span.HasFile() {
				loc = fmt.Sprintf("%s:%d:%d: ", displayPath(fix.Span.File, opts.PathMode), fix.Span.Start.Line, fix.Span.Start.Col)
			}
			msg := fix.Message
			if msg == "" {
				msg = fmt.Sprintf("replace with %q", fix.Replacement)
			}
			fmt.Fprintf(w, "  %s: %s%s\n", fixColor.Sprint("fix-it"), loc, msg)

			if opts.ShowPreview && reg != nil && fix.Span.HasFile() {
				if f, ok := reg.Get(fix.Span.File); ok {
					preview := buildFixitPreview(f, fix)
					for _, line := range preview.before {
						fmt.Fprintf(w, "      - %s\n", line)
					}
					for _, line := range preview.after {
						fmt.Fprintf(w, "      + %s\n", line)
					}
				}
			}
		}
	}
}

func displayPath(path string, mode PathMode) string {
	switch mode {
	case PathModeBasename:
		i := strings.LastIndexByte(path, '/')
		if i >= 0 {
			return path[i+1:]
		}
		return path
	default:
		return path
	}
}

func printContext(w io.Writer, f *source.File, span source.Span, context int, lineNumColor, underlineColor *color.Color) {
	const tabWidth = 8

	startLine := span.Start.Line
	if int(startLine) > context {
		startLine -= uint32(context)
	} else {
		startLine = 1
	}
	endLine := span.End.Line + uint32(context)

	lineNumWidth := len(fmt.Sprintf("%d", endLine))
	if lineNumWidth < 3 {
		lineNumWidth = 3
	}

	for line := startLine; line <= endLine; line++ {
		text := f.Line(line)
		if text == "" && line > span.End.Line {
			break
		}
		fmt.Fprintf(w, "%s | %s\n", lineNumColor.Sprint(fmt.Sprintf("%*d", lineNumWidth, line)), text)

		if line == span.Start.Line {
			endCol := span.End.Col
			if span.End.Line > span.Start.Line {
				endCol = uint32(len(text)) + 1
			}
			visualStart := visualWidthUpTo(text, span.Start.Col, tabWidth)
			visualEnd := visualWidthUpTo(text, endCol, tabWidth)

			var underline strings.Builder
			for range lineNumWidth + 3 {
				underline.WriteByte(' ')
			}
			for range visualStart {
				underline.WriteByte(' ')
			}
			spanLen := visualEnd - visualStart
			if spanLen <= 0 {
				underline.WriteByte('^')
			} else {
				for i := 0; i < spanLen; i++ {
					if i == spanLen-1 {
						underline.WriteByte('^')
					} else {
						underline.WriteByte('~')
					}
				}
			}
			fmt.Fprintln(w, underlineColor.Sprint(underline.String()))
		}
	}
}
