package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"asdl/internal/diag"
	"asdl/internal/source"
)

// ValidateNamedDef checks that a named-pattern definition (the value
// side of a `patterns:` entry) is a single group token — either `<…>`
// or `[…]` — with no reference to another named pattern inside it
// (spec.md §4.B, IR-012).
func ValidateNamedDef(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 2 {
		return "", false
	}
	isEnum := trimmed[0] == '<' && trimmed[len(trimmed)-1] == '>'
	isRange := trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']'
	if !isEnum && !isRange {
		return "", false
	}
	if strings.Contains(trimmed, "<@") {
		return "", false
	}
	return trimmed, true
}

// substituteNamed replaces every `<@alias>` occurrence in raw with the
// corresponding entry of named, returning the substituted text and the
// list of aliases that were not found.
func substituteNamed(raw string, named map[string]string) (string, []string) {
	var undefined []string
	var out strings.Builder
	i := 0
	for i < len(raw) {
		if raw[i] == '<' && i+1 < len(raw) && raw[i+1] == '@' {
			end := strings.IndexByte(raw[i:], '>')
			if end < 0 {
				out.WriteString(raw[i:])
				break
			}
			alias := raw[i+2 : i+end]
			if val, ok := named[alias]; ok {
				out.WriteString(val)
			} else {
				undefined = append(undefined, alias)
				out.WriteString(raw[i : i+end+1])
			}
			i += end + 1
			continue
		}
		out.WriteByte(raw[i])
		i++
	}
	return out.String(), undefined
}

// Parse tokenizes and parses a raw pattern expression, first resolving
// any `<@alias>` named-pattern references against named. It reports one
// diagnostic per error and halts on the first failure, per spec.md §4.B.
func Parse(raw string, named map[string]string, span source.Span, reporter diag.Reporter) (*Expr, bool) {
	substituted, undefined := substituteNamed(raw, named)
	if len(undefined) > 0 {
		for _, alias := range undefined {
			reporter.Report(diag.Errorf(diag.CodeUndefinedNamedPattern, diag.StagePattern,
				fmt.Sprintf("undefined named pattern %q", alias)).At(span).MustBuild())
		}
		return nil, false
	}

	rawSegments, ok := splitSegments(substituted, span, reporter)
	if !ok {
		return nil, false
	}

	segments := make([]Segment, 0, len(rawSegments))
	for _, rs := range rawSegments {
		seg, ok := parseSegment(rs, span, reporter)
		if !ok {
			return nil, false
		}
		segments = append(segments, seg)
	}
	return &Expr{Raw: raw, Span: span, Segments: segments}, true
}

// splitSegments splits s on unescaped `;`, tracking group nesting so a
// `;` inside `<…>`/`[…]` is rejected rather than treated as a boundary.
func splitSegments(s string, span source.Span, reporter diag.Reporter) ([]string, bool) {
	var segments []string
	var cur strings.Builder
	var stack []byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '<', '[':
			want := byte('>')
			if c == '[' {
				want = ']'
			}
			stack = append(stack, want)
			cur.WriteByte(c)
		case '>', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					fmt.Sprintf("unexpected %q", string(c))).At(span).MustBuild())
				return nil, false
			}
			stack = stack[:len(stack)-1]
			cur.WriteByte(c)
		case ';':
			if len(stack) > 0 {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"';' inside a group is reserved").At(span).MustBuild())
				return nil, false
			}
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if len(stack) > 0 {
		reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
			"unterminated group").At(span).MustBuild())
		return nil, false
	}
	segments = append(segments, cur.String())

	for _, seg := range segments {
		if seg == "" {
			reporter.Report(diag.Errorf(diag.CodeEmptySpliceSegment, diag.StagePattern,
				"empty splice segment").At(span).MustBuild())
			return nil, false
		}
	}
	return segments, true
}

// parseSegment scans one splice segment left to right into its parts.
func parseSegment(s string, span source.Span, reporter diag.Reporter) (Segment, bool) {
	var parts []Part
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '<':
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"unterminated enum group").At(span).MustBuild())
				return Segment{}, false
			}
			body := s[i+1 : i+end]
			if strings.ContainsAny(body, "<[") {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"nested group inside enum").At(span).MustBuild())
				return Segment{}, false
			}
			if strings.ContainsAny(body, " \t") {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"whitespace inside group body").At(span).MustBuild())
				return Segment{}, false
			}
			if body == "" {
				reporter.Report(diag.Errorf(diag.CodeEmptyEnum, diag.StagePattern,
					"empty enum group").At(span).MustBuild())
				return Segment{}, false
			}
			alts := strings.Split(body, "|")
			for _, a := range alts {
				if a == "" {
					reporter.Report(diag.Errorf(diag.CodeEmptyEnum, diag.StagePattern,
						"empty alternative in enum group").At(span).MustBuild())
					return Segment{}, false
				}
			}
			parts = append(parts, Part{Kind: PartEnum, Alts: alts})
			i += end + 1
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"unterminated range group").At(span).MustBuild())
				return Segment{}, false
			}
			body := s[i+1 : i+end]
			if strings.ContainsAny(body, "<[") {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"nested group inside range").At(span).MustBuild())
				return Segment{}, false
			}
			if strings.ContainsAny(body, " \t") {
				reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
					"whitespace inside group body").At(span).MustBuild())
				return Segment{}, false
			}
			sides := strings.SplitN(body, ":", 2)
			if len(sides) != 2 || sides[0] == "" || sides[1] == "" {
				reporter.Report(diag.Errorf(diag.CodeRangeMalformed, diag.StagePattern,
					fmt.Sprintf("malformed range %q", body)).At(span).MustBuild())
				return Segment{}, false
			}
			m, errM := strconv.Atoi(sides[0])
			n, errN := strconv.Atoi(sides[1])
			if errM != nil || errN != nil {
				reporter.Report(diag.Errorf(diag.CodeRangeMalformed, diag.StagePattern,
					fmt.Sprintf("malformed range %q", body)).At(span).MustBuild())
				return Segment{}, false
			}
			parts = append(parts, Part{Kind: PartRange, From: m, To: n})
			i += end + 1
		case '>', ']', '|':
			reporter.Report(diag.Errorf(diag.CodeMalformedDelimiter, diag.StagePattern,
				fmt.Sprintf("unexpected %q", string(c))).At(span).MustBuild())
			return Segment{}, false
		default:
			j := i
			for j < len(s) && s[j] != '<' && s[j] != '[' {
				j++
			}
			parts = append(parts, Part{Kind: PartLiteral, Literal: s[i:j]})
			i = j
		}
	}
	return Segment{Parts: parts}, true
}
