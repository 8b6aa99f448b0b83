package pattern

import "asdl/internal/source"

// Expr is a parsed pattern expression: one or more splice segments
// (separated by `;`), each a sequence of literal/enum/range parts.
type Expr struct {
	Raw      string
	Span     source.Span
	Segments []Segment
}

// Cardinality is the sum of every segment's cardinality.
func (e Expr) Cardinality() int {
	n := 0
	for _, s := range e.Segments {
		n += s.Cardinality()
	}
	return n
}

// Atoms enumerates every atom the expression expands to: the
// concatenation of each segment's atoms, in segment order.
func (e Expr) Atoms() []string {
	var out []string
	for _, s := range e.Segments {
		out = append(out, s.Atoms()...)
	}
	return out
}

// Groups returns the sizes of every group (enum/range) part across all
// segments, in order. This is the sequence bind_patterns compares
// between two parallel expressions.
func (e Expr) Groups() []int {
	var out []int
	for _, s := range e.Segments {
		out = append(out, s.Groups()...)
	}
	return out
}
