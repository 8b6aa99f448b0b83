// Package pattern implements the tokenizer, parser, expander, and
// parallel-expansion binder for ASDL's pattern algebra: enum groups
// `<a|b|c>`, numeric ranges `[m:n]`, splice segments separated by `;`,
// and named-pattern references `<@alias>`.
package pattern

import "strconv"

// PartKind distinguishes the three part shapes a segment is built from.
type PartKind uint8

const (
	PartLiteral PartKind = iota
	PartEnum
	PartRange
)

// Part is one element of a Segment: a literal run of text, an enum
// group, or an integer range group.
type Part struct {
	Kind    PartKind
	Literal string   // PartLiteral
	Alts    []string // PartEnum, in declared order
	From    int      // PartRange, inclusive
	To      int      // PartRange, inclusive
}

// IsGroup reports whether the part is an enum or range (as opposed to a
// fixed literal run); only groups count as "group positions" for the
// parallel-binding algebra of §4.B.
func (p Part) IsGroup() bool {
	return p.Kind != PartLiteral
}

// Size is the number of atoms this part contributes.
func (p Part) Size() int {
	switch p.Kind {
	case PartLiteral:
		return 1
	case PartEnum:
		return len(p.Alts)
	case PartRange:
		if p.From <= p.To {
			return p.To - p.From + 1
		}
		return p.From - p.To + 1
	default:
		return 1
	}
}

// Atoms enumerates the literal strings this part expands to, in order.
func (p Part) Atoms() []string {
	switch p.Kind {
	case PartLiteral:
		return []string{p.Literal}
	case PartEnum:
		return p.Alts
	case PartRange:
		out := make([]string, 0, p.Size())
		if p.From <= p.To {
			for i := p.From; i <= p.To; i++ {
				out = append(out, strconv.Itoa(i))
			}
		} else {
			for i := p.From; i >= p.To; i-- {
				out = append(out, strconv.Itoa(i))
			}
		}
		return out
	default:
		return nil
	}
}

// Segment is a sequence of parts whose atoms combine by Cartesian
// product, concatenated by position.
type Segment struct {
	Parts []Part
}

// Cardinality is the product of every part's size.
func (s Segment) Cardinality() int {
	n := 1
	for _, p := range s.Parts {
		n *= p.Size()
	}
	return n
}

// Groups returns the sizes of this segment's group (non-literal) parts,
// in left-to-right order.
func (s Segment) Groups() []int {
	var out []int
	for _, p := range s.Parts {
		if p.IsGroup() {
			out = append(out, p.Size())
		}
	}
	return out
}

// Atoms enumerates the segment's atoms: the Cartesian product of its
// parts, concatenated by position, with the rightmost part varying
// fastest.
func (s Segment) Atoms() []string {
	if len(s.Parts) == 0 {
		return nil
	}
	out := []string{""}
	for _, p := range s.Parts {
		atoms := p.Atoms()
		next := make([]string, 0, len(out)*len(atoms))
		for _, prefix := range out {
			for _, a := range atoms {
				next = append(next, prefix+a)
			}
		}
		out = next
	}
	return out
}
