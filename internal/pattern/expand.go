package pattern

import (
	"fmt"

	"asdl/internal/diag"
)

// DefaultExpansionCap is the default maximum atom count before an
// expansion is rejected (spec.md §4.B PASS-105).
const DefaultExpansionCap = 10000

// Expand enumerates e's atoms, rejecting the expansion before
// generating it if its cardinality exceeds cap. A cap of 0 selects
// DefaultExpansionCap.
func Expand(e *Expr, cap int, reporter diag.Reporter) ([]string, bool) {
	if cap <= 0 {
		cap = DefaultExpansionCap
	}
	if e.Cardinality() > cap {
		reporter.Report(diag.Errorf(diag.CodeExpansionCapExceeded, diag.StagePattern,
			fmt.Sprintf("expansion of %q would produce %d atoms, exceeding the cap of %d", e.Raw, e.Cardinality(), cap)).
			At(e.Span).MustBuild())
		return nil, false
	}
	return e.Atoms(), true
}

// FirstDuplicate returns the index of the first atom that repeats an
// earlier one (preserving first-seen order), and whether one exists.
func FirstDuplicate(atoms []string) (int, bool) {
	seen := make(map[string]bool, len(atoms))
	for i, a := range atoms {
		if seen[a] {
			return i, true
		}
		seen[a] = true
	}
	return 0, false
}

// ExpandEndpoint expands instance and pin expressions together and
// returns every (inst-atom, pin-atom) pair in order, with the
// combined cap applied to the product size (spec.md §4.B "Endpoint
// expansion").
func ExpandEndpoint(inst, pin *Expr, cap int, reporter diag.Reporter) ([][2]string, bool) {
	if cap <= 0 {
		cap = DefaultExpansionCap
	}
	product := inst.Cardinality() * pin.Cardinality()
	if product > cap {
		reporter.Report(diag.Errorf(diag.CodeExpansionCapExceeded, diag.StagePattern,
			fmt.Sprintf("endpoint expansion %q.%q would produce %d atoms, exceeding the cap of %d",
				inst.Raw, pin.Raw, product, cap)).At(inst.Span.Cover(pin.Span)).MustBuild())
		return nil, false
	}
	instAtoms, ok := Expand(inst, cap, reporter)
	if !ok {
		return nil, false
	}
	pinAtoms, ok := Expand(pin, cap, reporter)
	if !ok {
		return nil, false
	}
	out := make([][2]string, 0, len(instAtoms)*len(pinAtoms))
	for _, ia := range instAtoms {
		for _, pa := range pinAtoms {
			out = append(out, [2]string{ia, pa})
		}
	}
	return out, true
}
