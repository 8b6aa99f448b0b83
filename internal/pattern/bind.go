package pattern

import (
	"fmt"

	"asdl/internal/diag"
)

// BindingPlan is the result of binding two parallel pattern expressions
// (spec.md §4.B "Binding parallel expressions"). It lets a caller
// holding a flat atom index into the endpoint expression look up the
// corresponding flat atom index into the net expression.
type BindingPlan struct {
	netGroups []int
	epGroups  []int
	netWeight []int
	epWeight  []int
}

// Bind checks that net and endpoint are compatible — their group-size
// sequences match after stripping trailing size-1 positions, and every
// remaining pair is either equal or one side broadcasts (size 1) — and
// returns the plan for mapping endpoint atom indices to net atom
// indices. Incompatibility is reported as a single diagnostic with both
// spans labelled.
func Bind(net, endpoint *Expr, reporter diag.Reporter) (*BindingPlan, bool) {
	netGroups := stripTrailingOnes(net.Groups())
	epGroups := stripTrailingOnes(endpoint.Groups())

	if len(netGroups) != len(epGroups) {
		reportIncompatible(net, endpoint, reporter)
		return nil, false
	}
	for i := range netGroups {
		if netGroups[i] != epGroups[i] && netGroups[i] != 1 && epGroups[i] != 1 {
			reportIncompatible(net, endpoint, reporter)
			return nil, false
		}
	}

	return &BindingPlan{
		netGroups: netGroups,
		epGroups:  epGroups,
		netWeight: weightsOf(netGroups),
		epWeight:  weightsOf(epGroups),
	}, true
}

func reportIncompatible(net, endpoint *Expr, reporter diag.Reporter) {
	reporter.Report(diag.Errorf(diag.CodeBindingIncompatible, diag.StagePattern,
		fmt.Sprintf("incompatible pattern cardinalities: %q has groups %v, %q has groups %v",
			net.Raw, net.Groups(), endpoint.Raw, endpoint.Groups())).
		At(net.Span).
		WithLabel(endpoint.Span, "endpoint pattern here").
		MustBuild())
}

// weightsOf returns the mixed-radix positional weight of each group,
// with the rightmost group varying fastest (weight 1).
func weightsOf(sizes []int) []int {
	w := make([]int, len(sizes))
	acc := 1
	for i := len(sizes) - 1; i >= 0; i-- {
		w[i] = acc
		acc *= sizes[i]
	}
	return w
}

func stripTrailingOnes(groups []int) []int {
	end := len(groups)
	for end > 0 && groups[end-1] == 1 {
		end--
	}
	return groups[:end]
}

// MapIndex returns the net-atom flat index that should receive the
// endpoint atom at epAtomIdx. Broadcast positions (net group size 1)
// always resolve to digit 0; a net group wider than its paired endpoint
// group (the reverse broadcast) is not resolvable through this
// function — callers iterating net atoms directly own that fan-out.
func (p *BindingPlan) MapIndex(epAtomIdx int) int {
	netIdx := 0
	remaining := epAtomIdx
	for i := range p.epGroups {
		digit := remaining / p.epWeight[i]
		remaining %= p.epWeight[i]
		if p.netGroups[i] == p.epGroups[i] {
			netIdx += digit * p.netWeight[i]
		}
		// else net group is 1 (broadcast): digit contributes 0.
	}
	return netIdx
}
