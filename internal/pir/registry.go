// Package pir lowers an AST ImportGraph into a PatternedGraph
// (spec.md §4.E): pattern expressions parsed but not yet expanded,
// instances and nets resolved to a stable id space, group slices and
// default bindings recorded. Downstream stages borrow these entities by
// id only; nothing here is mutated after Lower returns.
package pir

import "asdl/internal/pattern"

// ExprID indexes an interned pattern expression within a ProgramGraph's
// Registry. Pattern expression objects are interned once per program
// and live as long as the ProgramGraph (spec.md §5).
type ExprID int

// Registry interns pattern.Expr values so IR entities can refer to them
// by a small stable id instead of holding a pointer directly.
type Registry struct {
	exprs []*pattern.Expr
}

// NewRegistry returns an empty expression registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Intern appends e and returns its id. Expressions are not deduplicated
// by content: two syntactically identical raw strings still get
// distinct ids, since each occurrence may carry a distinct span.
func (r *Registry) Intern(e *pattern.Expr) ExprID {
	r.exprs = append(r.exprs, e)
	return ExprID(len(r.exprs) - 1)
}

// Get returns the expression interned under id.
func (r *Registry) Get(id ExprID) *pattern.Expr {
	return r.exprs[id]
}

// Len reports how many expressions have been interned.
func (r *Registry) Len() int {
	return len(r.exprs)
}
