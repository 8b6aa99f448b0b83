package pir

import (
	"asdl/internal/ast"
	"asdl/internal/pattern"
	"asdl/internal/resolve"
	"asdl/internal/source"
)

// InstanceBundle is a declared instance with its name and parameter
// expressions parsed but not expanded.
type InstanceBundle struct {
	ID         int
	Name       string
	NameExpr   ExprID
	ModelRef   string
	TargetFile string // resolved file-id the model reference points into
	TargetName string // resolved module/device name within TargetFile
	Resolved   bool
	Mappings   map[string]ExprID // port name -> net-token expr id
	Parameters map[string]ExprID
	Span       source.Span
}

// EndpointBundle is one net endpoint, its instance and pin tokens
// parsed as separate expressions (spec.md §4.E step 4).
type EndpointBundle struct {
	ID         int
	NetID      int
	Raw        string
	InstExpr   ExprID
	PinExpr    ExprID
	Suppressed bool
	Span       source.Span
}

// NetBundle is one declared net with its name expression parsed and its
// endpoint list lowered.
type NetBundle struct {
	ID          int
	NameExpr    ExprID
	IsPortNet   bool
	Endpoints   []int // indices into ModuleGraph.Endpoints
	GroupSlices []ast.GroupSlice
	Span        source.Span
}

// ModuleGraph is one module's PatternedGraph representation.
type ModuleGraph struct {
	FileID           string
	Name             string
	IsPrimitive      bool
	SpiceTemplate    string
	Ports            []ast.Port
	PortOrderExprs   []ExprID
	Parameters       map[string]string
	Variables        map[string]string
	NamedPatterns    map[string]string
	Instances        []*InstanceBundle
	InstanceByName   map[string]*InstanceBundle
	Nets             []*NetBundle
	Endpoints        []*EndpointBundle
	InstanceDefaults map[string]map[string]string
	PDK              string
	Span             source.Span

	registry *Registry
}

// namedExprRaw returns the raw text of the expression interned under id.
func (mg *ModuleGraph) namedExprRaw(id ExprID) string {
	return mg.registry.Get(id).Raw
}

// internLiteral interns a raw pattern-expression string as a trivial
// single-part expression, for defaults synthesized rather than parsed
// from source (spec.md §4.E step 6). raw is not parsed or validated:
// any pattern syntax in it is kept as literal text.
func (mg *ModuleGraph) internLiteral(raw string) ExprID {
	return mg.registry.Intern(&pattern.Expr{Raw: raw, Segments: []pattern.Segment{{Parts: []pattern.Part{{Kind: pattern.PartLiteral, Literal: raw}}}}})
}

// ModuleKey uniquely identifies a module within a ProgramGraph.
type ModuleKey struct {
	FileID string
	Name   string
}

// ProgramGraph is the lowered form of an entire ImportGraph.
type ProgramGraph struct {
	Modules     map[ModuleKey]*ModuleGraph
	Registry    *Registry
	EntryFileID string
	TopModule   string
	Import      *resolve.ImportGraph
}
