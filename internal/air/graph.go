// Package air expands a PatternedGraph into an AtomizedGraph (spec.md
// §4.F): every pattern expression is fully expanded to literal atoms,
// net name collisions are deduplicated, instance name collisions are
// reported as PASS-104, and endpoints are
// bound to concrete (net, instance, port) triples via the pattern
// engine's binding plan.
package air

import (
	"asdl/internal/pir"
	"asdl/internal/source"
)

// PatternOrigin records which declared pattern expression (and which
// atom index within its expansion) produced an atomized entity, so
// diagnostics raised downstream can point back to the declaration.
type PatternOrigin struct {
	ExprID   pir.ExprID
	AtomIdx  int
}

// AtomizedInstance is one expanded instance atom.
type AtomizedInstance struct {
	ID         int
	Literal    string
	Origin     PatternOrigin
	TargetFile string
	TargetName string
	Resolved   bool
	Parameters map[string]string
	Span       source.Span
}

// AtomizedEndpoint connects one net atom to one instance atom's port.
type AtomizedEndpoint struct {
	NetID  int
	InstID int
	Port   string
}

// AtomizedNet is one expanded net atom with its ordered endpoint list.
type AtomizedNet struct {
	ID        int
	Literal   string
	Origin    PatternOrigin
	Endpoints []AtomizedEndpoint
}

// AtomizedModule is one module's fully expanded form.
type AtomizedModule struct {
	FileID         string
	Name           string
	IsPrimitive    bool
	SpiceTemplate  string
	Ports          []string
	Parameters     map[string]string
	Variables      map[string]string
	PDK            string
	Instances      []*AtomizedInstance
	instanceIndex  map[string][]int // literal -> instance ids sharing that literal (should be len 1 post-dedup)
	Nets           []*AtomizedNet
	netIndex       map[string]int
}

// ModuleKey mirrors pir.ModuleKey to avoid importing pir into call
// sites that only need the atomized form.
type ModuleKey = pir.ModuleKey

// AtomizedGraph is the lowered form of an entire ProgramGraph.
type AtomizedGraph struct {
	Modules     map[ModuleKey]*AtomizedModule
	EntryFileID string
	TopModule   string
}

// InstanceByLiteral returns the unique instance atom named literal, or
// ok=false if absent or ambiguous.
func (m *AtomizedModule) InstanceByLiteral(literal string) (*AtomizedInstance, bool) {
	ids, ok := m.instanceIndex[literal]
	if !ok || len(ids) != 1 {
		return nil, false
	}
	return m.Instances[ids[0]], true
}
