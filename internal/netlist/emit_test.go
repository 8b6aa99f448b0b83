package netlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/air"
	"asdl/internal/diag"
	"asdl/internal/pir"
	"asdl/internal/resolve"
	"asdl/internal/source"
)

type recordingReporter struct {
	diags []diag.Diagnostic
}

func (r *recordingReporter) Report(d diag.Diagnostic) {
	r.diags = append(r.diags, d)
}

func (r *recordingReporter) codes() []diag.Code {
	out := make([]diag.Code, len(r.diags))
	for i, d := range r.diags {
		out[i] = d.Code
	}
	return out
}

func compileFull(t *testing.T, content string) (*pir.ProgramGraph, *air.AtomizedGraph, *recordingReporter) {
	t.Helper()
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(content))
	rep := &recordingReporter{}
	g, ok := resolve.Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok, "%v", rep.diags)
	pg, ok := pir.Lower(g, "top", rep)
	require.True(t, ok, "%v", rep.diags)
	ag, ok := air.Atomize(pg, rep)
	require.True(t, ok, "%v", rep.diags)
	return pg, ag, rep
}

const simpleCircuit = `
file_info:
  top_module: top
modules:
  inv:
    ports:
      a:
        dir: in
      z:
        dir: out
    spice_template: "M_{name} {z} {a} 0 0 nmos w={w}"
    parameters:
      w: "1u"
  top:
    ports:
      x:
        dir: in
      y:
        dir: out
    instances:
      u1:
        model: inv
        parameters:
          w: "2u"
    nets:
      x:
        - u1.a
      y:
        - u1.z
`

func TestEmitSubcktAndPrimitiveTemplate(t *testing.T) {
	pg, ag, rep := compileFull(t, simpleCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top", TopStyle: TopStyleSubckt}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, ".subckt top x y")
	require.Contains(t, d.Text, "M_u1 y x 0 0 nmos w=2u")
	require.Contains(t, d.Text, ".ends")
	require.Contains(t, d.Text, ".end")
}

func TestEmitFlatTopSkipsSubcktWrapper(t *testing.T) {
	pg, ag, rep := compileFull(t, simpleCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top", TopStyle: TopStyleFlat}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, "* .subckt top x y")
	require.Contains(t, d.Text, "M_u1 y x 0 0 nmos w=2u")
}

func TestEmitMissingTopModule(t *testing.T) {
	pg, ag, rep := compileFull(t, simpleCircuit)
	_, ok := Emit(pg, ag, Options{TopModule: "nope"}, rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeMissingTopModule)
}

const unconnectedCircuit = `
file_info:
  top_module: top
modules:
  inv:
    ports:
      a:
        dir: in
      z:
        dir: out
    spice_template: "M_{name} {z} {a} 0 0 nmos"
  top:
    ports:
      x:
        dir: in
    instances:
      u1:
        model: inv
    nets:
      x:
        - u1.a
`

func TestEmitUnconnectedPortReported(t *testing.T) {
	pg, ag, rep := compileFull(t, unconnectedCircuit)
	_, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeUnconnectedPort)
}

func TestLintDetectsUnbalancedSubckt(t *testing.T) {
	d := &Design{Text: ".subckt foo a b\nR1 a b 1k\n"}
	rep := &recordingReporter{}
	ok := Lint(d, rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeUnbalancedSubckt)
}

func TestLintDetectsUnresolvedPlaceholder(t *testing.T) {
	d := &Design{Text: ".subckt foo a b\nM1 {a} b 0 0 nmos\n.ends\n"}
	rep := &recordingReporter{}
	ok := Lint(d, rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeUnresolvedPlaceholder)
}

func TestLintCleanDesignPasses(t *testing.T) {
	pg, ag, rep := compileFull(t, simpleCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.True(t, ok)
	lintRep := &recordingReporter{}
	require.True(t, Lint(d, lintRep))
	require.Empty(t, lintRep.diags)
}

const chainedCircuit = `
file_info:
  top_module: top
modules:
  inv:
    ports:
      a:
        dir: in
      z:
        dir: out
    spice_template: "M_{name} {z} {a} 0 0 nmos"
  mid:
    ports:
      a:
        dir: in
      z:
        dir: out
    instances:
      u1:
        model: inv
    nets:
      a:
        - u1.a
      z:
        - u1.z
  top:
    ports:
      x:
        dir: in
      y:
        dir: out
    instances:
      m1:
        model: mid
    nets:
      x:
        - m1.a
      y:
        - m1.z
`

func TestEmitDependencyOrderPutsTopLast(t *testing.T) {
	pg, ag, rep := compileFull(t, chainedCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.True(t, strings.Index(d.Text, ".subckt mid") < strings.Index(d.Text, ".subckt top"))
}

// Scenario 1 (spec §8): a primitive instance wired entirely via
// `mappings:`, no `nets:` block at all.
const mappingsPrimitiveCircuit = `
file_info: {top_module: top}
modules:
  r: {spice_template: "R{name} {a} {b} {R}", parameters: {R: 1k}, ports: {a: {dir: in_out}, b: {dir: in_out}}}
  top:
    ports: {in: {dir: in}, out: {dir: out}}
    instances: {R1: {model: r, mappings: {a: in, b: out}, parameters: {R: 2k}}}
`

func TestEmitMappingsOnlyPrimitiveInstance(t *testing.T) {
	pg, ag, rep := compileFull(t, mappingsPrimitiveCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, ".subckt top in out")
	require.Contains(t, d.Text, "RR1 in out 2k")
	require.Contains(t, d.Text, ".ends")
}

// Scenario 2 (spec §8): mappings nets correlated positionally against an
// enumerated instance pattern.
const mappingsPatternCircuit = `
file_info: {top_module: top}
modules:
  nfet: {spice_template: "MN{name} {D} {G} {S} {B} nfet", ports: {D: {dir: in_out}, G: {dir: in}, S: {dir: in_out}, B: {dir: in_out}}}
  top:
    ports: {in_p: {dir: in}, in_n: {dir: in}, out_p: {dir: out}, out_n: {dir: out}, vss: {dir: in_out}}
    instances:
      "M_<P|N>":
        model: nfet
        mappings: {G: "in_<p|n>", D: "out_<p|n>", S: vss, B: vss}
`

func TestEmitMappingsPatternBroadcast(t *testing.T) {
	pg, ag, rep := compileFull(t, mappingsPatternCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, "MNM_P out_p in_p vss vss nfet")
	require.Contains(t, d.Text, "MNM_N out_n in_n vss vss nfet")
}

// Scenario 3 (spec §8): mappings wiring into a hierarchical target.
const mappingsHierarchicalCircuit = `
file_info: {top_module: parent}
modules:
  child:
    ports: {a: {dir: in}, b: {dir: in}, c: {dir: out}}
  parent:
    ports: {n1: {dir: in}, n2: {dir: in}, n3: {dir: out}}
    instances:
      U1:
        model: child
        mappings: {a: n1, b: n2, c: n3}
        parameters: {z: "1", a: "2"}
`

func TestEmitMappingsHierarchicalCall(t *testing.T) {
	pg, ag, rep := compileFull(t, mappingsHierarchicalCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "parent"}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, "X_U1 n1 n2 n3 child a=2 z=1")
}

// instance_defaults (DESIGN.md, applyInstanceDefaults) fills in a mapping that atomization
// must actually wire, not just validate.
const instanceDefaultsCircuit = `
file_info: {top_module: top}
modules:
  r: {spice_template: "R{name} {a} {b} {R}", parameters: {R: 1k}, ports: {a: {dir: in_out}, b: {dir: in_out}}}
  top:
    ports: {in: {dir: in}, out: {dir: out}}
    instance_defaults:
      R1: {b: out}
    instances: {R1: {model: r, mappings: {a: in}}}
`

func TestEmitInstanceDefaultBindingIsWired(t *testing.T) {
	pg, ag, rep := compileFull(t, instanceDefaultsCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, "RR1 in out 1k")
}

// A primitive template that never references a declared port (a bulk
// pin, say) must not be rejected as an unconnected port.
const primitiveUnreferencedPortCircuit = `
file_info: {top_module: top}
modules:
  nfet: {spice_template: "MN{name} {D} {G} {S} nfet", ports: {D: {dir: in_out}, G: {dir: in}, S: {dir: in_out}, B: {dir: in_out}}}
  top:
    ports: {d: {dir: in_out}, g: {dir: in}, s: {dir: in_out}}
    instances:
      M1:
        model: nfet
        mappings: {D: d, G: g, S: s}
`

func TestEmitPrimitiveIgnoresUnreferencedUnmappedPort(t *testing.T) {
	pg, ag, rep := compileFull(t, primitiveUnreferencedPortCircuit)
	d, ok := Emit(pg, ag, Options{TopModule: "top"}, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Contains(t, d.Text, "MNM1 d g s nfet")
	require.NotContains(t, rep.codes(), diag.CodeUnconnectedPort)
}
