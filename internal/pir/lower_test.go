package pir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/diag"
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

func graphFrom(t *testing.T, content string) *resolve.ImportGraph {
	t.Helper()
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(content))
	rep := &recordingReporter{}
	g, ok := resolve.Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok, "%v", rep.diags)
	require.Empty(t, rep.diags)
	return g
}

func TestLowerSimpleModule(t *testing.T) {
	g := graphFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
  top:
    ports:
      p:
        dir: in
    instances:
      u<0|1>:
        model: inv
    nets:
      $p:
        - u0.in
`)
	rep := &recordingReporter{}
	pg, ok := Lower(g, "top", rep)
	require.True(t, ok, "%v", rep.diags)
	mg := pg.Modules[ModuleKey{FileID: g.EntryFileID, Name: "top"}]
	require.Len(t, mg.Instances, 1)
	require.True(t, mg.Instances[0].Resolved)
	require.Equal(t, "inv", mg.Instances[0].TargetName)
	require.Len(t, mg.Nets, 1)
	require.Len(t, mg.Endpoints, 1)
}

func TestLowerUnresolvedModelReportsIR011(t *testing.T) {
	g := graphFrom(t, `
file_info:
  top_module: top
modules:
  top:
    instances:
      u1:
        model: nonexistent
`)
	rep := &recordingReporter{}
	_, ok := Lower(g, "top", rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeUnresolvedUnqualifiedModel)
}

func TestLowerNetNameRejectsSplice(t *testing.T) {
	g := graphFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
  top:
    instances:
      u1:
        model: inv
    nets:
      a;b:
        - u1.p
`)
	rep := &recordingReporter{}
	_, ok := Lower(g, "top", rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeMalformedDelimiter)
}

func TestLowerInstanceDefaultsFillGap(t *testing.T) {
	g := graphFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
  top:
    instance_defaults:
      u1:
        vdd: VDD
    instances:
      u1:
        model: inv
`)
	rep := &recordingReporter{}
	pg, ok := Lower(g, "top", rep)
	require.True(t, ok, "%v", rep.diags)
	mg := pg.Modules[ModuleKey{FileID: g.EntryFileID, Name: "top"}]
	inst := mg.InstanceByName["u1"]
	require.Contains(t, inst.Mappings, "vdd")
	require.Equal(t, "VDD", mg.namedExprRaw(inst.Mappings["vdd"]))
}
