package air

import (
	"testing"

	"github.com/stretchr/testify/require"

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

func atomizedFrom(t *testing.T, content string) (*AtomizedGraph, string) {
	t.Helper()
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(content))
	rep := &recordingReporter{}
	g, ok := resolve.Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok, "%v", rep.diags)
	pg, ok := pir.Lower(g, "top", rep)
	require.True(t, ok, "%v", rep.diags)
	ag, ok := Atomize(pg, rep)
	require.True(t, ok, "%v", rep.diags)
	return ag, g.EntryFileID
}

func TestAtomizeExpandsInstancesAndNets(t *testing.T) {
	ag, fileID := atomizedFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    ports:
      in:
        dir: in
    spice_template: "x"
  top:
    ports:
      p:
        dir: in
    instances:
      u<0|1>:
        model: inv
    nets:
      $p[0:1]:
        - u<0|1>.in
`)
	mg := ag.Modules[pir.ModuleKey{FileID: fileID, Name: "top"}]
	require.Len(t, mg.Instances, 2)
	require.Equal(t, "u0", mg.Instances[0].Literal)
	require.Equal(t, "u1", mg.Instances[1].Literal)
	require.Len(t, mg.Nets, 2)
}

func TestAtomizeDuplicateInstanceAtom(t *testing.T) {
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(`
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
  top:
    instances:
      u<0|0>:
        model: inv
`))
	rep := &recordingReporter{}
	g, ok := resolve.Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok)
	pg, ok := pir.Lower(g, "top", rep)
	require.True(t, ok, "%v", rep.diags)
	_, _ = Atomize(pg, rep)
	require.Contains(t, rep.codes(), diag.CodeDuplicateAtom)
}

func TestAtomizeParameterBroadcast(t *testing.T) {
	ag, fileID := atomizedFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
    parameters:
      w: "1u"
  top:
    instances:
      u<0|1>:
        model: inv
        parameters:
          w: "2u"
`)
	mg := ag.Modules[pir.ModuleKey{FileID: fileID, Name: "top"}]
	require.Equal(t, "2u", mg.Instances[0].Parameters["w"])
	require.Equal(t, "2u", mg.Instances[1].Parameters["w"])
}
