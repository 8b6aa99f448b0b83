package validate

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

func graphFrom(t *testing.T, content string) (*resolve.ImportGraph, *recordingReporter) {
	t.Helper()
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(content))
	rep := &recordingReporter{}
	g, ok := resolve.Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok)
	require.Empty(t, rep.diags)
	return g, rep
}

func TestHierModuleWithParametersFlagged(t *testing.T) {
	g, _ := graphFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
  top:
    parameters:
      w: "1u"
    ports:
      p:
        dir: in
    instances:
      u1:
        model: inv
`)
	rep := &recordingReporter{}
	Run(g, "top", rep)
	require.Contains(t, rep.codes(), diag.CodeHierModuleHasParameters)
}

func TestInstanceParamOnHierTarget(t *testing.T) {
	g, _ := graphFrom(t, `
file_info:
  top_module: top
modules:
  leaf:
    ports:
      p:
        dir: in
    instances: {}
  top:
    ports:
      p:
        dir: in
    instances:
      u1:
        model: leaf
        parameters:
          w: "1u"
`)
	rep := &recordingReporter{}
	Run(g, "top", rep)
	require.Contains(t, rep.codes(), diag.CodeInstanceParamOnHierTarget)
}

func TestInstanceMappingUnknownPort(t *testing.T) {
	g, _ := graphFrom(t, `
file_info:
  top_module: top
modules:
  inv:
    spice_template: "x"
  top:
    ports:
      vdd:
        dir: in
    instances:
      u1:
        model: inv
        mappings:
          nonexistent: vdd
`)
	rep := &recordingReporter{}
	Run(g, "top", rep)
	require.Contains(t, rep.codes(), diag.CodeInstanceMappingUnknownPort)
}

func TestModuleNeverInstantiatedExcludesTop(t *testing.T) {
	g, _ := graphFrom(t, `
file_info:
  top_module: top
modules:
  orphan:
    ports:
      p:
        dir: in
    instances: {}
  top:
    ports:
      p:
        dir: in
    instances: {}
`)
	rep := &recordingReporter{}
	Run(g, "top", rep)
	require.Contains(t, rep.codes(), diag.CodeModuleNeverInstantiated)
	for _, d := range rep.diags {
		if d.Code == diag.CodeModuleNeverInstantiated {
			require.Contains(t, d.Message, "orphan")
		}
	}
}

func TestInstanceParamUnknown(t *testing.T) {
	g, _ := graphFrom(t, `
file_info:
  top_module: top
modules:
  prim:
    spice_template: "x"
    parameters:
      w: "1u"
  top:
    instances:
      u1:
        model: prim
        parameters:
          bogus: "2u"
`)
	rep := &recordingReporter{}
	Run(g, "top", rep)
	require.Contains(t, rep.codes(), diag.CodeInstanceParamUnknown)
}
