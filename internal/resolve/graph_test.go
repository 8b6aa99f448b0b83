package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/diag"
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

func TestResolveSingleFile(t *testing.T) {
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(`
file_info:
  top_module: inv
modules:
  inv:
    spice_template: "x"
`))
	rep := &recordingReporter{}
	g, ok := Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok)
	require.Len(t, g.Documents, 1)
	require.Contains(t, g.Symbols[g.EntryFileID], "inv")
}

func TestResolveImportCycle(t *testing.T) {
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/a.asdl", []byte(`
file_info:
  top_module: a
imports:
  b: "b.asdl"
modules:
  a:
    spice_template: "x"
`))
	reg.AddVirtual("/proj/b.asdl", []byte(`
file_info:
  top_module: b
imports:
  a: "a.asdl"
modules:
  b:
    spice_template: "x"
`))
	rep := &recordingReporter{}
	_, ok := Resolve("/proj/a.asdl", nil, reg, rep)
	require.False(t, ok)
	require.Contains(t, rep.codes(), diag.CodeImportCycle)
}

func TestResolveAmbiguousSymbol(t *testing.T) {
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(`
file_info:
  top_module: x
modules:
  x:
    spice_template: "a"
devices:
  x: {}
`))
	rep := &recordingReporter{}
	_, ok := Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok)
	require.Contains(t, rep.codes(), diag.CodeAmbiguousModelRef)
}

func TestResolveUnusedImport(t *testing.T) {
	reg := source.NewRegistry()
	reg.AddVirtual("/proj/top.asdl", []byte(`
file_info:
  top_module: x
imports:
  lib: "lib.asdl"
modules:
  x:
    spice_template: "a"
`))
	reg.AddVirtual("/proj/lib.asdl", []byte(`
file_info:
  top_module: y
modules:
  y:
    spice_template: "b"
`))
	rep := &recordingReporter{}
	_, ok := Resolve("/proj/top.asdl", nil, reg, rep)
	require.True(t, ok)
	require.Contains(t, rep.codes(), diag.CodeUnusedImport)
}
