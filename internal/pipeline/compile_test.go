package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/cache"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileSimpleDesign(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "top.asdl", `
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
      y:
        dir: out
    instances:
      u1:
        model: inv
    nets:
      x:
        - u1.a
      y:
        - u1.z
`)

	design, bag, err := Compile(context.Background(), path, Options{})
	require.NoError(t, err)
	require.False(t, bag.HasErrors(), "%v", bag.Items())
	require.NotNil(t, design)
	require.Contains(t, design.Text, ".subckt top x y")
}

func TestCompileMissingFileReportsDiagnostic(t *testing.T) {
	design, bag, err := Compile(context.Background(), "/no/such/file.asdl", Options{})
	require.NoError(t, err)
	require.Nil(t, design)
	require.True(t, bag.HasErrors())
}

func TestCompileCacheHitSkipsReparse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "top.asdl", `
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
      y:
        dir: out
    instances:
      u1:
        model: inv
    nets:
      x:
        - u1.a
      y:
        - u1.z
`)
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	design1, bag1, err := Compile(context.Background(), path, Options{Cache: store})
	require.NoError(t, err)
	require.False(t, bag1.HasErrors())

	design2, bag2, err := Compile(context.Background(), path, Options{Cache: store})
	require.NoError(t, err)
	require.False(t, bag2.HasErrors())
	require.Equal(t, design1.Text, design2.Text)
}

func TestCompileStopsBeforeEmitOnResolverError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "top.asdl", `
file_info:
  top_module: top
modules:
  top:
    instances:
      u1:
        model: missing_module
`)

	design, bag, err := Compile(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Nil(t, design)
	require.True(t, bag.HasErrors())
}
