package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/diag"
	"asdl/internal/source"
)

func TestJSONRendersFlatArray(t *testing.T) {
	bag := diag.NewBag()
	bag.Emit(diag.Errorf(diag.CodeMissingTopModule, diag.StageEmit, "no top module").MustBuild())
	bag.Emit(diag.Warningf(diag.CodeUnusedImport, diag.StageResolve, "unused import \"lib\"").
		At(source.NewSpan("a.asdl", source.Position{Line: 2, Col: 3}, source.Position{Line: 2, Col: 10})).
		MustBuild())

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, bag, JSONOpts{Ordered: true}))

	var records []DiagnosticJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	require.Equal(t, "a.asdl", records[0].PrimarySpan.File)
	require.Nil(t, records[1].PrimarySpan)
}

func TestBuildRecordsRespectsMax(t *testing.T) {
	bag := diag.NewBag()
	for i := 0; i < 5; i++ {
		bag.Emit(diag.Infof(diag.CodeEmptyFileInfo, diag.StageParse, "info").MustBuild())
	}
	records := BuildRecords(bag, JSONOpts{Max: 2})
	require.Len(t, records, 2)
}
