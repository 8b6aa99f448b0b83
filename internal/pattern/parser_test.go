package pattern

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

var testSpan = source.NewSpan("t.asdl", source.Position{Line: 1, Col: 1}, source.Position{Line: 1, Col: 10})

func TestParseEnum(t *testing.T) {
	rep := &recordingReporter{}
	expr, ok := Parse("in_<a|b|c>", nil, testSpan, rep)
	require.True(t, ok)
	require.Empty(t, rep.diags)
	require.Equal(t, []string{"in_a", "in_b", "in_c"}, expr.Atoms())
}

func TestParseRangeCountingDown(t *testing.T) {
	rep := &recordingReporter{}
	expr, ok := Parse("bus[3:1]", nil, testSpan, rep)
	require.True(t, ok)
	require.Equal(t, []string{"bus3", "bus2", "bus1"}, expr.Atoms())
}

func TestParseRangeSinglePoint(t *testing.T) {
	rep := &recordingReporter{}
	expr, ok := Parse("bit[3:3]", nil, testSpan, rep)
	require.True(t, ok)
	require.Equal(t, []string{"bit3"}, expr.Atoms())
}

func TestParseSplice(t *testing.T) {
	rep := &recordingReporter{}
	expr, ok := Parse("a<x|y>;b[1:2]", nil, testSpan, rep)
	require.True(t, ok)
	require.Equal(t, []string{"ax", "ay", "b1", "b2"}, expr.Atoms())
}

func TestParseNamedPattern(t *testing.T) {
	rep := &recordingReporter{}
	named := map[string]string{"BUS": "[0:3]"}
	expr, ok := Parse("d<@BUS>", named, testSpan, rep)
	require.True(t, ok)
	require.Equal(t, []string{"d0", "d1", "d2", "d3"}, expr.Atoms())
}

func TestParseUndefinedNamedPattern(t *testing.T) {
	rep := &recordingReporter{}
	_, ok := Parse("d<@MISSING>", nil, testSpan, rep)
	require.False(t, ok)
	require.Len(t, rep.diags, 1)
	require.Equal(t, diag.CodeUndefinedNamedPattern, rep.diags[0].Code)
}

func TestParseEmptyEnum(t *testing.T) {
	rep := &recordingReporter{}
	_, ok := Parse("a<>", nil, testSpan, rep)
	require.False(t, ok)
	require.Equal(t, diag.CodeEmptyEnum, rep.diags[0].Code)
}

func TestParseEmptyAlternative(t *testing.T) {
	rep := &recordingReporter{}
	_, ok := Parse("a<x||y>", nil, testSpan, rep)
	require.False(t, ok)
	require.Equal(t, diag.CodeEmptyEnum, rep.diags[0].Code)
}

func TestParseEmptySpliceSegment(t *testing.T) {
	rep := &recordingReporter{}
	_, ok := Parse("a;;b", nil, testSpan, rep)
	require.False(t, ok)
	require.Equal(t, diag.CodeEmptySpliceSegment, rep.diags[0].Code)
}

func TestParseMalformedRange(t *testing.T) {
	rep := &recordingReporter{}
	_, ok := Parse("bus[x:3]", nil, testSpan, rep)
	require.False(t, ok)
	require.Equal(t, diag.CodeRangeMalformed, rep.diags[0].Code)
}

func TestParseSemicolonInsideGroupRejected(t *testing.T) {
	rep := &recordingReporter{}
	_, ok := Parse("a<x;y>", nil, testSpan, rep)
	require.False(t, ok)
	require.Equal(t, diag.CodeMalformedDelimiter, rep.diags[0].Code)
}

func TestValidateNamedDef(t *testing.T) {
	_, ok := ValidateNamedDef("<a|b|c>")
	require.True(t, ok)

	_, ok = ValidateNamedDef("[0:7]")
	require.True(t, ok)

	_, ok = ValidateNamedDef("prefix<a|b>")
	require.False(t, ok)

	_, ok = ValidateNamedDef("<@OTHER>")
	require.False(t, ok)
}
