package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/diag"
)

func TestBindEqualCardinality(t *testing.T) {
	rep := &recordingReporter{}
	net, _ := Parse("net[0:3]", nil, testSpan, rep)
	ep, _ := Parse("pin[0:3]", nil, testSpan, rep)

	plan, ok := Bind(net, ep, rep)
	require.True(t, ok)
	for i := 0; i < 4; i++ {
		require.Equal(t, i, plan.MapIndex(i))
	}
}

func TestBindBroadcastFromEndpoint(t *testing.T) {
	rep := &recordingReporter{}
	net, _ := Parse("net[0:3]_<a|b>", nil, testSpan, rep)
	ep, _ := Parse("pin<x>_<a|b>", nil, testSpan, rep)

	plan, ok := Bind(net, ep, rep)
	require.True(t, ok)
	require.Equal(t, 0, plan.MapIndex(0))
}

func TestBindIncompatibleCardinality(t *testing.T) {
	rep := &recordingReporter{}
	net, _ := Parse("net[0:3]", nil, testSpan, rep)
	ep, _ := Parse("pin[0:2]", nil, testSpan, rep)

	_, ok := Bind(net, ep, rep)
	require.False(t, ok)
	require.Equal(t, diag.CodeBindingIncompatible, rep.diags[0].Code)
	require.Len(t, rep.diags[0].Labels, 1)
}
