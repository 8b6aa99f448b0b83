package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/diag"
)

func TestExitCodeForClean(t *testing.T) {
	require.Equal(t, exitOK, exitCodeFor(diag.NewBag(), nil))
}

func TestExitCodeForDiagnosticsError(t *testing.T) {
	bag := diag.NewBag()
	bag.Emit(diag.Errorf(diag.CodeInternal, diag.StageTool, "boom").MustBuild())
	require.Equal(t, exitDiagnosticsErr, exitCodeFor(bag, nil))
}

func TestExitCodeForInternalError(t *testing.T) {
	require.Equal(t, exitInternal, exitCodeFor(diag.NewBag(), errors.New("panic recovered")))
}
