package cache

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"asdl/internal/diag"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("content"))
	rec := &Record{
		Design:      DesignRecord{Name: "top", TopModule: "top", Text: ".end\n"},
		Diagnostics: []diag.Diagnostic{diag.Infof(diag.CodeEmptyFileInfo, diag.StageParse, "note").MustBuild()},
		Inputs:      []InputHash{{Path: "/a.asdl", Hash: hash}},
	}
	require.NoError(t, store.Put(hash, rec))

	got, ok, err := store.Get(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec.Design, got.Design)
	require.Len(t, got.Diagnostics, 1)
	require.Equal(t, rec.Inputs, got.Inputs)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	_, ok, err := store.Get(sha256.Sum256([]byte("nope")))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDropAllClearsStore(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("x"))
	require.NoError(t, store.Put(hash, &Record{}))
	require.NoError(t, store.DropAll())
	_, ok, err := store.Get(hash)
	require.NoError(t, err)
	require.False(t, ok)
}
