package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalFileSet_Path(t *testing.T) {
	require.Equal(t, filepath.Join("data", "btc"), LocalFileSet{Dir: "data", Base: "btc"}.Path())
	require.Equal(t, filepath.Join("data", "btc.bin"), LocalFileSet{Dir: "data", Base: "btc.bin"}.Path())

	lfs := FileSetOf(filepath.Join("a", "b", "c.rec"))
	require.Equal(t, filepath.Join("a", "b"), lfs.Dir)
	require.Equal(t, "c.rec", lfs.Base)

	// paths round-trip unchanged, with or without an extension
	for _, p := range []string{"plain", filepath.Join("x", "y.dat"), filepath.Join("x", "noext")} {
		require.Equal(t, p, FileSetOf(p).Path())
	}
}

func TestLocalFileSet_WithBase(t *testing.T) {
	lfs := LocalFileSet{Dir: "out"}
	require.Equal(t, LocalFileSet{Dir: "out", Base: "prices.rec"}, lfs.WithBase("/tmp/in/prices.csv"))
	require.Equal(t, LocalFileSet{Dir: "out", Base: "x.rec"}, lfs.WithBase("x"))
}

func TestLocalFileSet_CreateTruncatesAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	lfs := LocalFileSet{Dir: dir, Base: "t"}

	f, err := lfs.Create()
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = lfs.Create()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = lfs.Open()
	require.NoError(t, err)
	defer f.Close()

	size, err := FileSize(f)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
}

func TestLocalFileSet_OpenMissing(t *testing.T) {
	_, err := LocalFileSet{Dir: t.TempDir(), Base: "missing"}.Open()
	require.ErrorIs(t, err, os.ErrNotExist)
}
