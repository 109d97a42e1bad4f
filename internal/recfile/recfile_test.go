package recfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarec/internal/record"
)

const testMarker = "TEST"

// xyDescriptor is the (x integer, y float) descriptor used across tests.
func xyDescriptor(t *testing.T) Descriptor {
	t.Helper()
	s := &record.Schema{}
	require.NoError(t, s.AddColumn("x", record.ColInteger))
	require.NoError(t, s.AddColumn("y", record.ColFloat))
	return NewDescriptor(testMarker, s)
}

func descriptorFor(t *testing.T, marker, codes string) Descriptor {
	t.Helper()
	l, err := record.ParseLayout(codes)
	require.NoError(t, err)
	return Descriptor{Marker: marker, Layout: l}
}

// writeRows writes rows to a new file under a temp dir and returns its path.
func writeRows(t *testing.T, desc Descriptor, rows ...[]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.rec")
	err := WriteFile(path, desc, func(w *Writer) error {
		for _, r := range rows {
			if err := w.Append(r...); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return path
}

// appendRaw appends bytes to the end of path, simulating a torn write.
func appendRaw(t *testing.T, path string, b []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.Write(b)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	st, err := os.Stat(path)
	require.NoError(t, err)
	return st.Size()
}
