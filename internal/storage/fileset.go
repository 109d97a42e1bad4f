package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	FileMode0644 = 0o644 // rw-r--r--
	FileMode0755 = 0o755 // rwxr-xr-x

	// Extension is the suffix WithBase gives derived file names.
	Extension = ".rec"
)

// LocalFileSet represents a local directory + base file name of one record file.
type LocalFileSet struct {
	Dir  string
	Base string
}

// FileSetOf splits a path into a LocalFileSet.
func FileSetOf(path string) LocalFileSet {
	return LocalFileSet{Dir: filepath.Dir(path), Base: filepath.Base(path)}
}

func (lfs LocalFileSet) Path() string {
	return filepath.Join(lfs.Dir, lfs.Base)
}

// Create creates or truncates the file for writing, making Dir if needed.
func (lfs LocalFileSet) Create() (*os.File, error) { return CreateFile(lfs.Path()) }

// Open opens the file read-only.
func (lfs LocalFileSet) Open() (*os.File, error) { return os.Open(lfs.Path()) }

// WithBase returns a file set in the same directory with another base name.
// Any extension on base is replaced by Extension.
func (lfs LocalFileSet) WithBase(base string) LocalFileSet {
	base = filepath.Base(base)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return LocalFileSet{Dir: lfs.Dir, Base: base + Extension}
}

// CreateFile creates or truncates path for binary output, creating the
// parent directory.
func CreateFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, FileMode0755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode0644)
}

// FileSize returns the current size of f.
func FileSize(f *os.File) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}
