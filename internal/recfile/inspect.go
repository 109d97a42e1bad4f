package recfile

import (
	"bufio"
	"fmt"

	"github.com/tuannm99/novarec/internal/alias/util"
	"github.com/tuannm99/novarec/internal/record"
	"github.com/tuannm99/novarec/internal/storage"
)

// Inspect reads the header of path without an expected descriptor and
// returns what the file declares about itself.
func Inspect(path string) (Descriptor, error) {
	f, err := storage.FileSetOf(path).Open()
	if err != nil {
		return Descriptor{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer util.CloseFileFunc(f)

	size, err := storage.FileSize(f)
	if err != nil {
		return Descriptor{}, fmt.Errorf("stat %s: %w", path, err)
	}

	h, err := ReadHeader(bufio.NewReaderSize(f, FixedHeaderLen+64))
	if err != nil {
		return Descriptor{}, err
	}
	layout, err := record.ParseLayout(h.TypeCodes)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	if int(h.RowSize) != layout.RowSize() {
		return Descriptor{}, &RowSizeMismatchError{Found: h.RowSize, Expected: layout.RowSize()}
	}

	return Descriptor{Marker: h.Marker, Layout: layout}.withCounts(h, size), nil
}
