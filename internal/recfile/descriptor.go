package recfile

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novarec/internal/record"
)

// Descriptor describes one kind of record file: its marker and row layout.
// HeaderSize, RowCount and TrailingBytes are filled in by a reader open and
// are ignored on write.
type Descriptor struct {
	Marker string
	Layout record.Layout

	HeaderSize    int64 // offset of the first row
	RowCount      int64 // whole rows after the header
	TrailingBytes int64 // bytes after the last whole row, nonzero means truncated
}

func NewDescriptor(marker string, s *record.Schema) Descriptor {
	return Descriptor{Marker: marker, Layout: s.Layout()}
}

// Validate checks that the descriptor can be written.
func (d Descriptor) Validate() error {
	if _, err := EncodeMarker(d.Marker); err != nil {
		return err
	}
	if d.Layout.NumCols() == 0 {
		return ErrEmptyLayout
	}
	return nil
}

// Truncated reports whether the file body was not a whole number of rows.
func (d Descriptor) Truncated() bool { return d.TrailingBytes != 0 }

func (d Descriptor) header() Header {
	return Header{
		Marker:    d.Marker,
		RowSize:   int32(d.Layout.RowSize()),
		TypeCodes: d.Layout.TypeCodes(),
	}
}

// markerKey is the marker as it compares after the padding is stripped.
func (d Descriptor) markerKey() string { return strings.TrimRight(d.Marker, " ") }

// withCounts fills the read-side fields from a header and the file size.
func (d Descriptor) withCounts(h Header, fileSize int64) Descriptor {
	d.HeaderSize = h.Size()
	body := fileSize - d.HeaderSize
	if body < 0 {
		body = 0
	}
	if rs := int64(d.Layout.RowSize()); rs > 0 {
		d.RowCount = body / rs
		d.TrailingBytes = body % rs
	}
	return d
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s", d.Marker, d.Layout)
}
