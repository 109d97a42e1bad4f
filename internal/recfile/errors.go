package recfile

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novarec/internal/record"
)

var (
	// ErrEncoding covers both bad row values and a bad marker on write.
	ErrEncoding        = record.ErrEncoding
	ErrFormatMismatch  = errors.New("recfile: format mismatch")
	ErrRowSizeMismatch = errors.New("recfile: row size mismatch")
	ErrLayoutMismatch  = errors.New("recfile: layout mismatch")
	ErrTruncatedRow    = errors.New("recfile: truncated row")
	ErrTruncatedFile   = errors.New("recfile: truncated file")
	ErrShortHeader     = errors.New("recfile: short header")
	ErrCorruptHeader   = errors.New("recfile: corrupt header")
	ErrEmptyLayout     = errors.New("recfile: layout has no columns")
	ErrNotOpen         = errors.New("recfile: session not open")
	ErrAlreadyOpen     = errors.New("recfile: session already open")
)

// MarkerError is returned when a marker cannot be written as 8 ASCII bytes.
type MarkerError struct {
	Marker string
	Reason string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("recfile: marker %q: %s", e.Marker, e.Reason)
}

func (e *MarkerError) Unwrap() error { return ErrEncoding }

// FormatMismatchError names the marker actually found in the file.
type FormatMismatchError struct {
	Found    string
	Expected string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("recfile: not a %q file: found marker %q", e.Expected, e.Found)
}

func (e *FormatMismatchError) Unwrap() error { return ErrFormatMismatch }

type RowSizeMismatchError struct {
	Found    int32
	Expected int
}

func (e *RowSizeMismatchError) Error() string {
	return fmt.Sprintf("recfile: invalid row size %d, expected %d", e.Found, e.Expected)
}

func (e *RowSizeMismatchError) Unwrap() error { return ErrRowSizeMismatch }

type LayoutMismatchError struct {
	Found    string
	Expected string
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("recfile: invalid row format %q, expected %q", e.Found, e.Expected)
}

func (e *LayoutMismatchError) Unwrap() error { return ErrLayoutMismatch }

// TruncatedRowError is returned when the stream ends inside a row.
type TruncatedRowError struct {
	Row  int64 // zero based index of the partial row
	Got  int
	Want int
}

func (e *TruncatedRowError) Error() string {
	return fmt.Sprintf("recfile: row %d truncated: got %d of %d bytes", e.Row, e.Got, e.Want)
}

func (e *TruncatedRowError) Unwrap() error { return ErrTruncatedRow }

// TruncatedFileError is returned by a strict open when the body is not a
// whole number of rows.
type TruncatedFileError struct {
	Path          string
	Rows          int64
	TrailingBytes int64
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("recfile: %s: %d trailing bytes after %d whole rows", e.Path, e.TrailingBytes, e.Rows)
}

func (e *TruncatedFileError) Unwrap() error { return ErrTruncatedFile }
