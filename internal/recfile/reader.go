package recfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/tuannm99/novarec/internal/alias/util"
	"github.com/tuannm99/novarec/internal/record"
	"github.com/tuannm99/novarec/internal/storage"
)

const defaultBufferSize = 64 << 10

type Option func(*Reader)

// WithStrictLength makes Open fail with a TruncatedFileError when the body
// is not a whole number of rows. Without it the partial row is only
// reported, as a TruncatedRowError, when iteration reaches it.
func WithStrictLength() Option {
	return func(r *Reader) { r.strict = true }
}

// WithBufferSize sets the read buffer size. It never drops below one row.
func WithBufferSize(n int) Option {
	return func(r *Reader) { r.bufSize = n }
}

// Reader is a forward-only session over one record file.
//
//	Closed -> Open (validated) -> [Reading]* -> Closed
//
// Every Open restarts validation and positions at the first row.
type Reader struct {
	path     string
	expected Descriptor
	codec    *record.Codec
	strict   bool
	bufSize  int

	f    *os.File
	br   *bufio.Reader
	buf  []byte
	desc Descriptor
	next int64
	// err sticks after a failed read until the next Open.
	err error
}

func NewReader(path string, desc Descriptor, opts ...Option) *Reader {
	r := &Reader{
		path:     path,
		expected: desc,
		codec:    record.NewCodec(desc.Layout),
		bufSize:  defaultBufferSize,
		buf:      make([]byte, desc.Layout.RowSize()),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.bufSize < len(r.buf) {
		r.bufSize = len(r.buf)
	}
	return r
}

// OpenReader creates a reader and opens it.
func OpenReader(path string, desc Descriptor, opts ...Option) (*Reader, error) {
	r := NewReader(path, desc, opts...)
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadFile runs fn inside a reader session; the file is closed on every exit path.
func ReadFile(path string, desc Descriptor, fn func(r *Reader) error, opts ...Option) (err error) {
	r, err := OpenReader(path, desc, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(r)
}

// ReadRows reads every row of path into memory.
func ReadRows(path string, desc Descriptor, opts ...Option) ([]record.Row, error) {
	var rows []record.Row
	err := ReadFile(path, desc, func(r *Reader) error {
		for row, err := range r.ReadAll() {
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	}, opts...)
	return rows, err
}

// Open validates the header against the expected descriptor: marker, then
// row size, then type codes. On any failure the file is closed again.
func (r *Reader) Open() (err error) {
	if r.f != nil {
		if err := r.Close(); err != nil {
			return err
		}
	}
	if r.expected.Layout.NumCols() == 0 {
		return ErrEmptyLayout
	}

	f, err := storage.FileSetOf(r.path).Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer func() {
		if err != nil {
			util.CloseFileFunc(f)
		}
	}()

	size, err := storage.FileSize(f)
	if err != nil {
		return fmt.Errorf("stat %s: %w", r.path, err)
	}
	br := bufio.NewReaderSize(f, r.bufSize)

	h, err := r.validateHeader(br)
	if err != nil {
		return err
	}

	desc := r.expected.withCounts(h, size)
	if r.strict && desc.Truncated() {
		return &TruncatedFileError{Path: r.path, Rows: desc.RowCount, TrailingBytes: desc.TrailingBytes}
	}
	if desc.Truncated() {
		slog.Debug("recfile: trailing bytes after last row", "path", r.path, "bytes", desc.TrailingBytes)
	}

	r.f, r.br, r.desc, r.next, r.err = f, br, desc, 0, nil
	slog.Debug("recfile: reader open", "path", r.path, "rows", desc.RowCount)
	return nil
}

func (r *Reader) validateHeader(br io.Reader) (Header, error) {
	var h Header
	var err error
	want := r.expected

	if h.Marker, err = readMarker(br); err != nil {
		return h, err
	}
	if h.Marker != want.markerKey() {
		return h, &FormatMismatchError{Found: h.Marker, Expected: want.markerKey()}
	}

	if h.RowSize, err = readInt32(br, "row size"); err != nil {
		return h, err
	}
	if int(h.RowSize) != want.Layout.RowSize() {
		return h, &RowSizeMismatchError{Found: h.RowSize, Expected: want.Layout.RowSize()}
	}

	if h.TypeCodes, err = readTypeCodes(br); err != nil {
		return h, err
	}
	if h.TypeCodes != want.Layout.TypeCodes() {
		return h, &LayoutMismatchError{Found: h.TypeCodes, Expected: want.Layout.TypeCodes()}
	}
	return h, nil
}

// IsOpen reports whether the session is open.
func (r *Reader) IsOpen() bool { return r.f != nil }

// Descriptor returns the expected descriptor with the read-side fields
// filled in by the last Open.
func (r *Reader) Descriptor() Descriptor {
	if r.f == nil {
		return r.expected
	}
	return r.desc
}

// Position is the index of the next row ReadOne would return.
func (r *Reader) Position() int64 { return r.next }

// ReadOne returns the next row. ok is false, with a nil error, at the end of
// the stream. A stream that ends inside a row yields a TruncatedRowError and
// no partial row. Once a read fails, every later call returns the same error.
func (r *Reader) ReadOne() (row record.Row, ok bool, err error) {
	if r.f == nil {
		return nil, false, ErrNotOpen
	}
	if r.err != nil {
		return nil, false, r.err
	}

	n, err := io.ReadFull(r.br, r.buf)
	switch {
	case errors.Is(err, io.EOF):
		return nil, false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.err = &TruncatedRowError{Row: r.next, Got: n, Want: len(r.buf)}
		return nil, false, r.err
	case err != nil:
		r.err = fmt.Errorf("read row %d: %w", r.next, err)
		return nil, false, r.err
	}

	row, err = r.codec.Decode(r.buf)
	if err != nil {
		r.err = err
		return nil, false, err
	}
	r.next++
	return row, true, nil
}

// ReadAll yields the remaining rows lazily. The sequence is forward only:
// ranging over it again continues from where the previous range stopped.
func (r *Reader) ReadAll() iter.Seq2[record.Row, error] {
	return r.readUpTo(-1)
}

// ReadNext is ReadAll bounded to at most count rows.
func (r *Reader) ReadNext(count int) iter.Seq2[record.Row, error] {
	if count < 0 {
		count = 0
	}
	return r.readUpTo(count)
}

func (r *Reader) readUpTo(limit int) iter.Seq2[record.Row, error] {
	return func(yield func(record.Row, error) bool) {
		if r.f == nil {
			yield(nil, ErrNotOpen)
			return
		}
		for i := 0; limit < 0 || i < limit; i++ {
			row, ok, err := r.ReadOne()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok || !yield(row, nil) {
				return
			}
		}
	}
}

// Close releases the file. Closing a closed reader is a no-op.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f, r.br, r.err = nil, nil, nil
	slog.Debug("recfile: reader closed", "path", r.path, "read", r.next)
	if err != nil {
		return fmt.Errorf("close %s: %w", r.path, err)
	}
	return nil
}
