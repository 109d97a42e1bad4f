package recfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tuannm99/novarec/internal/alias/util"
	"github.com/tuannm99/novarec/internal/record"
	"github.com/tuannm99/novarec/internal/storage"
)

// Writer is an append-only session over one record file.
type Writer struct {
	path  string
	desc  Descriptor
	codec *record.Codec

	f    *os.File
	buf  []byte
	rows int64
	// err is set by a failed write; the session refuses further rows.
	err error
}

func NewWriter(path string, desc Descriptor) *Writer {
	return &Writer{
		path:  path,
		desc:  desc,
		codec: record.NewCodec(desc.Layout),
		buf:   make([]byte, desc.Layout.RowSize()),
	}
}

// Create truncates path and writes the header.
func Create(path string, desc Descriptor) (*Writer, error) {
	w := NewWriter(path, desc)
	if err := w.Open(); err != nil {
		return nil, err
	}
	return w, nil
}

// WriteFile runs fn inside a writer session; the file is closed on every
// exit path and the first error wins.
func WriteFile(path string, desc Descriptor, fn func(w *Writer) error) (err error) {
	w, err := Create(path, desc)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(w)
}

// Open creates or truncates the file and writes the header once. The
// descriptor is validated first so a bad marker never truncates an existing file.
func (w *Writer) Open() error {
	if w.f != nil {
		return ErrAlreadyOpen
	}
	if err := w.desc.Validate(); err != nil {
		return err
	}

	f, err := storage.FileSetOf(w.path).Create()
	if err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}
	if err := WriteHeader(f, w.desc.header()); err != nil {
		util.CloseFileFunc(f)
		return err
	}

	w.f = f
	w.rows, w.err = 0, nil
	slog.Debug("recfile: writer open", "path", w.path, "marker", w.desc.Marker, "layout", w.desc.Layout.TypeCodes())
	return nil
}

// Append packs values per the layout and writes exactly one row. Nothing is
// written when the values do not match the layout. After a failed write
// every later Append returns that error.
func (w *Writer) Append(values ...any) error {
	if w.f == nil {
		return ErrNotOpen
	}
	if w.err != nil {
		return w.err
	}
	buf, err := w.codec.Encode(w.buf, values...)
	if err != nil {
		return err
	}
	if err := writeRow(w.f, buf); err != nil {
		w.err = fmt.Errorf("append row %d: %w", w.rows, err)
		return w.err
	}
	w.rows++
	return nil
}

// Rows returns the number of rows appended in this session.
func (w *Writer) Rows() int64 { return w.rows }

func (w *Writer) Descriptor() Descriptor { return w.desc }

func (w *Writer) Path() string { return w.path }

// Close releases the file and reports a failed write of the session, if
// any. Closing a closed writer is a no-op.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	werr := w.err
	w.f, w.err = nil, nil
	slog.Debug("recfile: writer closed", "path", w.path, "rows", w.rows)
	if werr != nil {
		return werr
	}
	if err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}

// writeRow writes one encoded row; a short write is an error.
func writeRow(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	return err
}
