package recfile

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/tuannm99/novarec/internal/alias/bx"
)

// On-disk header:
//
//	offset 0   marker     8 bytes, ASCII, space padded on the right
//	offset 8   row_size   int32 little-endian
//	offset 12  code_len   int32 little-endian
//	offset 16  codes      code_len bytes, ASCII
//	offset 16+code_len    rows, row_size bytes each, no delimiters
const (
	MarkerLen      = 8
	FixedHeaderLen = MarkerLen + 4 + 4

	// maxTypeCodes bounds the code string we are willing to allocate for.
	maxTypeCodes = 1 << 16
)

type Header struct {
	Marker    string
	RowSize   int32
	TypeCodes string
}

// Size is the header end offset, where the first row starts.
func (h Header) Size() int64 { return int64(FixedHeaderLen + len(h.TypeCodes)) }

// EncodeMarker pads m with trailing spaces to MarkerLen bytes.
func EncodeMarker(m string) ([MarkerLen]byte, error) {
	var out [MarkerLen]byte
	for i := 0; i < len(m); i++ {
		if m[i] > unicode.MaxASCII {
			return out, &MarkerError{Marker: m, Reason: "contains non-ASCII characters"}
		}
	}
	if len(m) > MarkerLen {
		return out, &MarkerError{Marker: m, Reason: fmt.Sprintf("longer than %d characters", MarkerLen)}
	}
	copy(out[:], m)
	for i := len(m); i < MarkerLen; i++ {
		out[i] = ' '
	}
	return out, nil
}

// MarshalBinary encodes the complete header.
func (h Header) MarshalBinary() ([]byte, error) {
	marker, err := EncodeMarker(h.Marker)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(h.TypeCodes); i++ {
		if h.TypeCodes[i] > unicode.MaxASCII {
			return nil, fmt.Errorf("%w: type codes %q are not ASCII", ErrEncoding, h.TypeCodes)
		}
	}

	buf := make([]byte, h.Size())
	copy(buf, marker[:])
	bx.PutI32At(buf, MarkerLen, h.RowSize)
	bx.PutI32At(buf, MarkerLen+4, int32(len(h.TypeCodes)))
	copy(buf[FixedHeaderLen:], h.TypeCodes)
	return buf, nil
}

// WriteHeader writes h to w in a single Write call.
func WriteHeader(w io.Writer, h Header) error {
	buf, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// ReadHeader reads a header without checking it against any expectation.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	var err error
	if h.Marker, err = readMarker(r); err != nil {
		return h, err
	}
	if h.RowSize, err = readInt32(r, "row size"); err != nil {
		return h, err
	}
	if h.TypeCodes, err = readTypeCodes(r); err != nil {
		return h, err
	}
	return h, nil
}

// readMarker reads the 8 marker bytes and strips the trailing padding.
func readMarker(r io.Reader) (string, error) {
	var b [MarkerLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", shortHeader("marker", err)
	}
	return strings.TrimRightFunc(string(b[:]), unicode.IsSpace), nil
}

func readInt32(r io.Reader, field string) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, shortHeader(field, err)
	}
	return bx.I32(b[:]), nil
}

func readTypeCodes(r io.Reader) (string, error) {
	n, err := readInt32(r, "type code length")
	if err != nil {
		return "", err
	}
	if n < 0 || n > maxTypeCodes {
		return "", fmt.Errorf("%w: type code length %d", ErrCorruptHeader, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", shortHeader("type codes", err)
	}
	return string(b), nil
}

func shortHeader(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrShortHeader, field)
	}
	return fmt.Errorf("read %s: %w", field, err)
}
