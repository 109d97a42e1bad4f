package record

import (
	"errors"
	"fmt"
	"math"

	"github.com/tuannm99/novarec/internal/alias/bx"
)

// Row is one decoded record: int32, float32 or bool per column, in order.
type Row []any

// fieldCoder packs and unpacks one column. Coders are chosen once per Layout
// so a mismatched value is rejected before any byte is written.
type fieldCoder interface {
	size() int
	encode(dst []byte, v any) error
	decode(src []byte) any
}

type coderInteger struct{}

func (coderInteger) size() int { return 4 }
func (coderInteger) encode(dst []byte, v any) error {
	x, ok := asInt32(v)
	if !ok {
		return errNotConvertible
	}
	bx.PutI32NE(dst, x)
	return nil
}
func (coderInteger) decode(src []byte) any { return bx.I32NE(src) }

type coderFloat struct{}

func (coderFloat) size() int { return 4 }
func (coderFloat) encode(dst []byte, v any) error {
	x, ok := asFloat32(v)
	if !ok {
		return errNotConvertible
	}
	bx.PutF32NE(dst, x)
	return nil
}
func (coderFloat) decode(src []byte) any { return bx.F32NE(src) }

type coderBool struct{}

func (coderBool) size() int { return 1 }
func (coderBool) encode(dst []byte, v any) error {
	x, ok := v.(bool)
	if !ok {
		return errNotConvertible
	}
	bx.PutBool(dst, x)
	return nil
}
func (coderBool) decode(src []byte) any { return bx.Bool(src) }

var errNotConvertible = errors.New("record: value not convertible")

func coderFor(t ColumnType) fieldCoder {
	switch t {
	case ColInteger:
		return coderInteger{}
	case ColFloat:
		return coderFloat{}
	case ColBool:
		return coderBool{}
	}
	return nil
}

// Codec encodes and decodes rows for a single Layout.
type Codec struct {
	layout Layout
	types  []ColumnType
	fields []fieldCoder
	offs   []int
}

func NewCodec(l Layout) *Codec {
	c := &Codec{layout: l, types: l.Types()}
	off := 0
	for _, t := range c.types {
		fc := coderFor(t)
		c.fields = append(c.fields, fc)
		c.offs = append(c.offs, off)
		off += fc.size()
	}
	return c
}

func (c *Codec) Layout() Layout { return c.layout }

// Encode packs values into dst (reused when it has capacity) and returns a
// slice of exactly RowSize bytes.
func (c *Codec) Encode(dst []byte, values ...any) ([]byte, error) {
	if len(values) != len(c.fields) {
		return nil, &EncodingError{
			Column: -1,
			Reason: fmt.Sprintf("got %d values, layout %q has %d columns", len(values), c.layout.codes, len(c.fields)),
		}
	}

	n := c.layout.rowSize
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	for i, fc := range c.fields {
		off := c.offs[i]
		if err := fc.encode(dst[off:off+fc.size()], values[i]); err != nil {
			return nil, &EncodingError{
				Column: i,
				Value:  values[i],
				Reason: fmt.Sprintf("%T is not a valid %s", values[i], c.types[i]),
			}
		}
	}
	return dst, nil
}

// Decode unpacks exactly one row. src must be RowSize bytes long.
func (c *Codec) Decode(src []byte) (Row, error) {
	if len(src) != c.layout.rowSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadBuffer, len(src), c.layout.rowSize)
	}
	out := make(Row, len(c.fields))
	for i, fc := range c.fields {
		off := c.offs[i]
		out[i] = fc.decode(src[off : off+fc.size()])
	}
	return out, nil
}

// ---- small helpers to accept multiple numeric types on encode ----
func asInt32(v any) (int32, bool) {
	switch x := v.(type) {
	case int32:
		return x, true
	case int8:
		return int32(x), true
	case int16:
		return int32(x), true
	case uint8:
		return int32(x), true
	case uint16:
		return int32(x), true
	case int:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return int32(x), true
		}
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return int32(x), true
		}
	case uint32:
		if x <= math.MaxInt32 {
			return int32(x), true
		}
	case uint:
		if x <= math.MaxInt32 {
			return int32(x), true
		}
	case uint64:
		if x <= math.MaxInt32 {
			return int32(x), true
		}
	}
	return 0, false
}

// asFloat32 also takes integers, a float column can hold whole numbers.
// Finite float64 values outside the float32 range are rejected.
func asFloat32(v any) (float32, bool) {
	switch x := v.(type) {
	case float32:
		return x, true
	case float64:
		if !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) > math.MaxFloat32 {
			return 0, false
		}
		return float32(x), true
	case int:
		return float32(x), true
	case int8:
		return float32(x), true
	case int16:
		return float32(x), true
	case int32:
		return float32(x), true
	case int64:
		return float32(x), true
	case uint:
		return float32(x), true
	case uint8:
		return float32(x), true
	case uint16:
		return float32(x), true
	case uint32:
		return float32(x), true
	case uint64:
		return float32(x), true
	}
	return 0, false
}
