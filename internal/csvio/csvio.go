// Package csvio converts between CSV text and record rows.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/WinPooh32/fixed"
	"github.com/hashicorp/go-multierror"

	"github.com/tuannm99/novarec/internal/record"
)

type Reader struct {
	r     *csv.Reader
	types []record.ColumnType
	line  int
}

// NewReader reads CSV records with one field per layout column. When
// skipHeader is set the first record is discarded.
func NewReader(r io.Reader, l record.Layout, skipHeader bool) *Reader {
	rcsv := csv.NewReader(r)
	rcsv.Comma = ','
	rcsv.ReuseRecord = true
	rcsv.FieldsPerRecord = -1

	cr := &Reader{r: rcsv, types: l.Types()}
	if skipHeader {
		cr.line = -1
	}
	return cr
}

// Read returns the values of the next record, or io.EOF.
func (cr *Reader) Read() ([]any, error) {
	for {
		fields, err := cr.r.Read()
		if err == io.EOF {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		cr.line++
		if cr.line == 0 {
			continue
		}
		return cr.parse(fields)
	}
}

func (cr *Reader) parse(fields []string) ([]any, error) {
	if len(fields) != len(cr.types) {
		return nil, fmt.Errorf("record %d: wrong number of fields %d, expected %d", cr.line, len(fields), len(cr.types))
	}

	var merr *multierror.Error
	values := make([]any, len(fields))
	for i, t := range cr.types {
		v, err := ParseValue(t, fields[i])
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("field %d: %w", i, err))
			continue
		}
		values[i] = v
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("record %d: %w", cr.line, err)
	}
	return values, nil
}

// ParseValue parses one CSV field for a column type. Plain decimals such as
// prices go through fixed point; anything else (exponents, inf, long
// fractions) through strconv.
func ParseValue(t record.ColumnType, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t {
	case record.ColInteger:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	case record.ColFloat:
		if plainDecimal(s) {
			d, err := fixed.NewSErr(s)
			if err != nil {
				return nil, err
			}
			return float32(d.Float()), nil
		}
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case record.ColBool:
		return strconv.ParseBool(s)
	}
	return nil, fmt.Errorf("%w: %s", record.ErrUnknownType, t)
}

// plainDecimal reports whether s is [-]digits[.digits] and fits
// fixed.Fixed without losing digits.
func plainDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return false
	}
	if len(whole) > 10 || len(frac) > 7 {
		return false
	}
	for _, part := range []string{whole, frac} {
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return false
			}
		}
	}
	return true
}

// FormatValue is the inverse of ParseValue.
func FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	return "", fmt.Errorf("csvio: cannot format %T", v)
}

type Writer struct {
	w      *csv.Writer
	fields []string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// WriteHeader writes the column names as the first record.
func (cw *Writer) WriteHeader(cols []record.Column) error {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return cw.w.Write(names)
}

func (cw *Writer) Write(row record.Row) error {
	cw.fields = cw.fields[:0]
	for _, v := range row {
		s, err := FormatValue(v)
		if err != nil {
			return err
		}
		cw.fields = append(cw.fields, s)
	}
	return cw.w.Write(cw.fields)
}

func (cw *Writer) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

// Appender is the write side of a record file session.
type Appender interface {
	Append(values ...any) error
}

// Import appends every CSV record from src and returns the number of rows.
func Import(src io.Reader, dst Appender, l record.Layout, skipHeader bool) (int64, error) {
	cr := NewReader(src, l, skipHeader)
	var n int64
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := dst.Append(values...); err != nil {
			return n, fmt.Errorf("record %d: %w", cr.line, err)
		}
		n++
	}
}

// Export writes every row of rows and flushes, returning the number written.
func Export(rows iter.Seq2[record.Row, error], cw *Writer) (int64, error) {
	var n int64
	for row, err := range rows {
		if err != nil {
			return n, err
		}
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("row %d: %w", n, err)
		}
		n++
	}
	return n, cw.Flush()
}
