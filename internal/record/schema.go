package record

import (
	"fmt"
	"strings"
)

type ColumnType uint8

const (
	ColInteger ColumnType = iota + 1 // 4-byte signed integer
	ColFloat                         // 4-byte IEEE-754 float
	ColBool                          // 1-byte boolean
)

// Code returns the one character type code written into file headers.
func (t ColumnType) Code() byte {
	switch t {
	case ColInteger:
		return 'i'
	case ColFloat:
		return 'f'
	case ColBool:
		return '?'
	default:
		return 0
	}
}

// Size returns the encoded width in bytes.
func (t ColumnType) Size() int {
	switch t {
	case ColInteger, ColFloat:
		return 4
	case ColBool:
		return 1
	default:
		return 0
	}
}

func (t ColumnType) Valid() bool { return t.Size() > 0 }

func (t ColumnType) String() string {
	switch t {
	case ColInteger:
		return "integer"
	case ColFloat:
		return "float"
	case ColBool:
		return "bool"
	default:
		return fmt.Sprintf("ColumnType(%d)", uint8(t))
	}
}

// TypeOfCode maps a header type code back to its ColumnType.
func TypeOfCode(code byte) (ColumnType, bool) {
	switch code {
	case 'i':
		return ColInteger, true
	case 'f':
		return ColFloat, true
	case '?':
		return ColBool, true
	}
	return 0, false
}

// ParseColumnType accepts a type name ("integer", "float", "bool") or its code.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "i":
		return ColInteger, nil
	case "float", "f":
		return ColFloat, nil
	case "bool", "boolean", "?":
		return ColBool, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Column is one typed field of a row. The name is documentation only and is
// never encoded.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is the ordered column list of a row. The Layout is recomputed on
// every mutation so it never goes stale.
type Schema struct {
	cols   []Column
	layout Layout
}

func NewSchema(cols ...Column) (*Schema, error) {
	s := &Schema{}
	for _, c := range cols {
		if err := s.AddColumn(c.Name, c.Type); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is NewSchema for static schemas; it panics on an invalid type.
func MustSchema(cols ...Column) *Schema {
	s, err := NewSchema(cols...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) AddColumn(name string, typ ColumnType) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: column %q has %s", ErrUnknownType, name, typ)
	}
	s.cols = append(s.cols, Column{Name: name, Type: typ})
	s.RecomputeLayout()
	return nil
}

// RecomputeLayout regenerates the layout from the current columns, in order.
func (s *Schema) RecomputeLayout() Layout {
	s.layout = layoutOf(s.cols)
	return s.layout
}

func (s *Schema) Layout() Layout { return s.layout }

func (s *Schema) NumCols() int { return len(s.cols) }

// Columns returns a copy of the column list.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}
