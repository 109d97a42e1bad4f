package record

import (
	"fmt"
	"strings"
)

// Layout is the type-code string of a schema together with the fixed row
// size it implies. It is the only thing the encoder and decoder look at.
type Layout struct {
	codes   string
	rowSize int
}

func layoutOf(cols []Column) Layout {
	var sb strings.Builder
	size := 0
	for _, c := range cols {
		sb.WriteByte(c.Type.Code())
		size += c.Type.Size()
	}
	return Layout{codes: sb.String(), rowSize: size}
}

// ParseLayout rebuilds a Layout from a type-code string such as "iif?".
func ParseLayout(codes string) (Layout, error) {
	size := 0
	for i := 0; i < len(codes); i++ {
		t, ok := TypeOfCode(codes[i])
		if !ok {
			return Layout{}, fmt.Errorf("%w: %q at position %d", ErrUnknownType, codes[i], i)
		}
		size += t.Size()
	}
	return Layout{codes: codes, rowSize: size}, nil
}

func (l Layout) TypeCodes() string { return l.codes }
func (l Layout) RowSize() int      { return l.rowSize }
func (l Layout) NumCols() int      { return len(l.codes) }
func (l Layout) IsZero() bool      { return l.codes == "" }

// Types returns the column types in order.
func (l Layout) Types() []ColumnType {
	out := make([]ColumnType, len(l.codes))
	for i := 0; i < len(l.codes); i++ {
		out[i], _ = TypeOfCode(l.codes[i])
	}
	return out
}

// Schema builds an anonymous schema (columns named c0, c1, ...) for this layout.
func (l Layout) Schema() *Schema {
	s := &Schema{}
	for i, t := range l.Types() {
		s.cols = append(s.cols, Column{Name: fmt.Sprintf("c%d", i), Type: t})
	}
	s.RecomputeLayout()
	return s
}

func (l Layout) String() string {
	return fmt.Sprintf("%q (%d bytes)", l.codes, l.rowSize)
}
