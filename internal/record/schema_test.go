package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchema_LayoutFollowsColumns(t *testing.T) {
	s := &Schema{}
	require.True(t, s.Layout().IsZero())

	require.NoError(t, s.AddColumn("x", ColInteger))
	require.Equal(t, "i", s.Layout().TypeCodes())
	require.Equal(t, 4, s.Layout().RowSize())

	// layout is recomputed on every AddColumn, no explicit refresh needed
	require.NoError(t, s.AddColumn("y", ColFloat))
	require.Equal(t, "if", s.Layout().TypeCodes())
	require.Equal(t, 8, s.Layout().RowSize())

	require.NoError(t, s.AddColumn("ok", ColBool))
	require.Equal(t, "if?", s.Layout().TypeCodes())
	require.Equal(t, 9, s.Layout().RowSize())
	require.Equal(t, s.Layout(), s.RecomputeLayout())
}

func TestSchema_DuplicateNamesAllowed(t *testing.T) {
	s, err := NewSchema(
		Column{Name: "v", Type: ColFloat},
		Column{Name: "v", Type: ColFloat},
	)
	require.NoError(t, err)
	require.Equal(t, 2, s.NumCols())
	require.Equal(t, "ff", s.Layout().TypeCodes())
}

func TestSchema_RejectsUnknownType(t *testing.T) {
	s := &Schema{}
	err := s.AddColumn("bad", ColumnType(42))
	require.ErrorIs(t, err, ErrUnknownType)
	require.Equal(t, 0, s.NumCols())

	_, err = NewSchema(Column{Name: "zero"})
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestSchema_ColumnsIsACopy(t *testing.T) {
	s := MustSchema(Column{Name: "a", Type: ColInteger})
	cols := s.Columns()
	cols[0].Type = ColBool

	require.Equal(t, ColInteger, s.Columns()[0].Type)
	require.Equal(t, "i", s.Layout().TypeCodes())
}

func TestParseColumnType(t *testing.T) {
	cases := map[string]ColumnType{
		"integer": ColInteger,
		"INT":     ColInteger,
		"i":       ColInteger,
		"float":   ColFloat,
		" f ":     ColFloat,
		"bool":    ColBool,
		"?":       ColBool,
	}
	for in, want := range cases {
		got, err := ParseColumnType(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseColumnType("double")
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("iffff?")
	require.NoError(t, err)
	require.Equal(t, 4+4*4+1, l.RowSize())
	require.Equal(t, 6, l.NumCols())
	require.Equal(t, []ColumnType{ColInteger, ColFloat, ColFloat, ColFloat, ColFloat, ColBool}, l.Types())

	s := l.Schema()
	require.Equal(t, l, s.Layout())
	require.Equal(t, "c0", s.Columns()[0].Name)

	_, err = ParseLayout("id")
	require.ErrorIs(t, err, ErrUnknownType)

	empty, err := ParseLayout("")
	require.NoError(t, err)
	require.True(t, empty.IsZero())
	require.Equal(t, 0, empty.RowSize())
}
