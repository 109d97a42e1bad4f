// Package candle stores OHLCV price candles as record files.
package candle

import (
	"fmt"
	"io"

	"github.com/tuannm99/novarec/internal/recfile"
	"github.com/tuannm99/novarec/internal/record"
)

const (
	Kind   = "ohlc"
	Marker = "OHLC"
)

// Schema is time (unix seconds) followed by open, high, low, close, volume.
var Schema = record.MustSchema(
	record.Column{Name: "time", Type: record.ColInteger},
	record.Column{Name: "open", Type: record.ColFloat},
	record.Column{Name: "high", Type: record.ColFloat},
	record.Column{Name: "low", Type: record.ColFloat},
	record.Column{Name: "close", Type: record.ColFloat},
	record.Column{Name: "volume", Type: record.ColFloat},
)

func Descriptor() recfile.Descriptor {
	return recfile.NewDescriptor(Marker, Schema)
}

type OHLCV struct {
	Time int32
	Open,
	High,
	Low,
	Close,
	Volume float32
}

func (c OHLCV) values() []any {
	return []any{c.Time, c.Open, c.High, c.Low, c.Close, c.Volume}
}

// FromRow converts a decoded row of the candle layout.
func FromRow(row record.Row) (c OHLCV, err error) {
	if len(row) != Schema.NumCols() {
		return c, fmt.Errorf("candle: row has %d fields, expected %d", len(row), Schema.NumCols())
	}
	var ok [6]bool
	c.Time, ok[0] = row[0].(int32)
	c.Open, ok[1] = row[1].(float32)
	c.High, ok[2] = row[2].(float32)
	c.Low, ok[3] = row[3].(float32)
	c.Close, ok[4] = row[4].(float32)
	c.Volume, ok[5] = row[5].(float32)
	for i, good := range ok {
		if !good {
			return c, fmt.Errorf("candle: field %d has type %T", i, row[i])
		}
	}
	return c, nil
}

type Writer interface {
	Write(c OHLCV) (err error)
}

type Reader interface {
	Read() (c OHLCV, err error)
}

type HistoryWriter struct {
	w *recfile.Writer
}

// Create truncates path and starts a candle file.
func Create(path string) (*HistoryWriter, error) {
	w, err := recfile.Create(path, Descriptor())
	if err != nil {
		return nil, err
	}
	return &HistoryWriter{w: w}, nil
}

func (hw *HistoryWriter) Write(c OHLCV) error {
	return hw.w.Append(c.values()...)
}

func (hw *HistoryWriter) Close() error {
	return hw.w.Close()
}

type HistoryReader struct {
	r *recfile.Reader
}

// Open opens a candle file, rejecting files of any other kind.
func Open(path string) (*HistoryReader, error) {
	r, err := recfile.OpenReader(path, Descriptor())
	if err != nil {
		return nil, err
	}
	return &HistoryReader{r: r}, nil
}

// Read returns the next candle, or io.EOF after the last one.
func (hr *HistoryReader) Read() (c OHLCV, err error) {
	row, ok, err := hr.r.ReadOne()
	if err != nil {
		return c, err
	}
	if !ok {
		return c, io.EOF
	}
	return FromRow(row)
}

// Len is the number of whole candles in the file.
func (hr *HistoryReader) Len() int64 {
	return hr.r.Descriptor().RowCount
}

func (hr *HistoryReader) Close() error {
	return hr.r.Close()
}

var (
	_ Writer = (*HistoryWriter)(nil)
	_ Reader = (*HistoryReader)(nil)
)
