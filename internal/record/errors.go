package record

import (
	"errors"
	"fmt"
)

var (
	ErrEncoding    = errors.New("record: encoding error")
	ErrUnknownType = errors.New("record: unknown column type")
	ErrBadBuffer   = errors.New("record: buffer size does not match row size")
)

// EncodingError reports a value that does not fit the layout. Column is -1
// when the failure is about the whole row (arity).
type EncodingError struct {
	Column int
	Value  any
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("record: encode: %s", e.Reason)
	}
	return fmt.Sprintf("record: encode column %d (%#v): %s", e.Column, e.Value, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }
