// stand for bytes helper
package bx

import (
	"encoding/binary"
	"math"
)

var (
	// LE is used for header length fields, regardless of platform.
	LE = binary.LittleEndian
	// NE is used for row payloads.
	NE = binary.NativeEndian
)

// --- LE: header fields ---
func U32(b []byte) uint32       { return LE.Uint32(b) }
func I32(b []byte) int32        { return int32(U32(b)) }
func PutU32(b []byte, v uint32) { LE.PutUint32(b, v) }
func PutI32(b []byte, v int32)  { PutU32(b, uint32(v)) }

func I32At(b []byte, off int) int32       { return I32(b[off:]) }
func PutI32At(b []byte, off int, v int32) { PutI32(b[off:], v) }

// --- NE: row payload fields ---
func I32NE(b []byte) int32         { return int32(NE.Uint32(b)) }
func PutI32NE(b []byte, v int32)   { NE.PutUint32(b, uint32(v)) }
func F32NE(b []byte) float32       { return math.Float32frombits(NE.Uint32(b)) }
func PutF32NE(b []byte, v float32) { NE.PutUint32(b, math.Float32bits(v)) }

// Bool decodes a one byte boolean, any nonzero byte is true.
func Bool(b []byte) bool { return b[0] != 0 }

func PutBool(b []byte, v bool) {
	if v {
		b[0] = 1
		return
	}
	b[0] = 0
}
