package fields

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// A Writer accumulates the length/code/value fields of one header or
// frame record and tracks the field count for the record header.
type Writer struct {
	buf bytes.Buffer
	n   int
}

func (w *Writer) push(code byte, value []byte) {
	w.buf.WriteByte(byte(len(value)))
	w.buf.WriteByte(code)
	w.buf.Write(value)
	w.n++
}

// U8 appends a one-byte field.
func (w *Writer) U8(code byte, v uint8) {
	w.push(code, []byte{v})
}

// U32 appends a little-endian unsigned 32-bit field.
func (w *Writer) U32(code byte, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.push(code, b[:])
}

// U64 appends a little-endian unsigned 64-bit field.
func (w *Writer) U64(code byte, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.push(code, b[:])
}

// F32 appends a little-endian IEEE 754 32-bit float field.
func (w *Writer) F32(code byte, v float32) {
	w.U32(code, math.Float32bits(v))
}

// Bool appends a bool-as-u8 field.
func (w *Writer) Bool(code byte, v bool) {
	x := uint8(0)
	if v {
		x = 1
	}
	w.U8(code, x)
}

// String appends a UTF-8 text field. The one-byte length prefix caps
// values at 255 bytes.
func (w *Writer) String(code byte, s string) error {
	if len(s) > 255 {
		return errors.Errorf("cptv: field %q value is %d bytes; fields carry at most 255", code, len(s))
	}
	w.push(code, []byte(s))
	return nil
}

// Count returns the number of fields written.
func (w *Writer) Count() int {
	return w.n
}

// Bytes returns the accumulated field bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
