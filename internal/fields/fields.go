// Package fields implements the tagged length/code/value records that
// make up CPTV headers and frame bodies.
//
// Field format (pseudo code):
//
//	type FIELD struct {
//	   length uint8  // byte length of value
//	   code   uint8  // ASCII character identifying the field
//	   value  [length]byte // little-endian
//	}
//
// All parsers are pure functions over byte slices. On success they
// return the unconsumed remainder; when the slice is too short they
// return a NeedError and the caller retries once more bytes are
// available. A parse attempt never consumes input.
package fields

import (
	"encoding/binary"
	"fmt"
	"math"
)

// A NeedError reports that a parse attempt ran out of input. It is not
// a failure; the caller retries the same parse once at least Needed
// more bytes are available.
type NeedError struct {
	// Minimum number of additional bytes required.
	Needed int
}

func (e NeedError) Error() string {
	return fmt.Sprintf("cptv: need %d more bytes", e.Needed)
}

// A MalformedFieldError reports a field whose value length does not
// match the type its code implies.
type MalformedFieldError struct {
	Code byte
	Len  int
	Want int
}

func (e MalformedFieldError) Error() string {
	return fmt.Sprintf("cptv: malformed field %q; value is %d bytes, want %d", e.Code, e.Len, e.Want)
}

// Take splits off the first n bytes of data.
func Take(data []byte, n int) (val, rest []byte, err error) {
	if len(data) < n {
		return nil, nil, NeedError{Needed: n - len(data)}
	}
	return data[:n], data[n:], nil
}

// A Field is one decoded length/code/value record. Value aliases the
// input slice.
type Field struct {
	Code  byte
	Value []byte
}

// Next parses the field at the start of data.
func Next(data []byte) (f Field, rest []byte, err error) {
	hdr, rest, err := Take(data, 2)
	if err != nil {
		return Field{}, nil, err
	}
	length, code := int(hdr[0]), hdr[1]
	val, rest, err := Take(rest, length)
	if err != nil {
		return Field{}, nil, err
	}
	return Field{Code: code, Value: val}, rest, nil
}

// U8 decodes the value as an unsigned 8-bit integer.
func (f Field) U8() (uint8, error) {
	if len(f.Value) != 1 {
		return 0, MalformedFieldError{Code: f.Code, Len: len(f.Value), Want: 1}
	}
	return f.Value[0], nil
}

// U32 decodes the value as a little-endian unsigned 32-bit integer.
func (f Field) U32() (uint32, error) {
	if len(f.Value) != 4 {
		return 0, MalformedFieldError{Code: f.Code, Len: len(f.Value), Want: 4}
	}
	return binary.LittleEndian.Uint32(f.Value), nil
}

// U64 decodes the value as a little-endian unsigned 64-bit integer.
func (f Field) U64() (uint64, error) {
	if len(f.Value) != 8 {
		return 0, MalformedFieldError{Code: f.Code, Len: len(f.Value), Want: 8}
	}
	return binary.LittleEndian.Uint64(f.Value), nil
}

// F32 decodes the value as a little-endian IEEE 754 32-bit float.
func (f Field) F32() (float32, error) {
	if len(f.Value) != 4 {
		return 0, MalformedFieldError{Code: f.Code, Len: len(f.Value), Want: 4}
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(f.Value)), nil
}

// Bool decodes the value as a bool-as-u8.
func (f Field) Bool() (bool, error) {
	v, err := f.U8()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// String decodes the value as UTF-8 text without null termination.
func (f Field) String() string {
	return string(f.Value)
}
