// Package frame contains functions for parsing and reconstructing
// CPTV frame records.
package frame

import (
	"log"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/go-cptv/internal/fields"
)

// Field codes valid in frame records.
const (
	FieldTimeOn          byte = 't' // u32, milliseconds since device power-on
	FieldBitsPerPixel    byte = 'w' // u8, 8 or 16
	FieldFrameSize       byte = 'f' // u32, packed residual payload length
	FieldLastFFCTime     byte = 'c' // u32, time-on of the last flat-field calibration
	FieldFrameTempC      byte = 'a' // f32
	FieldLastFFCTempC    byte = 'b' // f32
	FieldBackgroundFrame byte = 'g' // bool-as-u8
)

// RecordTag introduces a frame record.
const RecordTag = 'F'

// A Frame is one image record of a clip. Frames are emitted by the
// decoder fully reconstructed and are not mutated afterwards.
type Frame struct {
	// Milliseconds since device power-on.
	TimeOn uint32
	// Width of each packed residual, 8 or 16.
	BitsPerPixel uint8
	// Length in bytes of the packed residual payload.
	Size uint32

	// Time-on of the most recent flat-field calibration, if the camera
	// reported one.
	LastFFCTime  *uint32
	LastFFCTempC *float32
	TempC        *float32

	// Background frames precede the first visible frame and serve only
	// as prediction context.
	Background bool

	Image *Data
}

// Parse reads the frame record at the start of data and reconstructs
// its pixel grid against prev. prev is nil only for the first frame of
// a clip with no background frame; then the previous frame is treated
// as all zeros.
//
// Frame record format (pseudo code):
//
//	type FRAME struct {
//	   tag        byte  // 'F'
//	   num_fields uint8
//	   fields     [num_fields]FIELD
//	   payload    [frame_size]byte
//	}
//
// Unknown field codes are skipped. A NeedError return means data holds
// a truncated record; the caller retries with more input and no state
// has been consumed.
func Parse(data []byte, width, height int, prev *Frame) (f *Frame, rest []byte, err error) {
	tag, rest, err := fields.Take(data, 2)
	if err != nil {
		return nil, nil, err
	}
	if tag[0] != RecordTag {
		return nil, nil, errors.Errorf("cptv: expected frame record %q, got %q", RecordTag, tag[0])
	}
	numFields := int(tag[1])

	f = &Frame{Image: NewData(width, height)}
	for i := 0; i < numFields; i++ {
		var fld fields.Field
		fld, rest, err = fields.Next(rest)
		if err != nil {
			return nil, nil, err
		}
		if err := f.setField(fld); err != nil {
			return nil, nil, err
		}
	}

	if f.BitsPerPixel != 8 && f.BitsPerPixel != 16 {
		return nil, nil, InvalidBitWidthError{Bits: f.BitsPerPixel}
	}
	if want := payloadLen(width*height, f.BitsPerPixel); f.Size != want {
		return nil, nil, SizeMismatchError{Declared: f.Size, Expected: want}
	}

	payload, rest, err := fields.Take(rest, int(f.Size))
	if err != nil {
		return nil, nil, err
	}
	var prevData *Data
	if prev != nil {
		prevData = prev.Image
	}
	if err := decodeImage(payload, f.BitsPerPixel, prevData, f.Image); err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

func (f *Frame) setField(fld fields.Field) error {
	var err error
	switch fld.Code {
	case FieldTimeOn:
		f.TimeOn, err = fld.U32()
	case FieldBitsPerPixel:
		f.BitsPerPixel, err = fld.U8()
	case FieldFrameSize:
		f.Size, err = fld.U32()
	case FieldLastFFCTime:
		var v uint32
		if v, err = fld.U32(); err == nil {
			f.LastFFCTime = &v
		}
	case FieldFrameTempC:
		var v float32
		if v, err = fld.F32(); err == nil {
			f.TempC = &v
		}
	case FieldLastFFCTempC:
		var v float32
		if v, err = fld.F32(); err == nil {
			f.LastFFCTempC = &v
		}
	case FieldBackgroundFrame:
		f.Background, err = fld.Bool()
	default:
		log.Printf("cptv: skipping unknown frame field %q (%d bytes)", fld.Code, len(fld.Value))
	}
	return err
}

// payloadLen returns the residual payload length for n pixels: a raw
// 32-bit first residual plus n-1 bit-packed residuals.
func payloadLen(n int, bitsPerPixel uint8) uint32 {
	return uint32(4 + ((n-1)*int(bitsPerPixel)+7)/8)
}
