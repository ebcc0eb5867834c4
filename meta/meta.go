// Package meta contains functions for parsing CPTV clip headers.
package meta

import (
	"log"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/go-cptv/internal/fields"
)

// Field codes valid in clip header records. Integer values are
// little-endian on the wire; strings are UTF-8 without null
// termination.
const (
	FieldTimestamp       byte = 'T' // u64, microseconds since the Unix epoch
	FieldWidth           byte = 'X' // u32
	FieldHeight          byte = 'Y' // u32
	FieldCompression     byte = 'C' // u8
	FieldDeviceName      byte = 'D' // string
	FieldFPS             byte = 'Z' // u8
	FieldBrand           byte = 'B' // string
	FieldModel           byte = 'E' // string
	FieldDeviceID        byte = 'I' // u32
	FieldSerial          byte = 'N' // u32
	FieldFirmware        byte = 'V' // string
	FieldMotionConfig    byte = 'M' // string
	FieldPreviewSecs     byte = 'P' // u8
	FieldLatitude        byte = 'L' // f32
	FieldLongitude       byte = 'O' // f32
	FieldLocTimestamp    byte = 'S' // u64
	FieldAltitude        byte = 'A' // f32
	FieldAccuracy        byte = 'U' // f32
	FieldBackgroundFrame byte = 'g' // bool-as-u8, always 1 when present
)

// Reserved codes, emitted only by the experimental version 3 layout:
// 'R' min value, 'W'/'K' max value, 'Q' table of contents, 'J' frame
// count, 'G' frames per iframe, 'H' header sentinel.

// RecordTag introduces a clip header record.
const RecordTag = 'H'

// DefaultFPS is assumed when a header omits the frame rate, as early
// recorders did.
const DefaultFPS = 9

// A Header holds the clip-wide metadata read from the stream header
// record. Optional fields are nil when absent from the stream.
type Header struct {
	// Recording start, microseconds since the Unix epoch.
	Timestamp uint64
	// Pixel dimensions of every frame in the clip.
	Width  uint32
	Height uint32
	// Compression scheme tag. Only one scheme is defined; the value is
	// recorded but not interpreted.
	Compression uint8
	DeviceName  string

	FPS          *uint8
	Brand        *string
	Model        *string
	DeviceID     *uint32
	Serial       *uint32
	Firmware     *string
	MotionConfig *string
	PreviewSecs  *uint8
	Latitude     *float32
	Longitude    *float32
	LocTimestamp *uint64
	Altitude     *float32
	Accuracy     *float32

	// When true, the first frame record is a reference-only background
	// frame and is not part of the visible sequence.
	HasBackgroundFrame bool
}

// FrameRate returns the recorded frame rate, or DefaultFPS when the
// header carries none.
func (h *Header) FrameRate() uint8 {
	if h.FPS != nil {
		return *h.FPS
	}
	return DefaultFPS
}

// Parse reads the clip header record that follows the magic and
// version bytes, returning the unconsumed remainder.
//
// Header record format (pseudo code):
//
//	type HEADER struct {
//	   tag        byte  // 'H'
//	   num_fields uint8
//	   fields     [num_fields]FIELD
//	}
//
// Unknown field codes are skipped so that decoders stay compatible
// with headers written by newer recorders.
func Parse(data []byte) (hdr *Header, rest []byte, err error) {
	tag, rest, err := fields.Take(data, 2)
	if err != nil {
		return nil, nil, err
	}
	if tag[0] != RecordTag {
		return nil, nil, errors.Errorf("cptv: expected header record %q, got %q", RecordTag, tag[0])
	}
	numFields := int(tag[1])

	hdr = new(Header)
	for i := 0; i < numFields; i++ {
		var f fields.Field
		f, rest, err = fields.Next(rest)
		if err != nil {
			return nil, nil, err
		}
		if err := hdr.setField(f); err != nil {
			return nil, nil, err
		}
	}
	return hdr, rest, nil
}

func (h *Header) setField(f fields.Field) error {
	var err error
	switch f.Code {
	case FieldTimestamp:
		h.Timestamp, err = f.U64()
	case FieldWidth:
		h.Width, err = f.U32()
	case FieldHeight:
		h.Height, err = f.U32()
	case FieldCompression:
		h.Compression, err = f.U8()
	case FieldDeviceName:
		h.DeviceName = f.String()
	case FieldFPS:
		h.FPS, err = u8Opt(f)
	case FieldBrand:
		h.Brand = strOpt(f)
	case FieldModel:
		h.Model = strOpt(f)
	case FieldDeviceID:
		h.DeviceID, err = u32Opt(f)
	case FieldSerial:
		h.Serial, err = u32Opt(f)
	case FieldFirmware:
		h.Firmware = strOpt(f)
	case FieldMotionConfig:
		h.MotionConfig = strOpt(f)
	case FieldPreviewSecs:
		h.PreviewSecs, err = u8Opt(f)
	case FieldLatitude:
		h.Latitude, err = f32Opt(f)
	case FieldLongitude:
		h.Longitude, err = f32Opt(f)
	case FieldLocTimestamp:
		h.LocTimestamp, err = u64Opt(f)
	case FieldAltitude:
		h.Altitude, err = f32Opt(f)
	case FieldAccuracy:
		h.Accuracy, err = f32Opt(f)
	case FieldBackgroundFrame:
		h.HasBackgroundFrame, err = f.Bool()
	default:
		log.Printf("cptv: skipping unknown header field %q (%d bytes)", f.Code, len(f.Value))
	}
	return err
}

func u8Opt(f fields.Field) (*uint8, error) {
	v, err := f.U8()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func u32Opt(f fields.Field) (*uint32, error) {
	v, err := f.U32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func u64Opt(f fields.Field) (*uint64, error) {
	v, err := f.U64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func f32Opt(f fields.Field) (*float32, error) {
	v, err := f.F32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func strOpt(f fields.Field) *string {
	s := f.String()
	return &s
}
