package cptv

import (
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/mewkiz/pkg/errutil"
	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/go-cptv/frame"
	"github.com/TheCacophonyProject/go-cptv/internal/fields"
	"github.com/TheCacophonyProject/go-cptv/meta"
)

// An Encoder writes a gzip-enveloped CPTV version 2 stream.
type Encoder struct {
	zw   *gzip.Writer
	hdr  *meta.Header
	prev *frame.Frame
	n    int
}

// NewEncoder writes the magic bytes, version and clip header record to
// w and returns an encoder ready for frames. The caller must Close the
// encoder to flush the gzip envelope; the underlying writer is left
// open.
func NewEncoder(w io.Writer, hdr *meta.Header) (*Encoder, error) {
	if hdr.Width == 0 || hdr.Height == 0 {
		return nil, errors.Errorf("cptv: invalid frame dimensions %dx%d", hdr.Width, hdr.Height)
	}
	enc := &Encoder{
		zw:  gzip.NewWriter(w),
		hdr: hdr,
	}
	if err := enc.writeHeader(); err != nil {
		return nil, errutil.Err(err)
	}
	return enc, nil
}

func (enc *Encoder) writeHeader() error {
	hdr := enc.hdr
	w := new(fields.Writer)
	w.U64(meta.FieldTimestamp, hdr.Timestamp)
	w.U32(meta.FieldWidth, hdr.Width)
	w.U32(meta.FieldHeight, hdr.Height)
	compression := hdr.Compression
	if compression == 0 {
		// The single defined scheme: snaked second-order residuals in a
		// gzip envelope.
		compression = 1
	}
	w.U8(meta.FieldCompression, compression)
	if err := w.String(meta.FieldDeviceName, hdr.DeviceName); err != nil {
		return err
	}
	if hdr.FPS != nil {
		w.U8(meta.FieldFPS, *hdr.FPS)
	}
	if hdr.Brand != nil {
		if err := w.String(meta.FieldBrand, *hdr.Brand); err != nil {
			return err
		}
	}
	if hdr.Model != nil {
		if err := w.String(meta.FieldModel, *hdr.Model); err != nil {
			return err
		}
	}
	if hdr.DeviceID != nil {
		w.U32(meta.FieldDeviceID, *hdr.DeviceID)
	}
	if hdr.Serial != nil {
		w.U32(meta.FieldSerial, *hdr.Serial)
	}
	if hdr.Firmware != nil {
		if err := w.String(meta.FieldFirmware, *hdr.Firmware); err != nil {
			return err
		}
	}
	if hdr.MotionConfig != nil {
		if err := w.String(meta.FieldMotionConfig, *hdr.MotionConfig); err != nil {
			return err
		}
	}
	if hdr.PreviewSecs != nil {
		w.U8(meta.FieldPreviewSecs, *hdr.PreviewSecs)
	}
	if hdr.Latitude != nil {
		w.F32(meta.FieldLatitude, *hdr.Latitude)
	}
	if hdr.Longitude != nil {
		w.F32(meta.FieldLongitude, *hdr.Longitude)
	}
	if hdr.LocTimestamp != nil {
		w.U64(meta.FieldLocTimestamp, *hdr.LocTimestamp)
	}
	if hdr.Altitude != nil {
		w.F32(meta.FieldAltitude, *hdr.Altitude)
	}
	if hdr.Accuracy != nil {
		w.F32(meta.FieldAccuracy, *hdr.Accuracy)
	}
	if hdr.HasBackgroundFrame {
		w.Bool(meta.FieldBackgroundFrame, true)
	}

	buf := make([]byte, 0, len(Magic)+3+len(w.Bytes()))
	buf = append(buf, Magic...)
	buf = append(buf, Version2)
	buf = append(buf, meta.RecordTag, uint8(w.Count()))
	buf = append(buf, w.Bytes()...)
	_, err := enc.zw.Write(buf)
	return err
}

// WriteFrame encodes one frame against the previously written frame
// and appends its record to the stream. The frame's BitsPerPixel and
// Size are chosen by the encoder; any values on f are ignored.
//
// A background frame must be the first frame written and is only valid
// when the header declares HasBackgroundFrame.
func (enc *Encoder) WriteFrame(f *frame.Frame) error {
	if f.Image == nil ||
		f.Image.Width() != int(enc.hdr.Width) || f.Image.Height() != int(enc.hdr.Height) {
		return errors.Errorf("cptv: frame dimensions do not match header %dx%d", enc.hdr.Width, enc.hdr.Height)
	}
	if f.Background {
		if enc.n > 0 {
			return errors.New("cptv: background frame must be the first frame of the clip")
		}
		if !enc.hdr.HasBackgroundFrame {
			return errors.New("cptv: header does not declare a background frame")
		}
	}

	var prevImage *frame.Data
	if enc.prev != nil {
		prevImage = enc.prev.Image
	}
	payload, bitsPerPixel, err := frame.Encode(f.Image, prevImage)
	if err != nil {
		return errutil.Err(err)
	}

	w := new(fields.Writer)
	w.U32(frame.FieldTimeOn, f.TimeOn)
	w.U8(frame.FieldBitsPerPixel, bitsPerPixel)
	w.U32(frame.FieldFrameSize, uint32(len(payload)))
	if f.LastFFCTime != nil {
		w.U32(frame.FieldLastFFCTime, *f.LastFFCTime)
	}
	if f.TempC != nil {
		w.F32(frame.FieldFrameTempC, *f.TempC)
	}
	if f.LastFFCTempC != nil {
		w.F32(frame.FieldLastFFCTempC, *f.LastFFCTempC)
	}
	if f.Background {
		w.Bool(frame.FieldBackgroundFrame, true)
	}

	buf := make([]byte, 0, 2+len(w.Bytes())+len(payload))
	buf = append(buf, frame.RecordTag, uint8(w.Count()))
	buf = append(buf, w.Bytes()...)
	buf = append(buf, payload...)
	if _, err := enc.zw.Write(buf); err != nil {
		return errutil.Err(err)
	}
	enc.prev = f
	enc.n++
	return nil
}

// Close flushes the gzip envelope. The underlying writer is not
// closed.
func (enc *Encoder) Close() error {
	return enc.zw.Close()
}
