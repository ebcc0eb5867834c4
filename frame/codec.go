package frame

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/go-cptv/internal/bits"
)

// Residual payload layout (pseudo code):
//
//	type PAYLOAD struct {
//	   first     int32 // little-endian, raw
//	   remaining [n-1]intW // bit-packed, W = bits per pixel
//	}
//
// Pixels are visited in snaking order: left to right on even rows,
// right to left on odd rows, so the last pixel of one row neighbours
// the first pixel of the next. Each value is the second-order
// difference: the change between frames, differenced again along the
// scan.

// snake maps a scan index to its (row, column) position.
func snake(i, width int) (y, x int) {
	y = i / width
	x = i % width
	if y&1 == 1 {
		x = width - x - 1
	}
	return y, x
}

// decodeImage reconstructs dst from a packed residual payload. prev is
// nil when no previous frame exists; the accumulated delta is then the
// pixel value itself.
func decodeImage(payload []byte, bitsPerPixel uint8, prev, dst *Data) error {
	width, height := dst.Width(), dst.Height()
	if len(payload) < 4 {
		return errors.New("cptv: residual payload shorter than first residual")
	}
	cum := int32(binary.LittleEndian.Uint32(payload[:4]))

	px := cum
	if prev != nil {
		px += int32(prev.At(0, 0))
	}
	if px < 0 || px > 65535 {
		return PixelRangeError{Y: 0, X: 0, Value: px}
	}
	dst.Set(0, 0, uint16(px))

	u := bits.NewUnpacker(payload[4:], bitsPerPixel)
	for i := 1; i < width*height; i++ {
		d, ok := u.Next()
		if !ok {
			return errors.New("cptv: residual payload ends mid-element")
		}
		cum += d
		y, x := snake(i, width)
		px := cum
		if prev != nil {
			px += int32(prev.At(y, x))
		}
		if px < 0 || px > 65535 {
			return PixelRangeError{Y: y, X: x, Value: px}
		}
		dst.Set(y, x, uint16(px))
	}
	return nil
}

// Encode computes the residual payload for img given the previously
// encoded frame, choosing 8 or 16 bits for the packed residuals from
// the bit length of their largest magnitude plus a sign bit. prev is nil for the first frame of a clip with no
// background frame.
//
// The first residual is emitted raw as a little-endian int32 since it
// carries the full dynamic range; an empty packed set (1×1 frames)
// defaults to 16 bits.
func Encode(img, prev *Data) (payload []byte, bitsPerPixel uint8, err error) {
	width, height := img.Width(), img.Height()
	n := width * height
	residuals := make([]int32, n)
	var prevDelta int32
	for i := 0; i < n; i++ {
		y, x := snake(i, width)
		delta := int32(img.At(y, x))
		if prev != nil {
			delta -= int32(prev.At(y, x))
		}
		residuals[i] = delta - prevDelta
		prevDelta = delta
	}

	bitsPerPixel = 16
	if len(residuals) > 1 {
		var maxAbs int32
		for _, r := range residuals[1:] {
			if r < 0 {
				r = -r
			}
			if r > maxAbs {
				maxAbs = r
			}
		}
		switch need := bits.Len(maxAbs); {
		case need <= 8:
			bitsPerPixel = 8
		case need <= 16:
			bitsPerPixel = 16
		default:
			// Needs more than 16 bits of second-order difference;
			// unreachable for the 14-bit microbolometer data the format
			// carries.
			return nil, 0, errors.Errorf("cptv: residual magnitude %d exceeds 16 bits", maxAbs)
		}
	}

	packed, err := bits.Pack(residuals[1:], bitsPerPixel)
	if err != nil {
		return nil, 0, err
	}
	payload = make([]byte, 4, 4+len(packed))
	binary.LittleEndian.PutUint32(payload, uint32(residuals[0]))
	payload = append(payload, packed...)
	return payload, bitsPerPixel, nil
}
