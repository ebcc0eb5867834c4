package bits

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Pack emits each value as a width-bit two's complement integer, most
// significant bit first. Widths 8 and 16 take the byte-aligned path;
// any other width goes through the generic bit accumulator. A trailing
// partial byte is zero padded.
func Pack(vals []int32, width uint8) ([]byte, error) {
	buf := new(bytes.Buffer)
	switch width {
	case 8:
		for _, v := range vals {
			if !Fits(v, 8) {
				return nil, errors.Errorf("bits: value %d does not fit in 8 bits", v)
			}
			buf.WriteByte(byte(UintN(v, 8)))
		}
	case 16:
		for _, v := range vals {
			if !Fits(v, 16) {
				return nil, errors.Errorf("bits: value %d does not fit in 16 bits", v)
			}
			x := UintN(v, 16)
			buf.WriteByte(byte(x >> 8))
			buf.WriteByte(byte(x))
		}
	default:
		bw := bitio.NewWriter(buf)
		for _, v := range vals {
			if !Fits(v, uint(width)) {
				return nil, errors.Errorf("bits: value %d does not fit in %d bits", v, width)
			}
			if err := bw.WriteBits(uint64(UintN(v, uint(width))), width); err != nil {
				return nil, errors.Wrap(err, "bits: pack")
			}
		}
		if err := bw.Close(); err != nil {
			return nil, errors.Wrap(err, "bits: pack")
		}
	}
	return buf.Bytes(), nil
}

// PackedLen returns the number of bytes Pack produces for n values at
// the given width.
func PackedLen(n int, width uint8) int {
	return (n*int(width) + 7) / 8
}
