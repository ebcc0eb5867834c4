package bits

import (
	"bytes"

	"github.com/icza/bitio"
)

// An Unpacker streams signed integers of a fixed bit width out of a
// packed byte slice, most significant bit first.
type Unpacker struct {
	r     *bitio.Reader
	width uint8
}

// NewUnpacker returns an Unpacker reading width-bit values from data.
// CPTV streams only ever carry widths 8 and 16, but the unpacker is
// correct for any width up to 32.
func NewUnpacker(data []byte, width uint8) *Unpacker {
	return &Unpacker{
		r:     bitio.NewReader(bytes.NewReader(data)),
		width: width,
	}
}

// Next returns the next value. ok is false once the input ends,
// including when it ends partway through an element.
func (u *Unpacker) Next() (v int32, ok bool) {
	x, err := u.r.ReadBits(u.width)
	if err != nil {
		return 0, false
	}
	return IntN(uint32(x), uint(u.width)), true
}

// Unpack reads n width-bit values from data. ok is false when data
// holds fewer than n complete elements.
func Unpack(data []byte, width uint8, n int) (vals []int32, ok bool) {
	u := NewUnpacker(data, width)
	vals = make([]int32, 0, n)
	for i := 0; i < n; i++ {
		v, ok := u.Next()
		if !ok {
			return vals, false
		}
		vals = append(vals, v)
	}
	return vals, true
}
