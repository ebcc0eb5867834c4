package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSnake(t *testing.T) {
	// 2×2: (0,0), (0,1), (1,1), (1,0).
	golden := []struct{ y, x int }{
		{0, 0}, {0, 1}, {1, 1}, {1, 0},
	}
	for i, g := range golden {
		y, x := snake(i, 2)
		if y != g.y || x != g.x {
			t.Errorf("scan index %d; expected (%d,%d), got (%d,%d)", i, g.y, g.x, y, x)
		}
	}
	// Odd rows mirror: index width..2*width-1 walks right to left.
	for i := 0; i < 5; i++ {
		y, x := snake(5+i, 5)
		if y != 1 || x != 4-i {
			t.Errorf("scan index %d; expected (1,%d), got (%d,%d)", 5+i, 4-i, y, x)
		}
	}
}

func TestEncodeTwoByOne(t *testing.T) {
	// First frame of a clip: [1000, 1010]. The first residual goes out
	// raw; the single remaining residual (10) fits 8 bits.
	img := DataFromPix(2, 1, []uint16{1000, 1010})
	payload, bitsPerPixel, err := Encode(img, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(8), bitsPerPixel)
	assert.Equal(t, []byte{0xE8, 0x03, 0x00, 0x00, 0x0A}, payload)

	dst := NewData(2, 1)
	require.NoError(t, decodeImage(payload, bitsPerPixel, nil, dst))
	assert.Equal(t, []uint16{1000, 1010}, dst.Pix())
}

func TestEncodeTwoByTwoAgainstPrev(t *testing.T) {
	// Frame B against an all-zero frame A; the odd row is scanned
	// mirrored, so residuals run 1, 1, 2, -1.
	prev := DataFromPix(2, 2, []uint16{0, 0, 0, 0})
	img := DataFromPix(2, 2, []uint16{1, 2, 3, 4})

	payload, bitsPerPixel, err := Encode(img, prev)
	require.NoError(t, err)
	assert.Equal(t, uint8(8), bitsPerPixel)
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x01, 0x02, 0xFF}, payload)

	dst := NewData(2, 2)
	require.NoError(t, decodeImage(payload, bitsPerPixel, prev, dst))
	assert.Equal(t, []uint16{1, 2, 3, 4}, dst.Pix())
}

func TestEncodeSinglePixel(t *testing.T) {
	// A 1×1 frame has no packed residuals; the width defaults to 16.
	img := DataFromPix(1, 1, []uint16{1234})
	payload, bitsPerPixel, err := Encode(img, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(16), bitsPerPixel)
	assert.Equal(t, []byte{0xD2, 0x04, 0x00, 0x00}, payload)
}

func TestDecodeRejectsOutOfRangePixel(t *testing.T) {
	// First residual of -1 with no previous frame reconstructs to -1.
	payload := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	dst := NewData(1, 1)
	err := decodeImage(payload, 16, nil, dst)
	var rangeErr PixelRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, int32(-1), rangeErr.Value)
}

func TestCodecRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 8).Draw(t, "width")
		height := rapid.IntRange(1, 8).Draw(t, "height")
		n := width * height
		// 14-bit values, the microbolometer's native range; keeps every
		// second-order difference within 16 signed bits.
		pixGen := rapid.SliceOfN(rapid.Uint16Range(0, 16383), n, n)
		frames := [][]uint16{
			pixGen.Draw(t, "first"),
			pixGen.Draw(t, "second"),
			pixGen.Draw(t, "third"),
		}

		var prev *Data
		for i, pix := range frames {
			img := DataFromPix(width, height, pix)
			payload, bitsPerPixel, err := Encode(img, prev)
			if err != nil {
				t.Fatalf("frame %d: %v", i, err)
			}
			dst := NewData(width, height)
			if err := decodeImage(payload, bitsPerPixel, prev, dst); err != nil {
				t.Fatalf("frame %d: %v", i, err)
			}
			if !bytes.Equal(u16Bytes(pix), u16Bytes(dst.Pix())) {
				t.Fatalf("frame %d: pixel mismatch", i)
			}
			prev = dst
		}
	})
}

func u16Bytes(pix []uint16) []byte {
	out := make([]byte, 0, len(pix)*2)
	for _, v := range pix {
		out = append(out, byte(v), byte(v>>8))
	}
	return out
}

func TestEncodeRejectsWideResiduals(t *testing.T) {
	// 0 -> 65535 -> 0 produces second-order differences beyond 16
	// signed bits.
	img := DataFromPix(3, 1, []uint16{0, 65535, 0})
	_, _, err := Encode(img, nil)
	require.Error(t, err)
	var rangeErr PixelRangeError
	assert.False(t, errors.As(err, &rangeErr))
}
