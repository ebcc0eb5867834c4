package fields

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	data := []byte{4, 't', 0xD2, 0x04, 0x00, 0x00, 1, 'w', 16}

	f, rest, err := Next(data)
	require.NoError(t, err)
	assert.Equal(t, byte('t'), f.Code)
	v, err := f.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), v)

	f, rest, err = Next(rest)
	require.NoError(t, err)
	assert.Equal(t, byte('w'), f.Code)
	b, err := f.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(16), b)
	assert.Empty(t, rest)
}

func TestNextNeed(t *testing.T) {
	// Empty input: the two framing bytes are missing.
	_, _, err := Next(nil)
	var need NeedError
	require.ErrorAs(t, err, &need)
	assert.Equal(t, 2, need.Needed)

	// Framing present but the value is short by three bytes.
	_, _, err = Next([]byte{4, 't', 0xD2})
	require.ErrorAs(t, err, &need)
	assert.Equal(t, 3, need.Needed)
}

func TestValueSizeMismatch(t *testing.T) {
	f := Field{Code: 'X', Value: []byte{1, 2}}
	_, err := f.U32()
	var malformed MalformedFieldError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, byte('X'), malformed.Code)
	assert.Equal(t, 2, malformed.Len)
	assert.Equal(t, 4, malformed.Want)
}

func TestWriterRoundTrip(t *testing.T) {
	w := new(Writer)
	w.U64('T', 1600000000000000)
	w.U32('X', 160)
	w.U8('C', 1)
	w.F32('L', -36.85)
	w.Bool('g', true)
	require.NoError(t, w.String('D', "tawhiti-42"))
	assert.Equal(t, 6, w.Count())

	rest := w.Bytes()
	codes := []byte{'T', 'X', 'C', 'L', 'g', 'D'}
	for _, code := range codes {
		var f Field
		var err error
		f, rest, err = Next(rest)
		require.NoError(t, err)
		assert.Equal(t, code, f.Code)
		switch code {
		case 'T':
			v, err := f.U64()
			require.NoError(t, err)
			assert.Equal(t, uint64(1600000000000000), v)
		case 'X':
			v, err := f.U32()
			require.NoError(t, err)
			assert.Equal(t, uint32(160), v)
		case 'C':
			v, err := f.U8()
			require.NoError(t, err)
			assert.Equal(t, uint8(1), v)
		case 'L':
			v, err := f.F32()
			require.NoError(t, err)
			assert.Equal(t, float32(-36.85), v)
		case 'g':
			v, err := f.Bool()
			require.NoError(t, err)
			assert.True(t, v)
		case 'D':
			assert.Equal(t, "tawhiti-42", f.String())
		}
	}
	assert.Empty(t, rest)
}

func TestWriterLongString(t *testing.T) {
	w := new(Writer)
	long := make([]byte, 256)
	err := w.String('M', string(long))
	require.Error(t, err)
	assert.Equal(t, 0, w.Count())
}

func TestTakeDoesNotConsumeOnNeed(t *testing.T) {
	data := []byte{1, 2, 3}
	_, _, err := Take(data, 5)
	var need NeedError
	require.True(t, errors.As(err, &need))
	assert.Equal(t, 2, need.Needed)
	// The input is untouched; a retry with more bytes succeeds.
	val, rest, err := Take(append(data, 4, 5), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, val)
	assert.Empty(t, rest)
}
