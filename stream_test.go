package cptv_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/frame"
	"github.com/TheCacophonyProject/go-cptv/meta"
)

// encodeTestClip produces an enveloped clip of count frames with a
// moving gradient.
func encodeTestClip(t *testing.T, width, height, count int) ([]byte, [][]uint16) {
	t.Helper()
	hdr := &meta.Header{
		Width:      uint32(width),
		Height:     uint32(height),
		DeviceName: "stream-test",
	}
	buf := new(bytes.Buffer)
	enc, err := cptv.NewEncoder(buf, hdr)
	require.NoError(t, err)

	clip := make([][]uint16, count)
	for i := range clip {
		pix := make([]uint16, width*height)
		for j := range pix {
			pix[j] = uint16(3000 + 7*i + (i+j)%29)
		}
		clip[i] = pix
		require.NoError(t, enc.WriteFrame(&frame.Frame{
			TimeOn: uint32(i * 111),
			Image:  frame.DataFromPix(width, height, pix),
		}))
	}
	require.NoError(t, enc.Close())
	return buf.Bytes(), clip
}

// TestStreamingEquivalence delivers the encoded bytes one byte at a
// time; the decoded frame sequence must match an all-at-once decode.
func TestStreamingEquivalence(t *testing.T) {
	data, clip := encodeTestClip(t, 8, 6, 10)

	whole, err := cptv.Parse(bytes.NewReader(data))
	require.NoError(t, err)

	trickled, err := cptv.Parse(iotest.OneByteReader(bytes.NewReader(data)))
	require.NoError(t, err)

	require.Len(t, whole.Frames, 10)
	require.Len(t, trickled.Frames, 10)
	for i := range clip {
		assert.Equal(t, clip[i], whole.Frames[i].Image.Pix(), "frame %d", i)
		assert.Equal(t, whole.Frames[i].Image.Pix(), trickled.Frames[i].Image.Pix(), "frame %d", i)
	}
	assert.Equal(t, whole.Stats(), trickled.Stats())
}

// TestDecoderBytewisePush feeds raw codec bytes into the push decoder
// one at a time, retrying on NeedMoreBytesError after each byte.
func TestDecoderBytewisePush(t *testing.T) {
	enveloped, clip := encodeTestClip(t, 4, 3, 10)
	zr, err := gzip.NewReader(bytes.NewReader(enveloped))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	dec := cptv.NewDecoder()
	var got [][]uint16
	sawNeed := false
	for i := 0; i < len(raw); i++ {
		_, err := dec.Write(raw[i : i+1])
		require.NoError(t, err)
		for {
			f, err := dec.NextFrame()
			if err != nil {
				var need cptv.NeedMoreBytesError
				require.True(t, errors.As(err, &need), "unexpected error at byte %d: %v", i, err)
				sawNeed = true
				break
			}
			pix := make([]uint16, len(f.Image.Pix()))
			copy(pix, f.Image.Pix())
			got = append(got, pix)
		}
	}
	dec.End()
	_, err = dec.NextFrame()
	assert.Equal(t, io.EOF, err)

	assert.True(t, sawNeed, "a bytewise feed must hit incomplete parses")
	require.Len(t, got, len(clip))
	for i := range clip {
		assert.Equal(t, clip[i], got[i], "frame %d", i)
	}
}

// TestStreamParseNext exercises the pull interface frame by frame.
func TestStreamParseNext(t *testing.T) {
	data, clip := encodeTestClip(t, 5, 4, 3)
	s, err := cptv.NewStream(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "stream-test", s.Header.DeviceName)

	for i := range clip {
		f, err := s.ParseNext()
		require.NoError(t, err)
		assert.Equal(t, clip[i], f.Image.Pix(), "frame %d", i)
	}
	_, err = s.ParseNext()
	assert.Equal(t, io.EOF, err)
	// The stream stays at end of file.
	_, err = s.ParseNext()
	assert.Equal(t, io.EOF, err)
}

// TestNewStreamRawBytes checks that an envelope-less byte stream is
// accepted as codec bytes directly.
func TestNewStreamRawBytes(t *testing.T) {
	enveloped, clip := encodeTestClip(t, 3, 3, 2)
	zr, err := gzip.NewReader(bytes.NewReader(enveloped))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	s, err := cptv.Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, s.Frames, 2)
	assert.Equal(t, clip[1], s.Frames[1].Image.Pix())
}

// TestTruncatedStream ends the transport partway through a frame; the
// frames decoded so far stay available and the stream ends cleanly.
func TestTruncatedStream(t *testing.T) {
	enveloped, clip := encodeTestClip(t, 4, 4, 3)
	zr, err := gzip.NewReader(bytes.NewReader(enveloped))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	s, err := cptv.Parse(bytes.NewReader(raw[:len(raw)-5]))
	require.NoError(t, err)
	require.Len(t, s.Frames, 2)
	assert.Equal(t, clip[0], s.Frames[0].Image.Pix())
	assert.Equal(t, clip[1], s.Frames[1].Image.Pix())
}
