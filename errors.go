package cptv

import (
	"fmt"

	"github.com/TheCacophonyProject/go-cptv/frame"
	"github.com/TheCacophonyProject/go-cptv/internal/fields"
)

// NeedMoreBytesError is returned by Decoder methods when the buffered
// input holds a truncated record. It is not a failure: write at least
// Needed more bytes and retry. The retried parse resumes from the same
// position; nothing is consumed by an incomplete attempt.
type NeedMoreBytesError = fields.NeedError

// MalformedFieldError reports a field whose length disagrees with the
// type its code implies. Fatal.
type MalformedFieldError = fields.MalformedFieldError

// InvalidBitWidthError reports a frame bit width other than 8 or 16.
// Fatal.
type InvalidBitWidthError = frame.InvalidBitWidthError

// FrameSizeMismatchError reports a declared residual payload length
// that disagrees with the frame dimensions and bit width. Fatal.
type FrameSizeMismatchError = frame.SizeMismatchError

// PixelRangeError reports a reconstructed pixel outside the unsigned
// 16-bit range. Fatal.
type PixelRangeError = frame.PixelRangeError

// An UnknownVersionError reports a stream whose version byte is not a
// version this package decodes. Fatal.
type UnknownVersionError struct {
	Version uint8
}

func (e UnknownVersionError) Error() string {
	if e.Version == Version3 {
		return "cptv: version 3 streams are not supported"
	}
	return fmt.Sprintf("cptv: unknown version %d", e.Version)
}
