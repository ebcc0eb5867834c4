package cptv

import (
	"io"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/go-cptv/frame"
	"github.com/TheCacophonyProject/go-cptv/meta"
)

type decodeState uint8

const (
	stateHeader decodeState = iota
	stateFrame
	stateEnded
)

// A Decoder incrementally decodes a CPTV byte stream from a buffer
// that grows as bytes arrive. Feed it the codec bytes (after the gzip
// envelope has been removed) with Write, then call ReadHeader and
// NextFrame; both return NeedMoreBytesError while the buffered input
// is insufficient and can be retried after more writes.
//
// A parse attempt is a pure function of the buffered bytes and the
// current position: an incomplete attempt consumes nothing, which is
// what makes resumption safe. Call End once the transport is
// exhausted; from then on an incomplete frame parse yields io.EOF
// instead.
//
// Decoders are not safe for concurrent use. Each decodes one clip;
// decoding another requires a fresh Decoder.
type Decoder struct {
	buf   []byte
	pos   int
	ended bool

	state      decodeState
	hdr        *meta.Header
	prev       *frame.Frame
	background *frame.Frame
	stats      Stats
	err        error
}

// NewDecoder returns a Decoder awaiting its first bytes.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write appends bytes from the transport. It implements io.Writer and
// never fails before End has been called.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.ended {
		return 0, errors.New("cptv: write after end of input")
	}
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// End marks the end of the input stream. No further bytes may be
// written.
func (d *Decoder) End() {
	d.ended = true
}

// Header returns the clip header, or nil before it has been parsed.
func (d *Decoder) Header() *meta.Header { return d.hdr }

// Background returns the reference-only background frame, or nil if
// the clip has none (or it has not been reached yet).
func (d *Decoder) Background() *frame.Frame { return d.background }

// Stats returns the clip statistics accumulated so far.
func (d *Decoder) Stats() Stats { return d.stats }

// ReadHeader parses the magic bytes, version and clip header record.
// It is idempotent; NextFrame calls it as needed.
func (d *Decoder) ReadHeader() (*meta.Header, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.hdr != nil {
		return d.hdr, nil
	}

	hdr, consumed, err := parseHeader(d.buf[d.pos:])
	if err != nil {
		if isNeed(err) {
			if d.ended {
				// A stream that ends mid-header was never a clip.
				return nil, d.fatal(io.ErrUnexpectedEOF)
			}
			return nil, err
		}
		return nil, d.fatal(err)
	}
	d.pos += consumed
	d.hdr = hdr
	d.state = stateFrame
	return hdr, nil
}

// NextFrame decodes and returns the next visible frame. Background
// frames are consumed as prediction context and never returned; fetch
// them with Background. Returns io.EOF once the input has ended and no
// complete frame remains.
func (d *Decoder) NextFrame() (*frame.Frame, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.hdr == nil {
		if _, err := d.ReadHeader(); err != nil {
			return nil, err
		}
	}
	if d.hdr.Width == 0 || d.hdr.Height == 0 {
		return nil, d.fatal(errors.Errorf("cptv: invalid frame dimensions %dx%d", d.hdr.Width, d.hdr.Height))
	}

	for {
		if d.state == stateEnded {
			return nil, io.EOF
		}
		f, rest, err := frame.Parse(d.buf[d.pos:], int(d.hdr.Width), int(d.hdr.Height), d.prev)
		if err != nil {
			if isNeed(err) {
				if d.ended {
					d.state = stateEnded
					return nil, io.EOF
				}
				return nil, err
			}
			return nil, d.fatal(err)
		}
		d.pos = len(d.buf) - len(rest)
		d.stats.update(f)
		d.prev = f
		if f.Background {
			d.background = f
			continue
		}
		return f, nil
	}
}

// fatal records err so that every further call repeats it.
func (d *Decoder) fatal(err error) error {
	d.err = err
	return err
}

func isNeed(err error) bool {
	var need NeedMoreBytesError
	return errors.As(err, &need)
}

// parseHeader reads magic, version and the header record, returning
// the number of bytes consumed.
func parseHeader(data []byte) (hdr *meta.Header, consumed int, err error) {
	if len(data) < len(Magic)+1 {
		return nil, 0, NeedMoreBytesError{Needed: len(Magic) + 1 - len(data)}
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, 0, errors.Errorf("cptv: invalid magic bytes %q", data[:len(Magic)])
	}
	version := data[len(Magic)]
	if version != Version2 {
		return nil, 0, UnknownVersionError{Version: version}
	}
	hdr, rest, err := meta.Parse(data[len(Magic)+1:])
	if err != nil {
		return nil, 0, err
	}
	return hdr, len(data) - len(rest), nil
}
