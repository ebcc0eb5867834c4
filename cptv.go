// Package cptv provides access to CPTV (Cacophony Project Thermal
// Video) files: gzip-enveloped streams of 16-bit thermal frames from
// low-resolution microbolometer cameras.
//
// The basic structure of a CPTV stream, once the gzip envelope is
// removed, is:
//   - The four byte string "CPTV" and a version byte.
//   - One clip header record.
//   - One frame record per image, each a tagged field list followed by
//     a bit-packed residual payload.
//
// Open, NewStream and Parse pull from an io.Reader and handle the
// envelope; Decoder is the push-driven core for transports that
// deliver bytes in arbitrary chunks.
package cptv

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/go-cptv/frame"
	"github.com/TheCacophonyProject/go-cptv/meta"
)

// Magic is present at the beginning of each CPTV stream, before the
// version byte.
const Magic = "CPTV"

// Stream versions. Version 2 is the sequential layout this package
// reads and writes; version 3 is an experimental segmented layout and
// is recognised only to be rejected.
const (
	Version2 uint8 = 2
	Version3 uint8 = 3
)

// chunkSize is how much is pulled from the transport per refill.
const chunkSize = 4096

// A Stream is a CPTV clip being decoded from an io.Reader.
type Stream struct {
	// Clip header, parsed before NewStream returns.
	Header *meta.Header
	// Frames decoded by Parse. ParseNext does not retain frames here.
	Frames []*frame.Frame

	dec    *Decoder
	src    io.Reader
	closer io.Closer
	chunk  []byte
}

// Open opens the provided file and returns a Stream with its header
// parsed. Close releases the file.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := NewStream(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.closer = f
	return s, nil
}

// NewStream reads from r and returns a Stream with its header parsed.
// A gzip envelope (magic bytes 0x1F 0x8B) is detected and removed;
// otherwise r is taken to carry the codec bytes directly.
func NewStream(r io.Reader) (*Stream, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1F && magic[1] == 0x8B {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "cptv: opening gzip envelope")
		}
		r = zr
	} else {
		r = br
	}

	s := &Stream{
		dec:   NewDecoder(),
		src:   r,
		chunk: make([]byte, chunkSize),
	}
	for {
		hdr, err := s.dec.ReadHeader()
		if err == nil {
			s.Header = hdr
			return s, nil
		}
		if !isNeed(err) {
			return nil, err
		}
		if err := s.pump(); err != nil {
			return nil, err
		}
	}
}

// ParseNext decodes and returns the next visible frame, pulling more
// bytes from the transport as needed. It returns io.EOF at the end of
// the clip.
func (s *Stream) ParseNext() (*frame.Frame, error) {
	for {
		f, err := s.dec.NextFrame()
		if err == nil {
			return f, nil
		}
		if !isNeed(err) {
			return nil, err
		}
		if err := s.pump(); err != nil {
			return nil, err
		}
	}
}

// pump transfers one chunk from the transport into the decoder,
// marking the decoder's end of input when the transport is exhausted.
func (s *Stream) pump() error {
	n, err := s.src.Read(s.chunk)
	if n > 0 {
		if _, werr := s.dec.Write(s.chunk[:n]); werr != nil {
			return werr
		}
	}
	if err == io.EOF {
		s.dec.End()
		return nil
	}
	return err
}

// Background returns the reference-only background frame, or nil if
// the clip has none.
func (s *Stream) Background() *frame.Frame { return s.dec.Background() }

// Stats returns the clip statistics accumulated so far.
func (s *Stream) Stats() Stats { return s.dec.Stats() }

// Close releases the underlying file, if the stream owns one.
func (s *Stream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// Parse reads a whole clip from r, retaining every visible frame in
// Frames. When decoding fails partway through, the returned stream
// still holds the frames decoded before the error.
func Parse(r io.Reader) (*Stream, error) {
	s, err := NewStream(r)
	if err != nil {
		return nil, err
	}
	for {
		f, err := s.ParseNext()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return s, err
		}
		s.Frames = append(s.Frames, f)
	}
}

// ParseFile reads a whole clip from the provided file.
func ParseFile(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}
