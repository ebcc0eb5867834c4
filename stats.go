package cptv

import "github.com/TheCacophonyProject/go-cptv/frame"

// ffcWindowMS is how long after a flat-field calibration a frame's
// values stay disturbed and are kept out of the clip statistics.
const ffcWindowMS = 5000

// Stats holds the clip-wide pixel range of the frames decoded so far,
// maintained incrementally during decode.
//
// A frame contributes only when its minimum pixel is nonzero (an
// all-the-way-to-zero read is a glitched sensor frame) and it is
// either a background frame, a frame with no recorded calibration
// time, or at least ffcWindowMS past the last flat-field calibration.
type Stats struct {
	min uint16
	max uint16
	n   int
}

// Min returns the smallest contributing pixel value.
func (s Stats) Min() uint16 { return s.min }

// Max returns the largest contributing pixel value.
func (s Stats) Max() uint16 { return s.max }

// FrameCount returns how many frames have contributed.
func (s Stats) FrameCount() int { return s.n }

func (s *Stats) update(f *frame.Frame) {
	if f.Image.Min() == 0 {
		return
	}
	if !f.Background && withinFFCWindow(f) {
		return
	}
	if s.n == 0 || f.Image.Min() < s.min {
		s.min = f.Image.Min()
	}
	if s.n == 0 || f.Image.Max() > s.max {
		s.max = f.Image.Max()
	}
	s.n++
}

func withinFFCWindow(f *frame.Frame) bool {
	if f.LastFFCTime == nil {
		return false
	}
	return int64(f.TimeOn)-int64(*f.LastFFCTime) < ffcWindowMS
}
