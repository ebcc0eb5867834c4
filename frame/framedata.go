package frame

import "math"

// Data is a width×height grid of 16-bit pixels, indexed by (row,
// column). It tracks the minimum and maximum value written so far, so
// a decoded frame carries its dynamic range without a second pass.
type Data struct {
	width  int
	height int
	pix    []uint16
	min    uint16
	max    uint16
}

// NewData returns an empty grid. Min is saturated high and Max low
// until the first Set.
func NewData(width, height int) *Data {
	return &Data{
		width:  width,
		height: height,
		pix:    make([]uint16, width*height),
		min:    math.MaxUint16,
		max:    0,
	}
}

// DataFromPix returns a grid holding a copy of the row-major pixel
// values in pix, with min/max computed from the data.
func DataFromPix(width, height int, pix []uint16) *Data {
	d := NewData(width, height)
	for i, v := range pix {
		d.pix[i] = v
		if v < d.min {
			d.min = v
		}
		if v > d.max {
			d.max = v
		}
	}
	return d
}

// Width returns the number of columns.
func (d *Data) Width() int { return d.width }

// Height returns the number of rows.
func (d *Data) Height() int { return d.height }

// At returns the pixel at row y, column x.
func (d *Data) At(y, x int) uint16 {
	return d.pix[y*d.width+x]
}

// Set stores v at row y, column x and extends the running min/max.
func (d *Data) Set(y, x int, v uint16) {
	if v < d.min {
		d.min = v
	}
	if v > d.max {
		d.max = v
	}
	d.pix[y*d.width+x] = v
}

// Pix returns the row-major pixel values. The slice is owned by d.
func (d *Data) Pix() []uint16 { return d.pix }

// Min returns the smallest value written so far.
func (d *Data) Min() uint16 { return d.min }

// Max returns the largest value written so far.
func (d *Data) Max() uint16 { return d.max }
