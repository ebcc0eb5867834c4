package frame

// Spatial predictors for higher-order coders. Each estimates a pixel
// from neighbours that are already decoded under the corresponding
// scan direction. Version 2 streams never use them; they are retained
// for the experimental segmented layout.

// predictLeft averages the left, top, top-left and top-right
// neighbours of (y, x) for a left-to-right scan. Neighbours outside
// the grid are omitted from the average.
func predictLeft(d *Data, y, x int) int32 {
	var sum, n int32
	if x > 0 {
		sum += int32(d.At(y, x-1))
		n++
	}
	if y > 0 {
		sum += int32(d.At(y-1, x))
		n++
		if x > 0 {
			sum += int32(d.At(y-1, x-1))
			n++
		}
		if x < d.Width()-1 {
			sum += int32(d.At(y-1, x+1))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// predictRight is the mirror of predictLeft for a right-to-left scan:
// right, top, top-right and top-left neighbours.
func predictRight(d *Data, y, x int) int32 {
	var sum, n int32
	if x < d.Width()-1 {
		sum += int32(d.At(y, x+1))
		n++
	}
	if y > 0 {
		sum += int32(d.At(y-1, x))
		n++
		if x < d.Width()-1 {
			sum += int32(d.At(y-1, x+1))
			n++
		}
		if x > 0 {
			sum += int32(d.At(y-1, x-1))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
