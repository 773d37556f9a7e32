package parallel

// Band is a half-open range of destination rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	return b.Y1 - b.Y0
}

// Bands splits height rows into contiguous bands for the given number of
// workers. It makes about four bands per worker so stealing can even out
// uneven rows, and never returns bands shorter than minRows unless the
// image itself is shorter.
func Bands(height, workers, minRows int) []Band {
	if height <= 0 {
		return nil
	}
	workers = max(workers, 1)
	minRows = max(minRows, 1)

	n := min(workers*4, height/minRows)
	n = max(n, 1)

	bands := make([]Band, 0, n)
	base, extra := height/n, height%n
	y := 0
	for i := range n {
		rows := base
		if i < extra {
			rows++
		}
		bands = append(bands, Band{Y0: y, Y1: y + rows})
		y += rows
	}
	return bands
}
