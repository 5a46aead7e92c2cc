package kernels

// DivisionTable maps an accumulated channel sum over a window of diameter pixels
// to the rounded average. It replaces the division in the blur hot loop.
//
// The table has 256*diameter entries. Sums 0..radius map to 0 and every base
// value b in 1..255 covers diameter consecutive sums starting at b*diameter-radius,
// so table[s] == (s+radius)/diameter for every reachable s in [0, 255*diameter].
type DivisionTable []uint8

// NewDivisionTable builds the table for the given blur radius.
func NewDivisionTable(radius int) DivisionTable {
	diameter := 2*radius + 1
	div := make(DivisionTable, 256*diameter)

	// div[0..radius] stay zero.
	ptr := radius + 1
	for b := 1; b <= 255; b++ {
		for d := 0; d < diameter; d++ {
			div[ptr] = uint8(b)
			ptr++
		}
	}

	return div
}

// Diameter returns the window width the table was built for.
func (t DivisionTable) Diameter() int {
	return len(t) / 256
}
