package raster

import (
	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
)

// DrawLine walks a fresh Ray from start in direction cs across m and turns
// every pixel it visits on. It exists for building synthetic test masks,
// the same role the reference toolkit's own drawing helpers play in its
// test and smoke-test code. It returns the number of pixels drawn.
func DrawLine(m *mask.Mask, start mask.Pixel, cs angle.CosSin) uint {
	r := New(start, cs, m.Width(), m.Height())
	for r.HasNext() {
		m.Set(r.Next(), mask.On)
	}
	return r.CurrentLength()
}
