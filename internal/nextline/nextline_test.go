package nextline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridfinder/internal/angle"
	"gridfinder/internal/firstline"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
)

func looseConfig() Config {
	return Config{
		MaxGap:            2,
		MaxLineWidth:      10,
		RetryJumpDistance: 20,
		MaxRetries:        5,
		MinDistance:       5,
	}
}

// FindNextLine looks for the side perpendicular to a known line, so the
// fixtures below draw a horizontal first line and a vertical second line
// crossing the parallel search path.
func TestFindNextLineLocatesPerpendicularLine(t *testing.T) {
	const w, h = 200, 200
	m := mask.New(w, h)
	defer m.Close()

	a := angle.FromIndex(0)
	firstPoint := mask.Pixel{X: w / 2, Y: h / 2}
	raster.DrawLine(m, firstPoint, a.CosSin())
	raster.DrawLine(m, firstPoint, a.Opposite().CosSin())

	vert := angle.FromIndex(angle.Resolution / 4)
	crossX := w/2 + 50
	crossing := mask.Pixel{X: crossX, Y: firstPoint.Y + 30}
	raster.DrawLine(m, crossing, vert.CosSin())
	raster.DrawLine(m, crossing, vert.Opposite().CosSin())

	known := firstline.Estimate{Point: firstPoint, Angle: a, Width: 1}
	found, ok := FindNextLine(m, known, true, 30, looseConfig())
	require.True(t, ok)
	assert.InDelta(t, crossX, found.Point.X, 2)
}

func TestFindNextLineFailsWithNoCrossing(t *testing.T) {
	const w, h = 200, 200
	m := mask.New(w, h)
	defer m.Close()

	a := angle.FromIndex(0)
	firstPoint := mask.Pixel{X: w / 2, Y: h / 2}
	raster.DrawLine(m, firstPoint, a.CosSin())
	raster.DrawLine(m, firstPoint, a.Opposite().CosSin())

	known := firstline.Estimate{Point: firstPoint, Angle: a, Width: 1}
	_, ok := FindNextLine(m, known, true, 30, looseConfig())
	assert.False(t, ok)
}

func TestFindNextLinePerpendicularOffsetScalesWithKnownWidth(t *testing.T) {
	const w, h = 300, 300
	m := mask.New(w, h)
	defer m.Close()

	a := angle.FromIndex(0)
	firstPoint := mask.Pixel{X: w / 2, Y: h / 2}
	raster.DrawLine(m, firstPoint, a.CosSin())
	raster.DrawLine(m, firstPoint, a.Opposite().CosSin())

	// the crossing line starts 2*width+offset pixels from the known line and
	// runs away from it; a search that ignored width and used offset alone
	// would walk its parallel path between the two lines and never meet the
	// crossing.
	vert := angle.FromIndex(angle.Resolution / 4)
	const knownWidth = 2
	const offset = 5
	crossX := w/2 + 2*knownWidth + offset + 3
	crossing := mask.Pixel{X: crossX, Y: firstPoint.Y + 2*knownWidth + offset}
	raster.DrawLine(m, crossing, vert.CosSin())

	known := firstline.Estimate{Point: firstPoint, Angle: a, Width: knownWidth}
	found, ok := FindNextLine(m, known, true, offset, looseConfig())
	require.True(t, ok)
	assert.InDelta(t, crossX, found.Point.X, 2)
}

func TestCheckLineValidatesRealLine(t *testing.T) {
	const w, h = 200, 200
	m := mask.New(w, h)
	defer m.Close()

	a := angle.FromIndex(10)
	p := mask.Pixel{X: w / 2, Y: h / 2}
	raster.DrawLine(m, p, a.CosSin())
	raster.DrawLine(m, p, a.Opposite().CosSin())

	known := firstline.Estimate{Point: p, Angle: a, Width: 1}
	est, ok := CheckLine(m, p, a, known, looseConfig())
	require.True(t, ok)
	assert.True(t, est.Width >= 1)
}

func TestCheckLineRejectsWidthAtOrBelowThirdOfKnown(t *testing.T) {
	const w, h = 200, 200
	m := mask.New(w, h)
	defer m.Close()

	a := angle.FromIndex(10)
	p := mask.Pixel{X: w / 2, Y: h / 2}
	raster.DrawLine(m, p, a.CosSin())
	raster.DrawLine(m, p, a.Opposite().CosSin())

	// a single-pixel-wide candidate line next to a known line of width 30:
	// 1 <= 30/3 (== 10), so it must be rejected even though it's a real
	// line by itself.
	known := firstline.Estimate{Point: p, Angle: a, Width: 30}
	_, ok := CheckLine(m, p, a, known, looseConfig())
	assert.False(t, ok)
}
