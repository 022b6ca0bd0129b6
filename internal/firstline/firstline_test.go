package firstline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
)

func looseConfig() Config {
	return Config{
		MaxGap:               2,
		MaxLineWidth:         10,
		RetryJumpDistance:    20,
		MaxRetries:           5,
		MaxVerticalLineWidth: 5,
		MinStartLineWidth:    1,
		HorizontalJump:       5,
	}
}

func angleDiff(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > angle.Resolution/2 {
		d = angle.Resolution - d
	}
	return d
}

func TestGetFirstTwoHalfLinesFindsNearlyHorizontalLine(t *testing.T) {
	const w, h = 200, 200
	m := mask.New(w, h)
	defer m.Close()

	center := mask.Pixel{X: w / 2, Y: h / 2}
	a := angle.FromIndex(5)
	raster.DrawLine(m, center, a.CosSin())
	raster.DrawLine(m, center, a.Opposite().CosSin())

	first, second, ok := GetFirstTwoHalfLines(m, looseConfig())
	require.True(t, ok)

	tolerance := angle.Resolution / 40
	sameSide := angleDiff(first.Angle.Index(), a.Index()) <= tolerance ||
		angleDiff(first.Angle.Index(), a.Opposite().Index()) <= tolerance
	assert.True(t, sameSide, "first angle %d not near %d or its opposite", first.Angle.Index(), a.Index())

	oppositeSide := angleDiff(second.Angle.Index(), a.Index()) <= tolerance ||
		angleDiff(second.Angle.Index(), a.Opposite().Index()) <= tolerance
	assert.True(t, oppositeSide, "second angle %d not near %d or its opposite", second.Angle.Index(), a.Index())
}

func TestGetFirstTwoHalfLinesFailsOnEmptyMask(t *testing.T) {
	m := mask.New(100, 100)
	defer m.Close()

	_, _, ok := GetFirstTwoHalfLines(m, looseConfig())
	assert.False(t, ok)
}

func TestColumnCandidateRejectsVerticalLine(t *testing.T) {
	const w, h = 100, 100
	m := mask.New(w, h)
	defer m.Close()

	vert := angle.FromIndex(angle.Resolution / 4)
	center := mask.Pixel{X: 50, Y: 50}
	raster.DrawLine(m, center, vert.CosSin())
	raster.DrawLine(m, center, vert.Opposite().CosSin())

	_, ok := columnCandidate(m, 50, 5)
	assert.False(t, ok)
}

func TestColumnCandidateAcceptsHorizontalCrossing(t *testing.T) {
	const w, h = 100, 100
	m := mask.New(w, h)
	defer m.Close()

	horiz := angle.FromIndex(0)
	center := mask.Pixel{X: 50, Y: 50}
	raster.DrawLine(m, center, horiz.CosSin())
	raster.DrawLine(m, center, horiz.Opposite().CosSin())

	p, ok := columnCandidate(m, 50, 5)
	require.True(t, ok)
	assert.Equal(t, 50, p.Y)
}
