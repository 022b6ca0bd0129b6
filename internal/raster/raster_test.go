package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
)

func TestRayStrictlyMonotoneSteps(t *testing.T) {
	const w, h = 100, 100
	start := mask.Pixel{X: 10, Y: 10}
	for i := 0; i < angle.Resolution; i++ {
		a := angle.FromIndex(i)
		r := New(start, a.CosSin(), w, h)
		seen := map[mask.Pixel]bool{}
		for r.HasNext() {
			p := r.Next()
			require.Falsef(t, seen[p], "angle index %d revisited pixel %+v", i, p)
			seen[p] = true
		}
	}
}

func TestRayStaysInBounds(t *testing.T) {
	const w, h = 50, 40
	start := mask.Pixel{X: 25, Y: 20}
	for i := 0; i < angle.Resolution; i += 7 {
		a := angle.FromIndex(i)
		r := New(start, a.CosSin(), w, h)
		for r.HasNext() {
			p := r.Next()
			require.True(t, p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h)
		}
	}
}

func TestRayHorizontalStepsByOne(t *testing.T) {
	const w, h = 20, 20
	a := angle.FromIndex(0)
	r := New(mask.Pixel{X: 5, Y: 5}, a.CosSin(), w, h)
	prev := r.Next()
	for r.HasNext() {
		p := r.Next()
		assert.Equal(t, prev.X+1, p.X)
		assert.Equal(t, prev.Y, p.Y)
		prev = p
	}
}

func TestNextPastEndPanics(t *testing.T) {
	const w, h = 3, 3
	a := angle.FromIndex(0)
	r := New(mask.Pixel{X: 0, Y: 0}, a.CosSin(), w, h)
	for r.HasNext() {
		r.Next()
	}
	assert.Panics(t, func() { r.Next() })
}

func TestCurrentLengthTracksSteps(t *testing.T) {
	const w, h = 10, 10
	a := angle.FromIndex(0)
	r := New(mask.Pixel{X: 0, Y: 5}, a.CosSin(), w, h)
	var n uint
	for r.HasNext() {
		r.Next()
		n++
		assert.Equal(t, n, r.CurrentLength())
	}
}

func TestDrawLineMarksExactlyTheWalkedPixels(t *testing.T) {
	m := mask.New(60, 60)
	defer m.Close()

	start := mask.Pixel{X: 30, Y: 30}
	a := angle.FromIndex(37)
	n := DrawLine(m, start, a.CosSin())
	require.Greater(t, int(n), 0)

	check := New(start, a.CosSin(), 60, 60)
	var walked uint
	for check.HasNext() {
		p := check.Next()
		assert.True(t, m.Get(p), "walked pixel %+v should be on", p)
		walked++
	}
	assert.Equal(t, n, walked)
}

func TestDrawLineStepsAreAdjacent(t *testing.T) {
	m := mask.New(60, 60)
	defer m.Close()

	start := mask.Pixel{X: 30, Y: 30}
	a := angle.FromIndex(37)
	DrawLine(m, start, a.CosSin())

	check := New(start, a.CosSin(), 60, 60)
	var prev mask.Pixel
	first := true
	for check.HasNext() {
		p := check.Next()
		if !first {
			assert.LessOrEqual(t, abs(p.X-prev.X), 1)
			assert.LessOrEqual(t, abs(p.Y-prev.Y), 1)
		}
		prev = p
		first = false
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
