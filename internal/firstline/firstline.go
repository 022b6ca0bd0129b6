// Package firstline locates the first pair of grid-line half-lines in a
// mask with no prior knowledge of where the grid is, by sweeping columns
// outward from the canvas center until one lands on a crossing.
package firstline

import (
	"gridfinder/internal/angle"
	"gridfinder/internal/hough"
	"gridfinder/internal/lineest"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
	"gridfinder/internal/scan"
)

// Config bundles the tunables the search needs. Callers typically derive
// this from a shared parameter set rather than constructing it by hand.
type Config struct {
	MaxGap               uint
	MaxLineWidth         uint
	RetryJumpDistance    uint
	MaxRetries           int
	MaxVerticalLineWidth uint
	MinStartLineWidth    uint
	HorizontalJump       int
}

// VoteThreshold is the minimum Hough run length accepted as real, scaled to
// the canvas so the same Config works across image sizes.
func (c Config) VoteThreshold(m *mask.Mask) uint {
	return uint((m.Width() + m.Height()) / 10)
}

// Estimate is a located line through a point, with the refined center pixel
// and measured width.
type Estimate struct {
	Point mask.Pixel
	Angle angle.Angle
	Width uint
}

// columnCandidate performs a centered vertical scan of column x, returning
// the first on-pixel found that is not itself sitting on a near-vertical
// line (one whose own vertical run exceeds maxVerticalWidth). Such pixels
// are rejected because they would just rediscover a vertical grid line
// rather than a crossing.
func columnCandidate(m *mask.Mask, x int, maxVerticalWidth uint) (mask.Pixel, bool) {
	s := scan.New(m.Height())
	for s.HasNext() {
		y := s.Next()
		p := mask.Pixel{X: x, Y: y}
		if !m.Get(p) {
			continue
		}
		if isVerticalRun(m, p, maxVerticalWidth) {
			continue
		}
		return p, true
	}
	return mask.Pixel{}, false
}

// vertical is the quantized angle pointing straight down the canvas.
var vertical = angle.FromIndex(angle.Resolution / 4)

func isVerticalRun(m *mask.Mask, p mask.Pixel, maxWidth uint) bool {
	count := uint(1)
	for _, cs := range []angle.CosSin{vertical.CosSin(), vertical.Opposite().CosSin()} {
		r := raster.New(p, cs, m.Width(), m.Height())
		r.Next() // p itself, already counted
		for r.HasNext() && m.Get(r.Next()) {
			count++
			if count > maxWidth {
				return true
			}
		}
	}
	return false
}

// pointEstimate runs a coarse Hough search at p, rejects weak candidates by
// vote count, then refines the center and width. It fails if the coarse
// vote count is too low or the refined width is below minWidth.
func pointEstimate(m *mask.Mask, p mask.Pixel, cfg Config) (Estimate, bool) {
	coarse := hough.FindLineAngle(m, p, cfg.MaxGap)
	if coarse.Count < cfg.VoteThreshold(m) {
		return Estimate{}, false
	}
	mid := lineest.GetMiddleWithRetries(m, p, coarse.Angle, cfg.MaxLineWidth, cfg.MaxGap, cfg.RetryJumpDistance, cfg.MaxRetries)
	if !mid.Valid || mid.Width < cfg.MinStartLineWidth {
		return Estimate{}, false
	}
	return Estimate{Point: mid.Center, Angle: coarse.Angle, Width: mid.Width}, true
}

// GetFirstTwoHalfLines sweeps columns of m, centered on the canvas middle
// and stepping by cfg.HorizontalJump, until it finds a crossing, then
// refines that crossing's angle with two accurate bounded-range Hough
// searches: one centered on the coarse angle, one on its opposite. This
// gives the two near-opposite half-lines of the first found grid line.
func GetFirstTwoHalfLines(m *mask.Mask, cfg Config) (first, second Estimate, ok bool) {
	columns := (m.Width() + cfg.HorizontalJump - 1) / cfg.HorizontalJump
	s := scan.New(columns)

	var base Estimate
	found := false
	for s.HasNext() {
		i := s.Next()
		x := i * cfg.HorizontalJump
		if x >= m.Width() {
			continue
		}
		p, ok2 := columnCandidate(m, x, cfg.MaxVerticalLineWidth)
		if !ok2 {
			continue
		}
		if e, ok3 := pointEstimate(m, p, cfg); ok3 {
			base = e
			found = true
			break
		}
	}
	if !found {
		return Estimate{}, Estimate{}, false
	}

	halfRange := angle.Resolution / 40
	r1 := hough.FindLineAngleAccurateRange(m, base.Point, cfg.MaxGap, base.Angle, halfRange)
	r2 := hough.FindLineAngleAccurateRange(m, base.Point, cfg.MaxGap, base.Angle.Opposite(), halfRange)

	mid1 := lineest.GetMiddleWithRetries(m, base.Point, r1.Angle, cfg.MaxLineWidth, cfg.MaxGap, cfg.RetryJumpDistance, cfg.MaxRetries)
	mid2 := lineest.GetMiddleWithRetries(m, base.Point, r2.Angle, cfg.MaxLineWidth, cfg.MaxGap, cfg.RetryJumpDistance, cfg.MaxRetries)
	if !mid1.Valid || !mid2.Valid {
		return Estimate{}, Estimate{}, false
	}

	first = Estimate{Point: mid1.Center, Angle: r1.Angle, Width: mid1.Width}
	second = Estimate{Point: mid2.Center, Angle: r2.Angle, Width: mid2.Width}
	return first, second, true
}
