// Package nextline searches for the grid line adjacent to an already-found
// one: offset perpendicular to the known line by a margin scaled to the
// known line's own width, then walk parallel to it looking for the next
// crossing.
package nextline

import (
	"gridfinder/internal/angle"
	"gridfinder/internal/firstline"
	"gridfinder/internal/hough"
	"gridfinder/internal/lineest"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
)

// Config bundles the tunables FindNextLine and CheckLine need.
type Config struct {
	MaxGap            uint
	MaxLineWidth      uint
	RetryJumpDistance uint
	MaxRetries        int
	MinDistance       uint
}

// VoteThreshold is the minimum Hough run length accepted as real.
func (c Config) VoteThreshold(m *mask.Mask) uint {
	return uint((m.Width() + m.Height()) / 10)
}

func stepAlong(point mask.Pixel, cs angle.CosSin, n int, w, h int) mask.Pixel {
	r := raster.New(point, cs, w, h)
	p := point
	// the first Next returns point itself, so n+1 calls move n pixels
	for i := 0; i <= n && r.HasNext(); i++ {
		p = r.Next()
	}
	return p
}

// CheckLine validates a candidate crossing pixel p as lying on a real line
// near the expected direction guess: it refines the angle with a bounded
// accurate Hough search, rejects weak votes, then measures width and
// rejects a candidate whose width has fallen to a third or less of known's
// width, the known line the candidate is expected to cross.
func CheckLine(m *mask.Mask, p mask.Pixel, guess angle.Angle, known firstline.Estimate, cfg Config) (firstline.Estimate, bool) {
	r := hough.FindLineAngleAccurateRange(m, p, cfg.MaxGap, guess, angle.Resolution/40)
	if r.Count < cfg.VoteThreshold(m) {
		return firstline.Estimate{}, false
	}
	mid := lineest.GetMiddleWithRetries(m, p, r.Angle, cfg.MaxLineWidth, cfg.MaxGap, cfg.RetryJumpDistance, cfg.MaxRetries)
	if !mid.Valid || mid.Width <= known.Width/3 {
		return firstline.Estimate{}, false
	}
	return firstline.Estimate{Point: mid.Center, Angle: r.Angle, Width: mid.Width}, true
}

// FindNextLine looks for the grid line adjacent to known, on the +90° side
// if plus90 is true, -90° side otherwise. It first steps perpendicular to
// known's line by 2*known.Width + offset pixels (far enough to clear the
// known line's own painted width plus a search margin), then steps
// MinDistance further along known's direction before scanning forward.
// From there it walks parallel to known (in known's direction), advancing
// to the first on-pixel, continuing to the first off-pixel that ends that
// run, and taking the midpoint of the run as the candidate crossing,
// validating each candidate with CheckLine. The expected direction of the
// next line is known's perpendicular, since grid lines meet at right
// angles.
func FindNextLine(m *mask.Mask, known firstline.Estimate, plus90 bool, offset uint, cfg Config) (firstline.Estimate, bool) {
	perp := known.Angle.Perpendicular(plus90)
	perpOffset := 2*known.Width + offset

	start := stepAlong(known.Point, perp.CosSin(), int(perpOffset), m.Width(), m.Height())
	start = stepAlong(start, known.Angle.CosSin(), int(cfg.MinDistance), m.Width(), m.Height())

	guess := perp
	r := raster.New(start, known.Angle.CosSin(), m.Width(), m.Height())

	var runStart, lastOn mask.Pixel
	inRun := false
	for r.HasNext() {
		p := r.Next()
		if m.Get(p) {
			if !inRun {
				runStart = p
				inRun = true
			}
			lastOn = p
			continue
		}
		if !inRun {
			continue
		}
		inRun = false
		candidate := mask.Average(runStart, lastOn)
		if est, ok := CheckLine(m, candidate, guess, known, cfg); ok {
			return est, true
		}
	}
	if inRun {
		candidate := mask.Average(runStart, lastOn)
		if est, ok := CheckLine(m, candidate, guess, known, cfg); ok {
			return est, true
		}
	}
	return firstline.Estimate{}, false
}
