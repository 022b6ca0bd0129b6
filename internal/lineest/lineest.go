// Package lineest estimates the center pixel and width of a grid line at a
// point, and represents fitted lines as homogeneous-coordinate equations
// that can be intersected.
package lineest

import (
	"gonum.org/v1/gonum/mat"

	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
	"gridfinder/pkg/geometry"
)

// Result is the outcome of a width/center estimate at a point. Valid is
// false whenever no on-pixel anchor was found within the gap window, or
// every anchor's half-width reached maxWidth, which typically means the
// probe landed on a blob or an intersection rather than a single line.
type Result struct {
	Center mask.Pixel
	Width  uint
	Valid  bool
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

// halfWidth walks from point (exclusive) in direction cs, counting
// consecutive on-pixels. ok is false if the run reaches maxWidth without
// ending, signaling the probe is not crossing a single line of bounded
// width.
func halfWidth(m *mask.Mask, point mask.Pixel, cs angle.CosSin, maxWidth uint) (count uint, ok bool) {
	r := raster.New(point, cs, m.Width(), m.Height())
	if r.HasNext() {
		r.Next()
	}
	for r.HasNext() {
		p := r.Next()
		if !m.Get(p) {
			return count, true
		}
		count++
		if count > maxWidth {
			return count, false
		}
	}
	return count, true
}

// GetMiddle estimates the true center and width of the line passing through
// point at lineAngle. point itself is not required to be on: a grid line
// painted with a small break can have an off-pixel exactly where a caller
// expects a crossing, so GetMiddle samples up to gap further anchors along
// the line, measures the perpendicular on-pixel run at each on-pixel anchor
// it finds, and keeps the widest valid result. It is invalid if no anchor
// is found within the gap window, or if every anchor's half-run reaches
// maxWidth (a blob or intersection rather than a single line).
func GetMiddle(m *mask.Mask, point mask.Pixel, lineAngle angle.Angle, maxWidth, gap uint) Result {
	plus := lineAngle.Perpendicular(true)
	minus := lineAngle.Perpendicular(false)

	along := raster.New(point, lineAngle.CosSin(), m.Width(), m.Height())

	var best Result
	for i := uint(0); i <= gap; i++ {
		if !along.HasNext() {
			break
		}
		anchor := along.Next()
		if !m.Get(anchor) {
			continue
		}

		upper, okU := halfWidth(m, anchor, plus.CosSin(), maxWidth)
		lower, okL := halfWidth(m, anchor, minus.CosSin(), maxWidth)
		if !okU || !okL {
			continue
		}

		width := upper + lower + 1
		if width <= best.Width {
			continue
		}

		shift := (int(upper) - int(lower)) / 2
		center := anchor
		switch {
		case shift > 0:
			center = stepAlong(anchor, plus.CosSin(), shift, m.Width(), m.Height())
		case shift < 0:
			center = stepAlong(anchor, minus.CosSin(), -shift, m.Width(), m.Height())
		}

		best = Result{Center: center, Width: width, Valid: true}
	}
	return best
}

// GetMiddleWithRetries calls GetMiddle at point, and on an invalid result
// jumps retryJump pixels along the line direction and tries again, up to
// maxTries times. This escapes grid intersections and blobs that produce an
// invalid width at the original point. It gives up early if a jump doesn't
// move the probe (canvas edge reached).
func GetMiddleWithRetries(m *mask.Mask, point mask.Pixel, lineAngle angle.Angle, maxWidth, gap, retryJump uint, maxTries int) Result {
	cs := lineAngle.CosSin()
	current := point
	for try := 0; try < maxTries; try++ {
		if res := GetMiddle(m, current, lineAngle, maxWidth, gap); res.Valid {
			return res
		}
		next := stepAlong(current, cs, int(retryJump), m.Width(), m.Height())
		if next == current {
			break
		}
		current = next
	}
	return Result{}
}

// Line is a fitted grid line in homogeneous form a*x + b*y + c = 0, with
// a = sin(angle), b = -cos(angle), so that (a, b) is the line's unit normal
// and increasing Eval moves to one side of the line.
type Line struct {
	A, B, C float64
}

// PixelPoint converts a mask pixel to a geometry point.
func PixelPoint(p mask.Pixel) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// NewLine builds the line through point in direction a.
func NewLine(point geometry.Point2D, a angle.Angle) Line {
	cs := a.CosSin()
	la := cs.Sinf()
	lb := -cs.Cosf()
	lc := -la*point.X - lb*point.Y
	return Line{A: la, B: lb, C: lc}
}

// Eval returns the signed distance (up to the normal's scale) of p from the
// line: zero on the line, positive on one side, negative on the other.
func (l Line) Eval(p geometry.Point2D) float64 {
	return l.A*p.X + l.B*p.Y + l.C
}

// LeftOfPoint reports whether p lies on the positive side of the line.
func (l Line) LeftOfPoint(p geometry.Point2D) bool { return l.Eval(p) > 0 }

// RightOfPoint reports whether p lies on the negative side of the line.
func (l Line) RightOfPoint(p geometry.Point2D) bool { return l.Eval(p) < 0 }

// Intersect solves for the point common to l and other. ok is false if the
// two lines are parallel (or coincident), in which case the returned point
// is the zero value.
func (l Line) Intersect(other Line) (geometry.Point2D, bool) {
	coeffs := mat.NewDense(2, 2, []float64{
		l.A, l.B,
		other.A, other.B,
	})
	rhs := mat.NewVecDense(2, []float64{-l.C, -other.C})

	var soln mat.VecDense
	if err := soln.SolveVec(coeffs, rhs); err != nil {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{X: soln.AtVec(0), Y: soln.AtVec(1)}, true
}
