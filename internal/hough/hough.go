// Package hough scores a candidate line direction through a point by
// walking a single ray in that direction and measuring how far the
// on-pixel run extends before a gap wider than a configured tolerance
// breaks it.
package hough

import (
	"log"

	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
)

// Result is a scored candidate angle: Count is the length of the on-pixel
// run found along the ray cast from the query point at Angle, up to the
// configured gap tolerance.
type Result struct {
	Angle angle.Angle
	Count uint
}

// Hough walks a single ray from point in direction a, returning the
// distance to the last on-pixel seen before a gap wider than maxGap
// off-pixels breaks the run. Count is 0 if no on-pixel is ever seen. Unlike
// a symmetric line score, this only looks in one direction: the two halves
// of a line through point are two separate candidate angles 180° apart,
// each scored by its own call.
func Hough(m *mask.Mask, point mask.Pixel, a angle.Angle, maxGap uint) Result {
	r := raster.New(point, a.CosSin(), m.Width(), m.Height())
	var step uint
	var previousWhite uint
	seen := false
	for r.HasNext() {
		p := r.Next()
		if m.Get(p) {
			previousWhite = step
			seen = true
		} else if seen && step-previousWhite > maxGap {
			break
		}
		step++
	}
	if !seen {
		return Result{Angle: a, Count: 0}
	}
	return Result{Angle: a, Count: previousWhite + 1}
}

// FindLineAngle performs a coarse search over every quantized angle and
// returns the one with the highest score through point. Ties are broken by
// the lowest index, the same left-to-right bias a plain argmax loop gives.
func FindLineAngle(m *mask.Mask, point mask.Pixel, maxGap uint) Result {
	var best Result
	for i := 0; i < angle.Resolution; i++ {
		a := angle.FromIndex(i)
		r := Hough(m, point, a, maxGap)
		if r.Count > best.Count {
			best = r
		}
	}
	return best
}

// FindLineAngleAccurateRange refines a coarse angle estimate by searching a
// bounded range of indices around center (±halfRange, inclusive) and
// returning the centroid of the plateau around the maximum, rather than the
// single best index. The plateau is found by walking outward from the
// maximum while the score stays at or above maxCount - maxCount/8, which is
// far more stable against quantization noise near the true angle than a
// single argmax.
func FindLineAngleAccurateRange(m *mask.Mask, point mask.Pixel, maxGap uint, center angle.Angle, halfRange int) Result {
	n := 2*halfRange + 1
	indices := make([]int, n)
	counts := make([]uint, n)

	maxOffset := 0
	var maxCount uint
	for i := 0; i < n; i++ {
		offset := i - halfRange
		idx := center.Index() + offset
		a := angle.FromIndex(idx)
		r := Hough(m, point, a, maxGap)
		indices[i] = idx
		counts[i] = r.Count
		if r.Count > maxCount {
			maxCount = r.Count
			maxOffset = i
		}
	}

	if maxCount == 0 {
		return Result{Angle: center, Count: 0}
	}

	threshold := maxCount - maxCount/8

	firstMax := maxOffset
	for firstMax > 0 && counts[firstMax-1] >= threshold {
		firstMax--
	}
	lastMax := maxOffset
	for lastMax < n-1 && counts[lastMax+1] >= threshold {
		lastMax++
	}

	if firstMax == 0 || lastMax == n-1 {
		log.Printf("hough: accurate range search hit a search-window boundary at center index %d, range ±%d", center.Index(), halfRange)
	}

	first := angle.FromIndex(indices[firstMax])
	last := angle.FromIndex(indices[lastMax])
	avg := angle.Average(first, last)
	return Result{Angle: avg, Count: maxCount}
}
