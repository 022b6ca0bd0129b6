// Package raster provides an integer-error-term line walker (a classic
// Bresenham rasterizer) that advances one pixel per step, clipped to a
// canvas. It is the only place in the pipeline that turns a direction into
// a sequence of pixels.
package raster

import (
	"errors"

	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
)

// ErrOutOfRange is the value Next panics with when called past the end of
// the ray, i.e. when HasNext would report false. Callers are contractually required
// to guard every call with HasNext; a caller that doesn't guard has a bug.
var ErrOutOfRange = errors.New("raster: no more pixels on ray within canvas")

// Ray is a single, non-restartable walk from a start pixel along a fixed
// direction, clipped to a W×H canvas. Construct a fresh Ray per query;
// there is no way to rewind one.
type Ray struct {
	px         mask.Pixel
	dx, dy     int32
	adx, ady   int32
	xinc, yinc int32
	steep      bool
	w, h       int
	errorTerm  int64
	length     uint
}

// New constructs a ray starting at start, walking in the direction given by
// cs, clipped to a w×h canvas.
func New(start mask.Pixel, cs angle.CosSin, w, h int) *Ray {
	dx, dy := cs.Cos, cs.Sin
	adx, ady := abs32(dx), abs32(dy)
	r := &Ray{
		px:    start,
		dx:    dx,
		dy:    dy,
		adx:   adx,
		ady:   ady,
		xinc:  sign32(dx),
		yinc:  sign32(dy),
		steep: ady > adx,
		w:     w,
		h:     h,
	}
	if r.steep {
		r.errorTerm = (int64(adx) - int64(ady)) / 2
	} else {
		r.errorTerm = (int64(ady) - int64(adx)) / 2
	}
	return r
}

// NewAt constructs a ray from a direction given directly as an Angle.
func NewAt(start mask.Pixel, a angle.Angle, w, h int) *Ray {
	return New(start, a.CosSin(), w, h)
}

// HasNext reports whether the current pixel still lies within the canvas.
func (r *Ray) HasNext() bool {
	return r.px.X >= 0 && r.px.X < r.w && r.px.Y >= 0 && r.px.Y < r.h
}

// CurrentLength returns the number of pixels yielded by Next so far.
func (r *Ray) CurrentLength() uint { return r.length }

// Next returns the current pixel, then advances one step along the ray. It
// panics with ErrOutOfRange if HasNext is false; internal callers always
// guard with HasNext, so reaching this path signals a programmer error.
func (r *Ray) Next() mask.Pixel {
	if !r.HasNext() {
		panic(ErrOutOfRange)
	}
	result := r.px
	if r.steep {
		if r.errorTerm >= 0 {
			r.px.X += int(r.xinc)
			r.errorTerm -= 2 * int64(r.ady)
		}
		r.px.Y += int(r.yinc)
		r.errorTerm += 2 * int64(r.adx)
	} else {
		if r.errorTerm >= 0 {
			r.px.Y += int(r.yinc)
			r.errorTerm -= 2 * int64(r.adx)
		}
		r.px.X += int(r.xinc)
		r.errorTerm += 2 * int64(r.ady)
	}
	r.length++
	return result
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign32(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
