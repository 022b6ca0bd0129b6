// Package mask owns the W×H on/off pixel grid the grid-finding pipeline
// reads from. The mask is backed by a gocv.Mat (CV_8UC1), the same
// representation the rest of this codebase's ecosystem uses for a
// grayscale/binary working image.
package mask

import (
	"fmt"

	"gocv.io/x/gocv"
)

// On is the byte value a painted (grid-line) pixel holds; any nonzero byte
// is treated as on when reading, but drawing helpers always write On.
const On = 0xFF

// Off is the byte value a background pixel holds.
const Off = 0x00

// Pixel is a canvas coordinate. The zero value is not a sentinel: use
// InvalidPixel for "no such pixel", matching the invariant that an
// out-of-canvas pixel is never returned as a valid result.
type Pixel struct {
	X, Y int
}

// InvalidPixel is the sentinel returned where the pipeline has no pixel to
// report.
var InvalidPixel = Pixel{X: -1, Y: -1}

// Valid reports whether p is not the invalid sentinel. It does not check
// canvas bounds; use Mask.InRange for that.
func (p Pixel) Valid() bool { return p != InvalidPixel }

// Average returns the integer midpoint of two pixels.
func Average(a, b Pixel) Pixel {
	return Pixel{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Mask is a W×H bitmap of on/off pixels. A Finder only reads the Mask it is
// given; whoever created the Mask must release it with Close when no longer
// needed.
type Mask struct {
	mat  gocv.Mat
	w, h int
}

// New creates an all-off mask of the given size.
func New(w, h int) *Mask {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	return &Mask{mat: m, w: w, h: h}
}

// FromMat wraps an existing single-channel gocv.Mat as a Mask, without
// copying. The Mask takes ownership: closing the Mask closes the Mat.
func FromMat(m gocv.Mat) (*Mask, error) {
	if m.Channels() != 1 {
		return nil, fmt.Errorf("mask: expected single-channel mat, got %d channels", m.Channels())
	}
	return &Mask{mat: m, w: m.Cols(), h: m.Rows()}, nil
}

// Close releases the underlying Mat's native buffer.
func (m *Mask) Close() error { return m.mat.Close() }

// Width returns the canvas width in pixels.
func (m *Mask) Width() int { return m.w }

// Height returns the canvas height in pixels.
func (m *Mask) Height() int { return m.h }

// InRange reports whether p lies within [0, Width) × [0, Height).
func (m *Mask) InRange(p Pixel) bool {
	return p.X >= 0 && p.X < m.w && p.Y >= 0 && p.Y < m.h
}

// Get returns true if the pixel at p is on (any nonzero byte). Out-of-range
// pixels read as off.
func (m *Mask) Get(p Pixel) bool {
	if !m.InRange(p) {
		return false
	}
	return m.mat.GetUCharAt(p.Y, p.X) != Off
}

// Set writes a pixel's value. value is typically On or Off; any byte is
// accepted. Out-of-range writes are silently ignored, the same defensive
// behavior the rest of this codebase's own Mat-backed drawing helpers use.
func (m *Mask) Set(p Pixel, value byte) {
	if !m.InRange(p) {
		return
	}
	m.mat.SetUCharAt(p.Y, p.X, value)
}

// Center returns the canvas center pixel, (W-1)/2, (H-1)/2.
func (m *Mask) Center() Pixel {
	return Pixel{X: (m.w - 1) / 2, Y: (m.h - 1) / 2}
}

// Mat exposes the underlying gocv.Mat for collaborators that need direct
// OpenCV interop (e.g. thresholding a loaded image into a Mask).
func (m *Mask) Mat() gocv.Mat { return m.mat }
