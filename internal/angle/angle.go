// Package angle provides a fixed-resolution table of quantized directions.
// Every angle used by the grid-finding pipeline goes through this table:
// callers never call math.Cos/math.Sin directly, they build an Angle and
// read its scaled integer CosSin pair instead.
package angle

import "math"

// Resolution is the number of discrete steps over a full turn (2π).
const Resolution = 360

// scalingFactor scales cos/sin into the signed integer range used by the
// rasterizer's error-term arithmetic. It is chosen so that the error term
// cannot overflow a signed 32-bit accumulator for any canvas up to roughly
// 2e6 pixels on the long side.
const scalingFactor = math.MaxInt32 / 2

var cosLUT [Resolution]int32
var sinLUT [Resolution]int32

func init() {
	for i := 0; i < Resolution; i++ {
		step := 2 * math.Pi * float64(i) / Resolution
		cosLUT[i] = int32(math.Round(math.Cos(step) * scalingFactor))
		sinLUT[i] = int32(math.Round(math.Sin(step) * scalingFactor))
	}
}

// CosSin is a scaled (cos, sin) pair, decoupled from the quantized index it
// came from. Rasterization only ever needs this pair, not the index.
type CosSin struct {
	Cos int32
	Sin int32
}

// ScalingFactor is the integer scale applied to Cos and Sin.
func ScalingFactor() int32 { return scalingFactor }

// Cosf returns the cosine as a float64 in [-1, 1].
func (cs CosSin) Cosf() float64 { return float64(cs.Cos) / scalingFactor }

// Sinf returns the sine as a float64 in [-1, 1].
func (cs CosSin) Sinf() float64 { return float64(cs.Sin) / scalingFactor }

// Opposite returns the pair rotated by π.
func (cs CosSin) Opposite() CosSin { return CosSin{Cos: -cs.Cos, Sin: -cs.Sin} }

// Perpendicular returns the pair rotated by +π/2 (plus90 true) or -π/2.
func (cs CosSin) Perpendicular(plus90 bool) CosSin {
	if plus90 {
		return CosSin{Cos: -cs.Sin, Sin: cs.Cos}
	}
	return CosSin{Cos: cs.Sin, Sin: -cs.Cos}
}

// Rad returns the angle in radians via atan2(sin, cos).
func (cs CosSin) Rad() float64 { return math.Atan2(float64(cs.Sin), float64(cs.Cos)) }

// Angle is a direction index in [0, Resolution), the only angle
// representation the pipeline's inner loops operate on.
type Angle struct {
	index int
}

// FromIndex builds an Angle from a raw index, normalizing modulo Resolution.
// The index may be negative or exceed Resolution; it is always reduced
// into [0, Resolution).
func FromIndex(index int) Angle {
	return Angle{index: normalize(index)}
}

// FromRadians builds an Angle from a radian value, rounded to the nearest
// quantized index.
func FromRadians(rad float64) Angle {
	idx := int(math.Round(rad / step()))
	return FromIndex(idx)
}

// FromCosSin builds the nearest quantized Angle to a given CosSin pair.
func FromCosSin(cs CosSin) Angle {
	return FromRadians(cs.Rad())
}

func step() float64 { return 2 * math.Pi / Resolution }

func normalize(index int) int {
	index %= Resolution
	if index < 0 {
		index += Resolution
	}
	return index
}

// Index returns the raw index in [0, Resolution).
func (a Angle) Index() int { return a.index }

// Rad returns the angle in radians, derived as 2π·index/Resolution.
func (a Angle) Rad() float64 { return float64(a.index) * step() }

// Deg returns the angle in degrees.
func (a Angle) Deg() float64 { return a.Rad() * 180 / math.Pi }

// CosSin returns the table lookup for this angle's index.
func (a Angle) CosSin() CosSin {
	return CosSin{Cos: cosLUT[a.index], Sin: sinLUT[a.index]}
}

// Cos returns the scaled cosine.
func (a Angle) Cos() int32 { return cosLUT[a.index] }

// Sin returns the scaled sine.
func (a Angle) Sin() int32 { return sinLUT[a.index] }

// Cosf returns the cosine as a float64.
func (a Angle) Cosf() float64 { return float64(a.Cos()) / scalingFactor }

// Sinf returns the sine as a float64.
func (a Angle) Sinf() float64 { return float64(a.Sin()) / scalingFactor }

// Opposite returns the angle rotated by half a turn (index + Resolution/2).
func (a Angle) Opposite() Angle { return FromIndex(a.index + Resolution/2) }

// Perpendicular returns the angle rotated by a quarter turn, +90° if plus90
// is true, -90° otherwise.
func (a Angle) Perpendicular(plus90 bool) Angle {
	if plus90 {
		return FromIndex(a.index + Resolution/4)
	}
	return FromIndex(a.index - Resolution/4)
}

// Add returns the sum of two angles, normalized.
func (a Angle) Add(b Angle) Angle { return FromIndex(a.index + b.index) }

// Equal reports whether two angles have the same index.
func (a Angle) Equal(b Angle) bool { return a.index == b.index }

// Average returns the midpoint angle between first and last, always walking
// forward (increasing index) from first to last. When first == last it
// returns first unchanged; when the two angles are exactly antipodal, it
// resolves the ambiguity by walking forward from first (the
// "counterclockwise" midpoint), matching the reference implementation's
// unconditional wrap-then-halve arithmetic.
func Average(first, last Angle) Angle {
	f, l := first.index, last.index
	if f > l {
		l += Resolution
	}
	return FromIndex((f + l) / 2)
}
