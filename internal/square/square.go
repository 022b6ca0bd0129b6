// Package square orchestrates the full grid-square search: find the first
// line, find its two perpendicular neighbors, then find the fourth side
// closing the square, and intersect adjacent sides into the four corners.
package square

import (
	"fmt"
	"log"

	"github.com/BurntSushi/toml"

	"gridfinder/internal/angle"
	"gridfinder/internal/firstline"
	"gridfinder/internal/lineest"
	"gridfinder/internal/mask"
	"gridfinder/internal/nextline"
	"gridfinder/pkg/geometry"
)

// Params collects every tunable the search uses. Build one with
// DefaultParams and override fields with the WithXxx builders, or load a
// full set from a TOML file with LoadParamsTOML.
type Params struct {
	MaxGap               uint    `toml:"max_gap"`
	MaxLineWidth         uint    `toml:"max_line_width"`
	MinStartLineWidth    uint    `toml:"min_start_line_width"`
	RetryJumpDistance    uint    `toml:"retry_jump_distance"`
	MaxRetries           int     `toml:"max_retries"`
	MaxVerticalLineWidth uint    `toml:"max_vertical_line_width"`
	HorizontalJump       int     `toml:"horizontal_jump"`
	MinDistance          uint    `toml:"min_distance"`
	InitialTries         int     `toml:"initial_tries"`
	InitialTriesFactor   float64 `toml:"initial_tries_factor"`
}

// DefaultParams returns the parameter set tuned for a typical downward
// facing camera mask at moderate resolution.
func DefaultParams() Params {
	return Params{
		MaxGap:               3,
		MaxLineWidth:         15,
		MinStartLineWidth:    3,
		RetryJumpDistance:    20,
		MaxRetries:           5,
		MaxVerticalLineWidth: 15,
		HorizontalJump:       10,
		MinDistance:          10,
		InitialTries:         3,
		InitialTriesFactor:   1.5,
	}
}

// WithMaxGap overrides the gap tolerance shared by the Hough scorer and the
// width estimator's along-line sampling.
func (p Params) WithMaxGap(v uint) Params { p.MaxGap = v; return p }

// WithMaxLineWidth overrides the width above which a probe is rejected as
// not crossing a single line.
func (p Params) WithMaxLineWidth(v uint) Params { p.MaxLineWidth = v; return p }

// WithRetryJumpDistance overrides the jump distance GetMiddleWithRetries
// uses to escape intersections.
func (p Params) WithRetryJumpDistance(v uint) Params { p.RetryJumpDistance = v; return p }

// WithMinDistance overrides the distance FindNextLine moves along the known
// line before its parallel walk. It also sets the first perpendicular
// offset of the side search and, halved, the lower bound of the closing
// side's offset search.
func (p Params) WithMinDistance(v uint) Params { p.MinDistance = v; return p }

// WithInitialTries overrides how many tries the perpendicular side search
// makes, widening its offset after each failed try, before giving up.
func (p Params) WithInitialTries(v int) Params { p.InitialTries = v; return p }

// LoadParamsTOML reads a TOML file into a Params, starting from
// DefaultParams so that any field the file omits keeps its default.
func LoadParamsTOML(path string) (Params, error) {
	p := DefaultParams()
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return Params{}, fmt.Errorf("square: loading params from %s: %w", path, err)
	}
	return p, nil
}

func (p Params) firstLineConfig() firstline.Config {
	return firstline.Config{
		MaxGap:               p.MaxGap,
		MaxLineWidth:         p.MaxLineWidth,
		RetryJumpDistance:    p.RetryJumpDistance,
		MaxRetries:           p.MaxRetries,
		MaxVerticalLineWidth: p.MaxVerticalLineWidth,
		MinStartLineWidth:    p.MinStartLineWidth,
		HorizontalJump:       p.HorizontalJump,
	}
}

func (p Params) nextLineConfig() nextline.Config {
	return nextline.Config{
		MaxGap:            p.MaxGap,
		MaxLineWidth:      p.MaxLineWidth,
		RetryJumpDistance: p.RetryJumpDistance,
		MaxRetries:        p.MaxRetries,
		MinDistance:       p.MinDistance,
	}
}

// Line is one side of the found square.
type Line struct {
	Point mask.Pixel
	Angle angle.Angle
	Width uint
	Eq    lineest.Line
}

// Square is the result of a FindSquare search. Lines holds up to five
// found lines: the first two half-lines (0, 1), the two perpendicular
// sides (2, 3), and the closing fourth side (4). Points holds the four
// corners, each the intersection of two adjacent sides. Both arrays carry
// a parallel Valid flag since a search can legitimately stop partway
// through: a partial Square with some entries invalid is a normal result,
// not an error.
type Square struct {
	Lines      [5]Line
	LineValid  [5]bool
	Points     [4]geometry.Point2D
	PointValid [4]bool
}

// Complete reports whether all four corners were found.
func (s Square) Complete() bool {
	for _, v := range s.PointValid {
		if !v {
			return false
		}
	}
	return true
}

// Finder runs square searches against a fixed mask and parameter set.
type Finder struct {
	m *mask.Mask
	p Params
}

// NewFinder builds a Finder over m using p.
func NewFinder(m *mask.Mask, p Params) *Finder {
	return &Finder{m: m, p: p}
}

// FindSquare searches for a grid square starting from the canvas center. It
// never returns an error: any internal failure (including a recovered
// panic from the rasterizer's out-of-range guard) yields a Square with
// fewer valid entries, logged via the standard logger.
func (f *Finder) FindSquare() (result Square) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("square: recovered while finding square: %v", r)
			result = Square{}
		}
	}()
	return f.findSquare()
}

func (f *Finder) findSquare() Square {
	m, p := f.m, f.p
	var sq Square

	e0, e1, ok := firstline.GetFirstTwoHalfLines(m, p.firstLineConfig())
	if !ok {
		return sq
	}
	sq.Lines[0] = toLine(e0)
	sq.LineValid[0] = true
	sq.Lines[1] = toLine(e1)
	sq.LineValid[1] = true

	center := lineest.PixelPoint(m.Center())
	plus90 := sq.Lines[0].Eq.LeftOfPoint(center)

	e2, e3, ok := f.findPerpendicularSides(e0, e1, plus90)
	if !ok {
		return sq
	}
	sq.Lines[2] = toLine(e2)
	sq.LineValid[2] = true
	sq.Lines[3] = toLine(e3)
	sq.LineValid[3] = true

	if pt, ok := sq.Lines[0].Eq.Intersect(sq.Lines[2].Eq); ok {
		sq.Points[0] = pt
		sq.PointValid[0] = true
	}
	if pt, ok := sq.Lines[0].Eq.Intersect(sq.Lines[3].Eq); ok {
		sq.Points[1] = pt
		sq.PointValid[1] = true
	}
	if !sq.PointValid[0] || !sq.PointValid[1] {
		return sq
	}

	e4, ok := f.findFourthSide(e2, e3, sq.Points[0], sq.Points[1], plus90)
	if !ok {
		return sq
	}
	sq.Lines[4] = toLine(e4)
	sq.LineValid[4] = true

	if pt, ok := sq.Lines[4].Eq.Intersect(sq.Lines[2].Eq); ok {
		sq.Points[2] = pt
		sq.PointValid[2] = true
	}
	if pt, ok := sq.Lines[4].Eq.Intersect(sq.Lines[3].Eq); ok {
		sq.Points[3] = pt
		sq.PointValid[3] = true
	}

	return sq
}

// findPerpendicularSides searches for the two lines perpendicular to the
// first line, one from each half-line: from e0 on its plus90 side and from
// e1 on its opposite side, which is the same side of the first line since
// e1 points the other way. It widens the search offset by
// InitialTriesFactor after each failed try. A corner sitting close to the
// first line can otherwise hide the perpendicular crossing just past the
// initial search radius.
func (f *Finder) findPerpendicularSides(e0, e1 firstline.Estimate, plus90 bool) (e2, e3 firstline.Estimate, ok bool) {
	m, p := f.m, f.p
	offset := float64(p.MinDistance)
	for try := 0; try < p.InitialTries; try++ {
		o2, ok2 := nextline.FindNextLine(m, e0, plus90, uint(offset), p.nextLineConfig())
		o3, ok3 := nextline.FindNextLine(m, e1, !plus90, uint(offset), p.nextLineConfig())
		if ok2 && ok3 {
			return o2, o3, true
		}
		offset *= p.InitialTriesFactor
	}
	return firstline.Estimate{}, firstline.Estimate{}, false
}

// findFourthSide searches for the side closing the square from e2, falling
// back to e3, each probed toward the other. The perpendicular search offset
// starts at 3/4 of the distance between the two known corners and shrinks
// by the wider of the two cross widths while it stays above half
// MinDistance; a last try is made at that lower bound.
func (f *Finder) findFourthSide(e2, e3 firstline.Estimate, c0, c1 geometry.Point2D, plus90 bool) (firstline.Estimate, bool) {
	m, p := f.m, f.p
	diagonal := c0.Distance(c1)

	widthStep := e2.Width
	if e3.Width > widthStep {
		widthStep = e3.Width
	}
	if widthStep == 0 {
		widthStep = 1
	}
	maxOffset := float64(p.MinDistance) / 2
	if maxOffset < 1 {
		maxOffset = 1
	}

	for off := diagonal * 0.75; off > maxOffset; off -= float64(widthStep) {
		if cand, ok := nextline.FindNextLine(m, e2, plus90, uint(off), p.nextLineConfig()); ok {
			return cand, true
		}
		if cand, ok := nextline.FindNextLine(m, e3, !plus90, uint(off), p.nextLineConfig()); ok {
			return cand, true
		}
	}
	if cand, ok := nextline.FindNextLine(m, e2, plus90, uint(maxOffset), p.nextLineConfig()); ok {
		return cand, true
	}
	return nextline.FindNextLine(m, e3, !plus90, uint(maxOffset), p.nextLineConfig())
}

func toLine(e firstline.Estimate) Line {
	return Line{
		Point: e.Point,
		Angle: e.Angle,
		Width: e.Width,
		Eq:    lineest.NewLine(lineest.PixelPoint(e.Point), e.Angle),
	}
}
