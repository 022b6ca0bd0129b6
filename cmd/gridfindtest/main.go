// Command gridfindtest runs grid square detection on a binary mask image
// and prints the found lines and corners.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/tiff"

	"gridfinder/internal/angle"
	"gridfinder/internal/mask"
	"gridfinder/internal/raster"
	"gridfinder/internal/square"
	"gridfinder/internal/version"
	"gridfinder/pkg/colorutil"
	"gridfinder/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to a binary grid mask image (TIFF, PNG, or JPEG)")
	synthetic := flag.Bool("synthetic", false, "Run against a generated test mask instead of -image")
	paramsPath := flag.String("params", "", "Path to a TOML file overriding the default search parameters")
	debugPNG := flag.String("debug-png", "", "Write a debug overlay PNG to this path")
	flag.Parse()

	fmt.Printf("gridfindtest %s (%s, %s)\n", version.Version, version.GitCommit, version.BuildTime)

	params := square.DefaultParams()
	if *paramsPath != "" {
		loaded, err := square.LoadParamsTOML(*paramsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load params: %v\n", err)
			os.Exit(1)
		}
		params = loaded
	}

	var m *mask.Mask
	switch {
	case *synthetic:
		m = buildSyntheticMask()
	case *imagePath != "":
		loaded, err := loadMask(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load mask: %v\n", err)
			os.Exit(1)
		}
		m = loaded
	default:
		fmt.Println("Usage: gridfindtest -image <path> | -synthetic [-params params.toml] [-debug-png out.png]")
		os.Exit(1)
	}
	defer m.Close()

	fmt.Printf("Mask size: %dx%d\n", m.Width(), m.Height())

	finder := square.NewFinder(m, params)
	fmt.Println("\nSearching for grid square...")
	result := finder.FindSquare()

	fmt.Println("\nLines:")
	for i, line := range result.Lines {
		if !result.LineValid[i] {
			fmt.Printf("  [%d] not found\n", i)
			continue
		}
		fmt.Printf("  [%d] point=(%d,%d) angle=%.1f° width=%d\n",
			i, line.Point.X, line.Point.Y, line.Angle.Deg(), line.Width)
	}

	fmt.Println("\nCorners:")
	for i, pt := range result.Points {
		if !result.PointValid[i] {
			fmt.Printf("  [%d] not found\n", i)
			continue
		}
		fmt.Printf("  [%d] (%.2f, %.2f)\n", i, pt.X, pt.Y)
	}

	if result.Complete() {
		fmt.Println("\nSquare fully resolved.")
	} else {
		fmt.Println("\nSquare only partially resolved.")
	}

	if *debugPNG != "" {
		if err := writeDebugPNG(*debugPNG, m, result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write debug PNG: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote debug overlay to %s\n", *debugPNG)
	}
}

// buildSyntheticMask draws a simple tilted square of grid lines for a quick
// smoke test with no input file.
func buildSyntheticMask() *mask.Mask {
	const w, h = 410, 308
	m := mask.New(w, h)

	a := angle.FromIndex(10)
	perp := a.Perpendicular(true)

	start := mask.Pixel{X: w/2 - 80, Y: h/2 - 60}
	raster.DrawLine(m, start, a.CosSin())
	raster.DrawLine(m, start, a.Opposite().CosSin())

	side := mask.Pixel{X: start.X, Y: start.Y}
	r := raster.New(side, perp.CosSin(), w, h)
	var offsetPixel mask.Pixel
	for i := 0; i < 120 && r.HasNext(); i++ {
		offsetPixel = r.Next()
	}
	raster.DrawLine(m, offsetPixel, a.CosSin())
	raster.DrawLine(m, offsetPixel, a.Opposite().CosSin())

	r = raster.New(start, a.CosSin(), w, h)
	var alongPixel mask.Pixel
	for i := 0; i < 120 && r.HasNext(); i++ {
		alongPixel = r.Next()
	}
	raster.DrawLine(m, start, perp.CosSin())
	raster.DrawLine(m, start, perp.Opposite().CosSin())
	raster.DrawLine(m, alongPixel, perp.CosSin())
	raster.DrawLine(m, alongPixel, perp.Opposite().CosSin())

	return m
}

func loadMask(path string) (*mask.Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	fmt.Printf("Loaded %s image\n", format)

	bounds := img.Bounds()
	m := mask.New(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r+g+b > 0x18000 {
				m.Set(mask.Pixel{X: x - bounds.Min.X, Y: y - bounds.Min.Y}, mask.On)
			}
		}
	}
	return m, nil
}

func writeDebugPNG(path string, m *mask.Mask, result square.Square) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			c := color.Color(colorutil.Black)
			if m.Get(mask.Pixel{X: x, Y: y}) {
				c = colorutil.White
			}
			img.Set(x, y, c)
		}
	}
	for i, pt := range result.Points {
		if !result.PointValid[i] {
			continue
		}
		paintCross(img, pt, colorutil.Magenta)
	}
	return png.Encode(f, img)
}

func paintCross(img *image.RGBA, p geometry.Point2D, c color.Color) {
	cx, cy := int(p.X), int(p.Y)
	for d := -3; d <= 3; d++ {
		setIfInBounds(img, cx+d, cy, c)
		setIfInBounds(img, cx, cy+d, c)
	}
}

func setIfInBounds(img *image.RGBA, x, y int, c color.Color) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	img.Set(x, y, c)
}
