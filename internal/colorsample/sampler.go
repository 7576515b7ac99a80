// Package colorsample reduces an image to one representative colour.
package colorsample

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// GridSize is the edge of the square grid images are resampled to before
// averaging.
const GridSize = 40

// Algorithm selects how channel values are reduced.
type Algorithm int

const (
	// Simple is the arithmetic mean of each channel.
	Simple Algorithm = iota
	// SquareRoot is the square root of the mean of squared channel values,
	// which leans towards brighter pixels.
	SquareRoot
)

func (a Algorithm) String() string {
	switch a {
	case SquareRoot:
		return "square_root"
	default:
		return "simple"
	}
}

// ParseAlgorithm accepts "simple" or "square_root" (case-insensitive, blank
// means simple).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "simple":
		return Simple, nil
	case "square_root", "squareroot", "sqrt":
		return SquareRoot, nil
	default:
		return Simple, fmt.Errorf("unknown color algorithm %q", s)
	}
}

// Next returns the other algorithm, for cycling from the UI.
func (a Algorithm) Next() Algorithm {
	if a == SquareRoot {
		return Simple
	}
	return SquareRoot
}

// Average returns the average colour of img. The boolean is false when img
// has no pixels to sample.
func Average(img image.Image, alg Algorithm) (colorful.Color, bool) {
	if img == nil || img.Bounds().Empty() {
		return colorful.Color{}, false
	}

	grid := imaging.Resize(img, GridSize, GridSize, imaging.Box)
	bounds := grid.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return colorful.Color{}, false
	}

	var sumR, sumG, sumB float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := grid.PixOffset(x, y)
			alpha := float64(grid.Pix[i+3]) / 255
			r := float64(grid.Pix[i]) * alpha
			g := float64(grid.Pix[i+1]) * alpha
			b := float64(grid.Pix[i+2]) * alpha
			switch alg {
			case SquareRoot:
				sumR += r * r
				sumG += g * g
				sumB += b * b
			default:
				sumR += r
				sumG += g
				sumB += b
			}
		}
	}

	n := float64(pixels)
	var r, g, b float64
	switch alg {
	case SquareRoot:
		r, g, b = math.Sqrt(sumR/n), math.Sqrt(sumG/n), math.Sqrt(sumB/n)
	default:
		r, g, b = sumR/n, sumG/n, sumB/n
	}
	return colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Clamped(), true
}
