package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/five82/galley/internal/imageloader"
)

const halfBlock = "▀"

// renderHalfBlocks draws img into at most cols x rows cells. Each cell shows
// two stacked pixels: the foreground paints the upper half block and the
// background shows through below it.
func renderHalfBlocks(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 || img.Bounds().Empty() {
		return ""
	}
	fitted := imaging.Fit(img, cols, rows*2, imaging.Box)
	bounds := fitted.Bounds()

	lines := make([]string, 0, (bounds.Dy()+1)/2)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		var line strings.Builder
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := fitted.NRGBAAt(x, y)
			bottom := top
			if y+1 < bounds.Max.Y {
				bottom = fitted.NRGBAAt(x, y+1)
			}
			line.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexOf(top))).
				Background(lipgloss.Color(hexOf(bottom))).
				Render(halfBlock))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// hexOf flattens c onto black.
func hexOf(c color.NRGBA) string {
	a := uint32(c.A)
	return fmt.Sprintf("#%02x%02x%02x",
		uint32(c.R)*a/255, uint32(c.G)*a/255, uint32(c.B)*a/255)
}

// previewCache keeps the last rendered preview so unchanged frames skip the
// resample.
type previewCache struct {
	img        *imageloader.Image
	cols, rows int
	out        string
}

func (c *previewCache) render(img *imageloader.Image, cols, rows int) string {
	if img == nil {
		return ""
	}
	if c.img == img && c.cols == cols && c.rows == rows {
		return c.out
	}
	c.img, c.cols, c.rows = img, cols, rows
	c.out = renderHalfBlocks(img.Image, cols, rows)
	return c.out
}
