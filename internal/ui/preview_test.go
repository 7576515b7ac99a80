package ui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/five82/galley/internal/imageloader"
)

func solidImage(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderHalfBlocksFitsCells(t *testing.T) {
	img := solidImage(8, 8, color.NRGBA{R: 200, A: 255})
	out := renderHalfBlocks(img, 4, 2)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, halfBlock); n != 4 {
			t.Fatalf("line %d has %d cells, want 4", i, n)
		}
	}
}

func TestRenderHalfBlocksEmpty(t *testing.T) {
	if out := renderHalfBlocks(nil, 4, 4); out != "" {
		t.Fatalf("nil image rendered %q", out)
	}
	if out := renderHalfBlocks(solidImage(2, 2, color.NRGBA{A: 255}), 0, 4); out != "" {
		t.Fatalf("zero width rendered %q", out)
	}
}

func TestHexOfFlattensAlpha(t *testing.T) {
	if got := hexOf(color.NRGBA{R: 255, G: 255, B: 255, A: 255}); got != "#ffffff" {
		t.Fatalf("opaque white = %s", got)
	}
	if got := hexOf(color.NRGBA{R: 255, G: 255, B: 255, A: 0}); got != "#000000" {
		t.Fatalf("transparent white = %s, want black", got)
	}
}

func TestPreviewCacheReusesRender(t *testing.T) {
	img := &imageloader.Image{Image: solidImage(4, 4, color.NRGBA{G: 128, A: 255}), Scale: 1}
	var c previewCache

	first := c.render(img, 2, 1)
	c.out = "cached"
	if got := c.render(img, 2, 1); got != "cached" {
		t.Fatalf("same frame re-rendered: %q", got)
	}
	if got := c.render(img, 4, 2); got == "cached" || got == first {
		t.Fatalf("resize did not re-render")
	}
	if got := c.render(nil, 4, 2); got != "" {
		t.Fatalf("nil image rendered %q", got)
	}
}
