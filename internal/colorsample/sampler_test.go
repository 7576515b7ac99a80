package colorsample

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1.0 / 255

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAverage_UniformColorIsPreserved(t *testing.T) {
	colors := []color.NRGBA{
		{R: 255, G: 0, B: 0, A: 255},
		{R: 12, G: 200, B: 99, A: 255},
		{R: 0, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	sizes := [][2]int{{1, 1}, {40, 40}, {300, 120}, {7, 513}}

	for _, alg := range []Algorithm{Simple, SquareRoot} {
		for _, c := range colors {
			for _, size := range sizes {
				got, ok := Average(uniform(size[0], size[1], c), alg)
				require.True(t, ok)
				assert.InDelta(t, float64(c.R)/255, got.R, tolerance, "%v %v %v", alg, c, size)
				assert.InDelta(t, float64(c.G)/255, got.G, tolerance, "%v %v %v", alg, c, size)
				assert.InDelta(t, float64(c.B)/255, got.B, tolerance, "%v %v %v", alg, c, size)
			}
		}
	}
}

func TestAverage_SquareRootFavoursBrightPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, A: 255})

	simple, ok := Average(img, Simple)
	require.True(t, ok)
	sqrt, ok := Average(img, SquareRoot)
	require.True(t, ok)

	assert.Greater(t, sqrt.R, simple.R)
}

func TestAverage_TransparentPixelsCountAsBlack(t *testing.T) {
	got, ok := Average(uniform(10, 10, color.NRGBA{R: 255, G: 255, B: 255, A: 0}), Simple)
	require.True(t, ok)
	assert.InDelta(t, 0, got.R, tolerance)
}

func TestAverage_Deterministic(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 97, 61))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 31)
	}
	a, _ := Average(img, SquareRoot)
	b, _ := Average(img, SquareRoot)
	assert.Equal(t, a, b)
}

func TestAverage_NoPixels(t *testing.T) {
	_, ok := Average(nil, Simple)
	assert.False(t, ok)
	_, ok = Average(image.NewNRGBA(image.Rect(0, 0, 0, 0)), Simple)
	assert.False(t, ok)
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", Simple, false},
		{"simple", Simple, false},
		{"SQUARE_ROOT", SquareRoot, false},
		{" sqrt ", SquareRoot, false},
		{"median", Simple, true},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
	assert.Equal(t, SquareRoot, Simple.Next())
	assert.Equal(t, Simple, SquareRoot.Next())
}

func mustParse(t *testing.T, s string) Algorithm {
	t.Helper()
	a, err := ParseAlgorithm(s)
	require.NoError(t, err)
	return a
}
