package imageloader

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_PNG(t *testing.T) {
	img, err := Decode(pngBytes(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, img.Scale)
	w, h := img.PixelSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
}

func TestDecode_WebP(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 3; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 90, G: 40, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, src, &webp.Options{Lossless: true}))
	require.True(t, isWebP(buf.Bytes()))

	img, err := Decode(buf.Bytes(), 2)
	require.NoError(t, err)
	w, h := img.PixelSize()
	assert.Equal(t, 3, w)
	assert.Equal(t, 5, h)
	assert.Equal(t, 2.0, img.Scale)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode(nil, 1)
	assert.Error(t, err)
	_, err = Decode([]byte("not an image"), 1)
	assert.Error(t, err)
	_, err = Decode([]byte("RIFF\x00\x00\x00\x00WEBPjunk"), 1)
	assert.Error(t, err)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "empty", Empty().String())
	assert.Equal(t, "success", Success(&Image{}).String())
	assert.Contains(t, Failure(&Error{Kind: IncorrectStatusCode, StatusCode: 500}).String(), "500")
}
