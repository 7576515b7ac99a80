package imageloader

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var errNoData = errors.New("empty image data")

// Decode turns encoded bytes into an Image. WebP is detected from the RIFF
// header; every other format goes through imaging with EXIF orientation
// applied.
func Decode(data []byte, scale float64) (*Image, error) {
	if len(data) == 0 {
		return nil, errNoData
	}
	if scale <= 0 {
		scale = 1
	}
	if isWebP(data) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode webp: %w", err)
		}
		return &Image{Image: img, Scale: scale}, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &Image{Image: img, Scale: scale}, nil
}

func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WEBP"))
}
