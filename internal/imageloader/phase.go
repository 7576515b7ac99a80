package imageloader

import (
	"errors"
	"fmt"
	"image"
)

type phaseKind int

const (
	phaseEmpty phaseKind = iota
	phaseSuccess
	phaseFailure
)

// Phase is the state of one loader: empty, success with an image, or failure
// with an error.
type Phase struct {
	kind  phaseKind
	Image *Image
	Err   error
}

// Empty is the phase before any load and after a reset.
func Empty() Phase { return Phase{kind: phaseEmpty} }

// Success wraps a decoded image.
func Success(img *Image) Phase { return Phase{kind: phaseSuccess, Image: img} }

// Failure wraps a load error.
func Failure(err error) Phase { return Phase{kind: phaseFailure, Err: err} }

func (p Phase) IsEmpty() bool   { return p.kind == phaseEmpty }
func (p Phase) IsSuccess() bool { return p.kind == phaseSuccess }
func (p Phase) IsFailure() bool { return p.kind == phaseFailure }

func (p Phase) String() string {
	switch p.kind {
	case phaseSuccess:
		return "success"
	case phaseFailure:
		return fmt.Sprintf("failure(%v)", p.Err)
	default:
		return "empty"
	}
}

// Image is a decoded raster plus the display scale it was requested at.
type Image struct {
	Image image.Image
	Scale float64
}

// PixelSize returns the raster dimensions.
func (i *Image) PixelSize() (int, int) {
	if i == nil || i.Image == nil {
		return 0, 0
	}
	b := i.Image.Bounds()
	return b.Dx(), b.Dy()
}

// PointSize returns the dimensions divided by Scale.
func (i *Image) PointSize() (float64, float64) {
	w, h := i.PixelSize()
	scale := 1.0
	if i != nil && i.Scale > 0 {
		scale = i.Scale
	}
	return float64(w) / scale, float64(h) / scale
}

// ErrorKind classifies load failures.
type ErrorKind int

const (
	TransportError ErrorKind = iota + 1
	IncorrectStatusCode
	IncorrectDataType
)

func (k ErrorKind) String() string {
	switch k {
	case TransportError:
		return "transport error"
	case IncorrectStatusCode:
		return "incorrect status code"
	case IncorrectDataType:
		return "incorrect data type"
	default:
		return "unknown"
	}
}

// Error is the only error type a Loader ever reports in a failure phase.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == IncorrectStatusCode:
		return fmt.Sprintf("image load: %s %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("image load: %s: %v", e.Kind, e.Err)
	default:
		return "image load: " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &imageloader.Error{Kind: imageloader.IncorrectDataType}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
