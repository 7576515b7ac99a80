package recipes

import (
	"errors"
	"fmt"
)

// ErrorKind classifies recipe service failures.
type ErrorKind int

const (
	InvalidURL ErrorKind = iota + 1
	InvalidResponse
	ServerError
	DecodingError
	NetworkError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidURL:
		return "invalid url"
	case InvalidResponse:
		return "invalid response"
	case ServerError:
		return "server error"
	case DecodingError:
		return "decoding error"
	case NetworkError:
		return "network error"
	default:
		return "unknown error"
	}
}

// Error is the only error type FetchRecipes returns.
type Error struct {
	Kind       ErrorKind
	StatusCode int // set for ServerError
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ServerError:
		return fmt.Sprintf("recipes: %s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("recipes: %s: %v", e.Kind, e.Err)
	default:
		return "recipes: " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &recipes.Error{Kind: recipes.DecodingError}).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// KindOf returns the kind of a recipe service error, or zero.
func KindOf(err error) ErrorKind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return 0
}
