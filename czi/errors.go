package czi

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-czi/internal/pixel"
	"github.com/robert-malhotra/go-czi/internal/shape"
)

// Common errors
var (
	ErrUnsupportedPixelFormat = pixel.ErrUnsupported
	ErrShapeMismatch          = shape.ErrMismatch
	ErrIndexOutOfRange        = shape.ErrOutOfRange
	ErrAllocation             = errors.New("allocation failure")
	ErrElementKind            = errors.New("element kind mismatch")
	ErrConsumed               = errors.New("container already packed")
	ErrMixedPixelFormats      = errors.New("tiles have different pixel formats")
	ErrBitmap                 = errors.New("invalid bitmap")
)

// PixelFormatError carries the offending format id of an
// ErrUnsupportedPixelFormat failure.
type PixelFormatError = pixel.UnsupportedError

// ShapeMismatchError reports a multi-index of the wrong rank.
type ShapeMismatchError = shape.MismatchError

// AllocationError reports storage that could not be provided.
type AllocationError struct {
	What     string
	Elements int
	Err      error
}

func (e *AllocationError) Error() string {
	msg := fmt.Sprintf("allocation failure: %s (%d elements)", e.What, e.Elements)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocation
}
