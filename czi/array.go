package czi

import (
	"fmt"

	"github.com/robert-malhotra/go-czi/internal/layout"
	"github.com/robert-malhotra/go-czi/internal/shape"
)

// Array is the packed result: one flat buffer in C order, its labelled
// shape and the pixel format of the tiles it was built from.
type Array struct {
	Shape       Shape
	Data        Buffer
	PixelFormat PixelFormat
}

// NewArray wraps data with a shape. The shape must describe exactly the
// number of elements in data.
func NewArray(s Shape, data Buffer, format PixelFormat) (*Array, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrAllocation)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Len() != data.Len() {
		return nil, fmt.Errorf("%w: shape %s holds %d elements, buffer has %d", ErrShapeMismatch, s, s.Len(), data.Len())
	}
	return &Array{Shape: s, Data: data, PixelFormat: format}, nil
}

func (a *Array) Kind() Kind { return a.Data.Kind() }
func (a *Array) Len() int   { return a.Data.Len() }

// Dims returns the axis labels in order, e.g. "TCYX".
func (a *Array) Dims() string { return a.Shape.Dims() }

// Bytes returns the samples in host byte order without copying.
func (a *Array) Bytes() []byte { return a.Data.Bytes() }

// Index returns the flat offset of the multi-index idx.
func (a *Array) Index(idx ...int) (int, error) {
	return a.Shape.Index(idx...)
}

// ArrayData returns the typed samples of a.
func ArrayData[T Element](a *Array) ([]T, error) {
	return BufferAs[T](a.Data)
}

// Plane copies the Y x X plane selected by coord, which must name every
// other axis of the array.
func (a *Array) Plane(coord map[Dim]int) (*Array, error) {
	if _, ok := a.Shape.Find(shape.Y); !ok {
		return nil, fmt.Errorf("%w: array %s has no Y axis", ErrShapeMismatch, a.Shape)
	}
	if _, ok := a.Shape.Find(shape.X); !ok {
		return nil, fmt.Errorf("%w: array %s has no X axis", ErrShapeMismatch, a.Shape)
	}

	start := make([]int, a.Shape.Rank())
	count := make([]int, a.Shape.Rank())
	used := 0
	for i, e := range a.Shape {
		if e.Dim == shape.Y || e.Dim == shape.X {
			count[i] = e.Extent
			continue
		}
		v, ok := coord[e.Dim]
		if !ok {
			return nil, fmt.Errorf("%w: no index for axis %s", ErrShapeMismatch, e.Dim)
		}
		if v < 0 || v >= e.Extent {
			return nil, fmt.Errorf("%w: index %d on axis %s with extent %d", ErrIndexOutOfRange, v, e.Dim, e.Extent)
		}
		start[i], count[i] = v, 1
		used++
	}
	if used != len(coord) {
		return nil, fmt.Errorf("%w: coordinate names axes not in %s", ErrShapeMismatch, a.Shape)
	}

	out := Shape{{Dim: shape.Y, Extent: a.Shape.Extent(shape.Y)}, {Dim: shape.X, Extent: a.Shape.Extent(shape.X)}}
	data, err := hyperslab(a.Data, a.Shape.Extents(), start, count)
	if err != nil {
		return nil, err
	}
	format := a.PixelFormat
	if format.IsColor() {
		if format, err = format.Gray(); err != nil {
			return nil, err
		}
	}
	return &Array{Shape: out, Data: data, PixelFormat: format}, nil
}

func hyperslab(b Buffer, dims, start, count []int) (Buffer, error) {
	switch v := b.(type) {
	case Uint8Buffer:
		s, err := layout.Hyperslab([]uint8(v), dims, start, count)
		return Uint8Buffer(s), err
	case Uint16Buffer:
		s, err := layout.Hyperslab([]uint16(v), dims, start, count)
		return Uint16Buffer(s), err
	case Uint32Buffer:
		s, err := layout.Hyperslab([]uint32(v), dims, start, count)
		return Uint32Buffer(s), err
	case Float32Buffer:
		s, err := layout.Hyperslab([]float32(v), dims, start, count)
		return Float32Buffer(s), err
	}
	return nil, fmt.Errorf("%w: nil buffer", ErrElementKind)
}
