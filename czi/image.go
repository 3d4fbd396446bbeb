package czi

import (
	"fmt"
	"image"

	"github.com/robert-malhotra/go-czi/internal/layout"
	"github.com/robert-malhotra/go-czi/internal/pixel"
	"github.com/robert-malhotra/go-czi/internal/shape"
)

// Ownership tells whether an image owns its samples or views a container.
type Ownership uint8

const (
	Owned    Ownership = iota // fresh slice sized to the tile
	Borrowed                  // window into an ImagesContainer
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// Image is the element-type independent view of a TypedImage.
type Image interface {
	Shape() Shape
	PixelFormat() PixelFormat
	Kind() Kind
	Coordinate() Coordinate
	Box() image.Rectangle
	MosaicIndex() int
	Len() int
	Ownership() Ownership
	Bytes() []byte
}

// TypedImage is one decoded tile stored as planar samples of type T.
// Its shape is [(Y,h) (X,w)] for gray formats and [(C,3) (Y,h) (X,w)] for
// color formats, with plane 0 holding blue, 1 green and 2 red.
type TypedImage[T Element] struct {
	shape  Shape
	format PixelFormat
	coord  Coordinate
	box    image.Rectangle
	mosaic int

	data      []T
	container *ImagesContainer // nil when owned
	offset    int
}

func (m *TypedImage[T]) Shape() Shape             { return m.shape.Clone() }
func (m *TypedImage[T]) PixelFormat() PixelFormat { return m.format }
func (m *TypedImage[T]) Kind() Kind               { return kindFor[T]() }
func (m *TypedImage[T]) Coordinate() Coordinate   { return m.coord.Clone() }
func (m *TypedImage[T]) Box() image.Rectangle     { return m.box }
func (m *TypedImage[T]) MosaicIndex() int         { return m.mosaic }
func (m *TypedImage[T]) Len() int                 { return len(m.data) }
func (m *TypedImage[T]) Bytes() []byte            { return layout.Bytes(m.data) }

func (m *TypedImage[T]) Ownership() Ownership {
	if m.container != nil {
		return Borrowed
	}
	return Owned
}

// Data returns the samples. For a borrowed image this aliases the container.
func (m *TypedImage[T]) Data() []T {
	return m.data
}

// Container returns the container a borrowed image views and the element
// offset of its window. It returns nil for owned images.
func (m *TypedImage[T]) Container() (*ImagesContainer, int) {
	return m.container, m.offset
}

// Index returns the flat offset of the multi-index idx, which must have one
// entry per axis.
func (m *TypedImage[T]) Index(idx ...int) (int, error) {
	return m.shape.Index(idx...)
}

// At returns the sample at the multi-index idx.
func (m *TypedImage[T]) At(idx ...int) (T, error) {
	i, err := m.shape.Index(idx...)
	if err != nil {
		var zero T
		return zero, err
	}
	return m.data[i], nil
}

// Channel copies plane i of a color image into a new owned gray image.
func (m *TypedImage[T]) Channel(i int) (*TypedImage[T], error) {
	if !m.format.IsColor() {
		return nil, fmt.Errorf("channel split of %s: not a color format", m.format)
	}
	if i < 0 || i >= 3 {
		return nil, fmt.Errorf("%w: channel %d of 3", ErrIndexOutOfRange, i)
	}
	gray, err := m.format.Gray()
	if err != nil {
		return nil, err
	}
	plane := m.shape.Len() / 3
	data := make([]T, plane)
	copy(data, m.data[i*plane:(i+1)*plane])
	return &TypedImage[T]{
		shape:  m.shape[1:].Clone(),
		format: gray,
		coord:  m.coord.Clone(),
		box:    m.box,
		mosaic: m.mosaic,
		data:   data,
	}, nil
}

// ImageAs recovers the TypedImage behind img. It fails with ErrElementKind
// when T is not the element type of the image.
func ImageAs[T Element](img Image) (*TypedImage[T], error) {
	m, ok := img.(*TypedImage[T])
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: image holds %s, requested %T", ErrElementKind, img.Kind(), zero)
	}
	return m, nil
}

// imageShape returns the tile shape for a format and bitmap size.
func imageShape(channels int, size image.Point) Shape {
	s := Shape{{Dim: shape.Y, Extent: size.Y}, {Dim: shape.X, Extent: size.X}}
	if channels == 3 {
		s = append(Shape{{Dim: shape.C, Extent: 3}}, s...)
	}
	return s
}

// load copies the bitmap samples into m.data, removing row padding and
// converting interleaved color samples to planes.
func (m *TypedImage[T]) load(bm Bitmap) error {
	channels, err := pixel.Channels(m.format)
	if err != nil {
		return err
	}
	size := bm.Size()
	rowBytes := size.X * channels * layout.SizeOf[T]()

	return withLock(bm, func(li LockInfo) error {
		stride := li.Stride
		if stride == 0 {
			stride = rowBytes
		}
		var err error
		if channels == 1 {
			err = layout.CopyRows(layout.Bytes(m.data), li.Data, size.Y, rowBytes, stride)
		} else {
			err = layout.CopyInterleavedRows(m.data, li.Data, size.Y, size.X, channels, stride, make([]T, size.X*channels))
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBitmap, err)
		}
		return nil
	})
}
