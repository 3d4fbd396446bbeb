package czi

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/robert-malhotra/go-czi/internal/pixel"
)

// tileHeader is the element-type independent part of a construction request.
type tileHeader struct {
	bitmap   Bitmap
	format   PixelFormat
	channels int
	size     image.Point
	coord    Coordinate
	box      image.Rectangle
	mosaic   int
}

func (h tileHeader) elements() int {
	return h.size.X * h.size.Y * h.channels
}

// constructor builds a TypedImage of one element type.
type constructor struct {
	owned func(h tileHeader) (Image, error)
	into  func(h tileHeader, c *ImagesContainer, offset int) (Image, error)
}

func typed[T Element]() constructor {
	return constructor{owned: newOwned[T], into: newBorrowed[T]}
}

// constructors maps each storable format to the constructor of its element
// type. Color formats share the constructor of their gray counterpart.
var constructors = map[PixelFormat]constructor{
	Gray8:       typed[uint8](),
	Bgr24:       typed[uint8](),
	Gray16:      typed[uint16](),
	Bgr48:       typed[uint16](),
	Gray32:      typed[uint32](),
	Gray32Float: typed[float32](),
	Bgr96Float:  typed[float32](),
}

func newOwned[T Element](h tileHeader) (Image, error) {
	n := h.elements()
	m := &TypedImage[T]{
		shape:  imageShape(h.channels, h.size),
		format: h.format,
		coord:  h.coord.Clone(),
		box:    h.box,
		mosaic: h.mosaic,
		data:   make([]T, n),
	}
	if err := m.load(h.bitmap); err != nil {
		return nil, err
	}
	return m, nil
}

func newBorrowed[T Element](h tileHeader, c *ImagesContainer, offset int) (Image, error) {
	n := h.elements()
	data, err := ContainerData[T](c)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset+n > len(data) {
		return nil, &AllocationError{
			What:     fmt.Sprintf("window at %d in container of %d elements", offset, len(data)),
			Elements: n,
		}
	}
	m := &TypedImage[T]{
		shape:     imageShape(h.channels, h.size),
		format:    h.format,
		coord:     h.coord.Clone(),
		box:       h.box,
		mosaic:    h.mosaic,
		data:      data[offset : offset+n : offset+n],
		container: c,
		offset:    offset,
	}
	if err := m.load(h.bitmap); err != nil {
		return nil, err
	}
	err = c.AddTileMetadata(TileMeta{
		Coordinate:  h.coord,
		Box:         h.box,
		MosaicIndex: h.mosaic,
		Offset:      offset,
		Size:        h.size,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ImageFactory turns decoded bitmaps into typed images.
type ImageFactory struct {
	logger *slog.Logger
}

// NewImageFactory creates an ImageFactory. Only WithLogger applies.
func NewImageFactory(opts ...Option) *ImageFactory {
	o := buildOptions(opts)
	return &ImageFactory{logger: o.logger}
}

func (f *ImageFactory) header(bm Bitmap, coord Coordinate, box image.Rectangle, mosaic int) (tileHeader, constructor, error) {
	if bm == nil {
		return tileHeader{}, constructor{}, &AllocationError{What: "nil bitmap"}
	}
	format := bm.PixelFormat()
	ctor, ok := constructors[format]
	if !ok {
		return tileHeader{}, constructor{}, &PixelFormatError{Format: format}
	}
	size := bm.Size()
	if size.X <= 0 || size.Y <= 0 {
		return tileHeader{}, constructor{}, &AllocationError{What: fmt.Sprintf("%dx%d tile", size.X, size.Y)}
	}
	channels, _ := pixel.Channels(format)
	return tileHeader{
		bitmap:   bm,
		format:   format,
		channels: channels,
		size:     size,
		coord:    coord,
		box:      box,
		mosaic:   mosaic,
	}, ctor, nil
}

// ConstructImage copies bm into a new image that owns its samples.
func (f *ImageFactory) ConstructImage(bm Bitmap, coord Coordinate, box image.Rectangle, mosaicIndex int) (Image, error) {
	h, ctor, err := f.header(bm, coord, box, mosaicIndex)
	if err != nil {
		return nil, err
	}
	img, err := ctor.owned(h)
	if err != nil {
		return nil, fmt.Errorf("construct %s tile %s: %w", h.format, coord, err)
	}
	f.logger.Debug("constructed image",
		"format", h.format, "coordinate", coord.String(), "shape", img.Shape().String())
	return img, nil
}

// ConstructInto copies bm into the window of c starting at element offset
// and records the tile in c. The bitmap format must equal the container
// format.
func (f *ImageFactory) ConstructInto(bm Bitmap, coord Coordinate, box image.Rectangle, c *ImagesContainer, offset, mosaicIndex int) (Image, error) {
	h, ctor, err := f.header(bm, coord, box, mosaicIndex)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &AllocationError{What: "nil container"}
	}
	if h.format != c.PixelFormat() {
		return nil, fmt.Errorf("%w: bitmap is %s, container is %s", ErrMixedPixelFormats, h.format, c.PixelFormat())
	}
	img, err := ctor.into(h, c, offset)
	if err != nil {
		return nil, fmt.Errorf("construct %s tile %s at %d: %w", h.format, coord, offset, err)
	}
	f.logger.Debug("constructed image into container",
		"format", h.format, "coordinate", coord.String(), "offset", offset)
	return img, nil
}
