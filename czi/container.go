package czi

import (
	"cmp"
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"
	"unsafe"

	"github.com/robert-malhotra/go-czi/internal/alloc"
	"github.com/robert-malhotra/go-czi/internal/pixel"
)

// TileMeta records where a decoded tile lives in an ImagesContainer.
type TileMeta struct {
	Coordinate  Coordinate
	Box         image.Rectangle
	MosaicIndex int
	Offset      int         // element offset of the tile window
	Size        image.Point // width and height in pixels
}

// ImagesContainer owns one typed buffer that decoded tiles are written into
// through disjoint windows. It is consumed by Pack.
type ImagesContainer struct {
	format   PixelFormat
	kind     Kind
	channels int
	alloc    *alloc.Allocator

	mu       sync.Mutex
	buf      Buffer
	tiles    []TileMeta
	consumed bool
}

// NewImagesContainer allocates room for totalPixels pixels of the format.
func NewImagesContainer(format PixelFormat, totalPixels int) (*ImagesContainer, error) {
	kind, err := pixel.KindOf(format)
	if err != nil {
		return nil, err
	}
	channels, _ := pixel.Channels(format)
	if totalPixels < 0 {
		return nil, &AllocationError{What: "images container", Elements: totalPixels}
	}
	n := totalPixels * channels
	buf, err := NewBuffer(kind, n)
	if err != nil {
		return nil, err
	}
	return &ImagesContainer{
		format:   format,
		kind:     kind,
		channels: channels,
		alloc:    alloc.New(n),
		buf:      buf,
	}, nil
}

func (c *ImagesContainer) PixelFormat() PixelFormat { return c.format }
func (c *ImagesContainer) Kind() Kind               { return c.kind }
func (c *ImagesContainer) Channels() int            { return c.channels }

// Len returns the capacity in elements.
func (c *ImagesContainer) Len() int {
	return c.alloc.Capacity()
}

// Remaining returns the number of elements not yet reserved.
func (c *ImagesContainer) Remaining() int {
	return c.alloc.Remaining()
}

// ByteSize returns the capacity in bytes.
func (c *ImagesContainer) ByteSize() int {
	return c.Len() * c.kind.Size()
}

// Buffer returns the owned buffer, or nil once the container is consumed.
func (c *ImagesContainer) Buffer() Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf
}

// ContainerData returns the typed samples of c.
func ContainerData[T Element](c *ImagesContainer) ([]T, error) {
	buf := c.Buffer()
	if buf == nil {
		return nil, ErrConsumed
	}
	return BufferAs[T](buf)
}

// Reserve hands out the next window of pixels pixels and returns its
// element offset. Windows never overlap.
func (c *ImagesContainer) Reserve(pixels int) (int, error) {
	return c.reserve(pixels, "")
}

func (c *ImagesContainer) reserve(pixels int, tag string) (int, error) {
	if c.isConsumed() {
		return 0, ErrConsumed
	}
	n := pixels * c.channels
	off, err := c.alloc.AllocTagged(n, tag)
	if err != nil {
		return 0, &AllocationError{What: "container window", Elements: n, Err: err}
	}
	return off, nil
}

// AddTileMetadata records a decoded tile. Safe for concurrent use.
func (c *ImagesContainer) AddTileMetadata(m TileMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return ErrConsumed
	}
	m.Coordinate = m.Coordinate.Clone()
	c.tiles = append(c.tiles, m)
	return nil
}

// Tiles returns a copy of the recorded metadata in insertion order.
func (c *ImagesContainer) Tiles() []TileMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TileMeta, len(c.tiles))
	copy(out, c.tiles)
	return out
}

// RawPointerAt returns the address of element offset. It panics if offset
// is outside the buffer.
func (c *ImagesContainer) RawPointerAt(offset int) unsafe.Pointer {
	buf := c.Buffer()
	if buf == nil || offset < 0 || offset >= buf.Len() {
		panic(fmt.Sprintf("czi: element offset %d outside container of %d elements", offset, c.Len()))
	}
	return unsafe.Pointer(&buf.Bytes()[offset*c.kind.Size()])
}

// Validate checks that reserved windows and recorded tile windows lie
// within the buffer and do not overlap. Pack runs it before consuming.
func (c *ImagesContainer) Validate() error {
	if err := c.alloc.Validate(); err != nil {
		return err
	}
	tiles := c.Tiles()
	var errs []error
	for i, t := range tiles {
		n := c.window(t)
		if t.Offset < 0 || t.Offset+n > c.Len() {
			errs = append(errs, fmt.Errorf("%w: tile %d (%s): window [%d, +%d) outside %d elements",
				ErrAllocation, i, t.Coordinate, t.Offset, n, c.Len()))
		}
	}

	order := make([]int, len(tiles))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(tiles[a].Offset, tiles[b].Offset) })
	for k := 1; k < len(order); k++ {
		prev, cur := tiles[order[k-1]], tiles[order[k]]
		if prev.Offset+c.window(prev) > cur.Offset {
			errs = append(errs, fmt.Errorf("%w: tile %d (%s) at %d overlaps tile %d (%s) at %d",
				ErrAllocation, order[k], cur.Coordinate, cur.Offset, order[k-1], prev.Coordinate, prev.Offset))
		}
	}
	return errors.Join(errs...)
}

// window returns the number of elements a tile occupies.
func (c *ImagesContainer) window(t TileMeta) int {
	return t.Size.X * t.Size.Y * c.channels
}

func (c *ImagesContainer) isConsumed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consumed
}

// take marks the container consumed and hands over its buffer and metadata.
func (c *ImagesContainer) take() (Buffer, []TileMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return nil, nil, ErrConsumed
	}
	c.consumed = true
	buf, tiles := c.buf, c.tiles
	c.buf, c.tiles = nil, nil
	return buf, tiles, nil
}
