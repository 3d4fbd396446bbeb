package czi

import (
	"cmp"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/robert-malhotra/go-czi/internal/pixel"
	"github.com/robert-malhotra/go-czi/internal/shape"
)

// Pack consumes c and returns its tiles as one array in canonical
// dimension order. Non-spatial extents are the number of distinct values
// each coordinate axis takes; Y and X come from the common tile size. Color
// formats multiply C by 3, or add (C,3) when no tile carries C.
//
// When every tile already sits at its final position the container buffer
// is handed over without copying; otherwise planes are scattered into a new
// buffer.
func Pack(c *ImagesContainer) (*Array, error) {
	return pack(c, defaultOptions().logger)
}

func pack(c *ImagesContainer, logger *slog.Logger) (*Array, error) {
	if c == nil {
		return nil, &AllocationError{What: "nil container"}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	buf, tiles, err := c.take()
	if err != nil {
		return nil, err
	}
	format := c.PixelFormat()

	if len(tiles) == 0 {
		empty, err := NewBuffer(c.Kind(), 0)
		if err != nil {
			return nil, err
		}
		return &Array{Shape: Shape{}, Data: empty, PixelFormat: format}, nil
	}

	sortTiles(tiles)

	g, err := planGrid(tiles, format, buf.Len())
	if err != nil {
		return nil, err
	}

	if g.inPlace() && g.shape.Len() == buf.Len() {
		logger.Debug("packed without copy", "shape", g.shape.String(), "extent", tileRect(tiles))
		return &Array{Shape: g.shape, Data: buf, PixelFormat: format}, nil
	}

	out, err := NewBuffer(c.Kind(), g.shape.Len())
	if err != nil {
		return nil, err
	}
	scatter(out, buf, g.moves, g.plane)
	logger.Debug("packed by scatter", "shape", g.shape.String(), "planes", len(g.moves), "extent", tileRect(tiles))
	return &Array{Shape: g.shape, Data: out, PixelFormat: format}, nil
}

// sortTiles orders tiles by coordinate values in dimension priority order,
// then mosaic index, then decode offset.
func sortTiles(tiles []TileMeta) {
	dims := lo.Uniq(lo.FlatMap(tiles, func(t TileMeta, _ int) []Dim { return t.Coordinate.Dims() }))
	shape.SortDims(dims)
	slices.SortStableFunc(tiles, func(a, b TileMeta) int {
		for _, d := range dims {
			va, oka := a.Coordinate[d]
			vb, okb := b.Coordinate[d]
			if oka != okb {
				if oka {
					return -1
				}
				return 1
			}
			if r := cmp.Compare(va, vb); r != 0 {
				return r
			}
		}
		if r := cmp.Compare(a.MosaicIndex, b.MosaicIndex); r != 0 {
			return r
		}
		return cmp.Compare(a.Offset, b.Offset)
	})
}

// move copies one plane from src to dst.
type move struct {
	src, dst int
}

type grid struct {
	shape Shape
	plane int // elements per Y x X plane
	moves []move
}

func (g *grid) inPlace() bool {
	for _, m := range g.moves {
		if m.src != m.dst {
			return false
		}
	}
	return true
}

// planGrid computes the final shape and the destination of every tile plane.
// avail is the number of elements the source buffer holds.
func planGrid(tiles []TileMeta, format PixelFormat, avail int) (*grid, error) {
	channels, err := pixel.Channels(format)
	if err != nil {
		return nil, err
	}
	size := tiles[0].Size
	for _, t := range tiles[1:] {
		if t.Size != size {
			return nil, fmt.Errorf("%w: tile %s is %dx%d, expected %dx%d",
				ErrShapeMismatch, t.Coordinate, t.Size.X, t.Size.Y, size.X, size.Y)
		}
	}

	dims := tiles[0].Coordinate.Dims()
	for _, t := range tiles[1:] {
		if got := t.Coordinate.Dims(); !slices.Equal(got, dims) {
			return nil, fmt.Errorf("%w: tile %s has axes %q, expected %q",
				ErrShapeMismatch, t.Coordinate, dimString(got), dimString(dims))
		}
	}
	mosaic := lo.SomeBy(tiles, func(t TileMeta) bool { return t.MosaicIndex >= 0 })
	if mosaic && slices.Contains(dims, shape.M) {
		return nil, fmt.Errorf("%w: M is both a coordinate axis and the mosaic index", ErrShapeMismatch)
	}
	if mosaic {
		if t, ok := lo.Find(tiles, func(t TileMeta) bool { return t.MosaicIndex < 0 }); ok {
			return nil, fmt.Errorf("%w: tile %s has no mosaic index in a mosaic scene", ErrShapeMismatch, t.Coordinate)
		}
	}

	// rank of each distinct value per axis
	values := func(d Dim) []int {
		if d == shape.M && mosaic {
			return lo.Map(tiles, func(t TileMeta, _ int) int { return t.MosaicIndex })
		}
		return lo.Map(tiles, func(t TileMeta, _ int) int { return t.Coordinate[d] })
	}
	axes := slices.Clone(dims)
	if mosaic {
		axes = append(axes, shape.M)
	}
	rank := make(map[Dim]map[int]int, len(axes))
	var s Shape
	for _, d := range axes {
		distinct := lo.Uniq(values(d))
		slices.Sort(distinct)
		rank[d] = make(map[int]int, len(distinct))
		for i, v := range distinct {
			rank[d][v] = i
		}
		s = append(s, shape.Entry{Dim: d, Extent: len(distinct)})
	}

	color := channels == 3
	if color {
		if i, ok := s.Find(shape.C); ok {
			s[i].Extent *= 3
		} else {
			s = append(s, shape.Entry{Dim: shape.C, Extent: 3})
		}
	}
	s = append(s, shape.Entry{Dim: shape.Y, Extent: size.Y}, shape.Entry{Dim: shape.X, Extent: size.X})
	s.Sort()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	planes := len(tiles) * channels
	if s.Len() != planes*size.X*size.Y {
		return nil, fmt.Errorf("%w: %d tiles do not fill shape %s", ErrShapeMismatch, len(tiles), s)
	}

	g := &grid{shape: s, plane: size.X * size.Y, moves: make([]move, 0, planes)}
	seen := make(map[int]bool, planes)
	idx := make([]int, len(s))
	for _, t := range tiles {
		for ch := 0; ch < channels; ch++ {
			for i, e := range s {
				switch {
				case e.Dim == shape.Y || e.Dim == shape.X:
					idx[i] = 0
				case e.Dim == shape.C && color:
					idx[i] = 0
					if _, ok := rank[shape.C]; ok {
						idx[i] = rank[shape.C][t.Coordinate[shape.C]] * 3
					}
					idx[i] += ch
				case e.Dim == shape.M && mosaic:
					idx[i] = rank[shape.M][t.MosaicIndex]
				default:
					idx[i] = rank[e.Dim][t.Coordinate[e.Dim]]
				}
			}
			dst, err := s.Index(idx...)
			if err != nil {
				return nil, err
			}
			if seen[dst] {
				return nil, fmt.Errorf("%w: tile %s (mosaic %d) duplicates a grid position",
					ErrShapeMismatch, t.Coordinate, t.MosaicIndex)
			}
			seen[dst] = true
			src := t.Offset + ch*g.plane
			if src < 0 || src+g.plane > avail {
				return nil, &AllocationError{
					What:     fmt.Sprintf("tile %s window at %d in container of %d elements", t.Coordinate, t.Offset, avail),
					Elements: g.plane * channels,
				}
			}
			g.moves = append(g.moves, move{src: src, dst: dst})
		}
	}
	return g, nil
}

func dimString(dims []Dim) string {
	b := make([]byte, len(dims))
	for i, d := range dims {
		b[i] = byte(d)
	}
	return string(b)
}

func scatter(dst, src Buffer, moves []move, plane int) {
	switch d := dst.(type) {
	case Uint8Buffer:
		scatterPlanes(d, src.(Uint8Buffer), moves, plane)
	case Uint16Buffer:
		scatterPlanes(d, src.(Uint16Buffer), moves, plane)
	case Uint32Buffer:
		scatterPlanes(d, src.(Uint32Buffer), moves, plane)
	case Float32Buffer:
		scatterPlanes(d, src.(Float32Buffer), moves, plane)
	}
}

func scatterPlanes[S ~[]T, T Element](dst, src S, moves []move, plane int) {
	for _, m := range moves {
		copy(dst[m.dst:m.dst+plane], src[m.src:m.src+plane])
	}
}

// tileRect returns the union of all tile boxes.
func tileRect(tiles []TileMeta) image.Rectangle {
	var r image.Rectangle
	for _, t := range tiles {
		r = r.Union(t.Box)
	}
	return r
}
