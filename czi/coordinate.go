package czi

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-czi/internal/shape"
)

// NoMosaic marks a tile that is not part of a mosaic scene.
const NoMosaic = -1

// Coordinate locates a tile along the non-spatial acquisition axes.
// It is carried through unchanged and only read when the final shape is
// computed.
type Coordinate map[Dim]int

// Dims returns the labels of c in canonical order.
func (c Coordinate) Dims() []Dim {
	dims := make([]Dim, 0, len(c))
	for d := range c {
		dims = append(dims, d)
	}
	shape.SortDims(dims)
	return dims
}

// Clone returns a copy of c.
func (c Coordinate) Clone() Coordinate {
	if c == nil {
		return nil
	}
	out := make(Coordinate, len(c))
	for d, v := range c {
		out[d] = v
	}
	return out
}

// String formats c in canonical order, e.g. "T0C1Z4".
func (c Coordinate) String() string {
	var b strings.Builder
	for _, d := range c.Dims() {
		b.WriteByte(byte(d))
		b.WriteString(strconv.Itoa(c[d]))
	}
	return b.String()
}

// ParseCoordinate parses the String form of a Coordinate.
func ParseCoordinate(s string) (Coordinate, error) {
	c := Coordinate{}
	for i := 0; i < len(s); {
		d := s[i]
		if !(d >= 'A' && d <= 'Z') {
			return nil, fmt.Errorf("coordinate %q: expected dimension label at %d", s, i)
		}
		if d == 'Y' || d == 'X' {
			return nil, fmt.Errorf("coordinate %q: %c is a spatial axis", s, d)
		}
		j := i + 1
		if j < len(s) && s[j] == '-' {
			j++
		}
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		v, err := strconv.Atoi(s[i+1 : j])
		if err != nil {
			return nil, fmt.Errorf("coordinate %q: index for %c: %w", s, d, err)
		}
		if _, dup := c[Dim(d)]; dup {
			return nil, fmt.Errorf("coordinate %q: duplicate dimension %c", s, d)
		}
		c[Dim(d)] = v
		i = j
	}
	return c, nil
}

// Tile is one decoded sub-block as delivered by a reader.
type Tile struct {
	Bitmap      Bitmap
	Coordinate  Coordinate
	Box         image.Rectangle // location of the tile within the scene
	MosaicIndex int             // NoMosaic if the scene is not a mosaic
}
