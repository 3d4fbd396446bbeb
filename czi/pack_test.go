package czi

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fill decodes each bitmap into c at the next reserved window.
func fill(t *testing.T, c *ImagesContainer, tiles []Tile) {
	t.Helper()
	f := NewImageFactory()
	for i, tile := range tiles {
		s := tile.Bitmap.Size()
		off, err := c.Reserve(s.X * s.Y)
		if err != nil {
			t.Fatalf("tile %d: Reserve failed: %v", i, err)
		}
		if _, err := f.ConstructInto(tile.Bitmap, tile.Coordinate, tile.Box, c, off, tile.MosaicIndex); err != nil {
			t.Fatalf("tile %d: ConstructInto failed: %v", i, err)
		}
	}
}

func TestPackSingleTile(t *testing.T) {
	tests := []struct {
		name  string
		tile  *MemoryBitmap
		shape string
		len   int
		kind  Kind
	}{
		{"gray8 4x5", gray8(t, 5, 4, make([]uint8, 20)...), "[(Y,4) (X,5)]", 20, KindUint8},
		{"bgr48 2x3", newBitmap(t, Bgr48, 3, 2, 0, make([]byte, 36)), "[(C,3) (Y,2) (X,3)]", 18, KindUint16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.tile.Size()
			c, err := NewImagesContainer(tt.tile.PixelFormat(), size.X*size.Y)
			if err != nil {
				t.Fatalf("NewImagesContainer failed: %v", err)
			}
			fill(t, c, []Tile{{Bitmap: tt.tile, Coordinate: Coordinate{}, MosaicIndex: NoMosaic}})
			before := c.Buffer()

			a, err := Pack(c)
			if err != nil {
				t.Fatalf("Pack failed: %v", err)
			}
			if got := a.Shape.String(); got != tt.shape {
				t.Errorf("shape = %s, want %s", got, tt.shape)
			}
			if a.Len() != tt.len || a.Shape.Len() != tt.len || a.Kind() != tt.kind {
				t.Errorf("len %d shape len %d kind %s", a.Len(), a.Shape.Len(), a.Kind())
			}
			if &a.Bytes()[0] != &before.Bytes()[0] {
				t.Error("single tile pack copied the buffer")
			}
		})
	}
}

func TestPackRejectsOverlappingWindows(t *testing.T) {
	c, _ := NewImagesContainer(Gray8, 8)
	f := NewImageFactory()
	for i, coord := range []string{"T0", "T1"} {
		bm := gray8(t, 2, 2, uint8(i), uint8(i), uint8(i), uint8(i))
		if _, err := f.ConstructInto(bm, mustCoord(t, coord), image.Rectangle{}, c, 0, NoMosaic); err != nil {
			t.Fatalf("ConstructInto(%s) failed: %v", coord, err)
		}
	}
	if _, err := Pack(c); !errors.Is(err, ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
}

func TestPackInPlace(t *testing.T) {
	c, _ := NewImagesContainer(Gray8, 8)
	fill(t, c, []Tile{
		{Bitmap: gray8(t, 2, 2, 0, 1, 2, 3), Coordinate: mustCoord(t, "T0"), MosaicIndex: NoMosaic},
		{Bitmap: gray8(t, 2, 2, 10, 11, 12, 13), Coordinate: mustCoord(t, "T1"), MosaicIndex: NoMosaic},
	})
	before, _ := ContainerData[uint8](c)

	a, err := Pack(c)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if got := a.Shape.String(); got != "[(T,2) (Y,2) (X,2)]" {
		t.Errorf("shape = %s", got)
	}
	data, err := ArrayData[uint8](a)
	if err != nil {
		t.Fatalf("ArrayData failed: %v", err)
	}
	if diff := cmp.Diff([]uint8{0, 1, 2, 3, 10, 11, 12, 13}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if &data[0] != &before[0] {
		t.Error("in-place pack copied the buffer")
	}
}

func TestPackScattersOutOfOrderTiles(t *testing.T) {
	c, _ := NewImagesContainer(Gray8, 8)
	fill(t, c, []Tile{
		{Bitmap: gray8(t, 2, 2, 10, 11, 12, 13), Coordinate: mustCoord(t, "T1"), MosaicIndex: NoMosaic},
		{Bitmap: gray8(t, 2, 2, 0, 1, 2, 3), Coordinate: mustCoord(t, "T0"), MosaicIndex: NoMosaic},
	})
	a, err := Pack(c)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if diff := cmp.Diff([]uint8{0, 1, 2, 3, 10, 11, 12, 13}, []uint8(a.Data.(Uint8Buffer))); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestPackColorMultipliesChannel(t *testing.T) {
	c, _ := NewImagesContainer(Bgr24, 4)
	fill(t, c, []Tile{
		{Bitmap: bgr24Bitmap(t, 2, 1, 1, 2, 3, 4, 5, 6), Coordinate: mustCoord(t, "T0C0"), MosaicIndex: NoMosaic},
		{Bitmap: bgr24Bitmap(t, 2, 1, 11, 12, 13, 14, 15, 16), Coordinate: mustCoord(t, "T1C0"), MosaicIndex: NoMosaic},
	})
	a, err := Pack(c)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if got := a.Shape.String(); got != "[(T,2) (C,3) (Y,1) (X,2)]" {
		t.Errorf("shape = %s", got)
	}
	if a.Dims() != "TCYX" {
		t.Errorf("Dims = %q", a.Dims())
	}
	want := []uint8{
		1, 4, 2, 5, 3, 6,
		11, 14, 12, 15, 13, 16,
	}
	if diff := cmp.Diff(want, []uint8(a.Data.(Uint8Buffer))); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if a.PixelFormat != Bgr24 || a.Kind() != KindUint8 {
		t.Errorf("format %s kind %s", a.PixelFormat, a.Kind())
	}
}

func TestPackColorInsertsChannel(t *testing.T) {
	// C is inserted before Z, so planes of one tile end up interleaved with
	// the other tile's planes.
	c, _ := NewImagesContainer(Bgr24, 2)
	fill(t, c, []Tile{
		{Bitmap: bgr24Bitmap(t, 1, 1, 1, 2, 3), Coordinate: mustCoord(t, "Z0"), MosaicIndex: NoMosaic},
		{Bitmap: bgr24Bitmap(t, 1, 1, 11, 12, 13), Coordinate: mustCoord(t, "Z1"), MosaicIndex: NoMosaic},
	})
	a, err := Pack(c)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if got := a.Shape.String(); got != "[(C,3) (Z,2) (Y,1) (X,1)]" {
		t.Errorf("shape = %s", got)
	}
	if diff := cmp.Diff([]uint8{1, 11, 2, 12, 3, 13}, []uint8(a.Data.(Uint8Buffer))); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestPackMosaic(t *testing.T) {
	c, _ := NewImagesContainer(Gray16, 4)
	fill(t, c, []Tile{
		{Bitmap: gray16(t, 1, 1, 7), Coordinate: mustCoord(t, "S0"), Box: image.Rect(0, 0, 1, 1), MosaicIndex: 0},
		{Bitmap: gray16(t, 1, 1, 8), Coordinate: mustCoord(t, "S0"), Box: image.Rect(1, 0, 2, 1), MosaicIndex: 1},
		{Bitmap: gray16(t, 1, 1, 9), Coordinate: mustCoord(t, "S1"), Box: image.Rect(0, 0, 1, 1), MosaicIndex: 0},
		{Bitmap: gray16(t, 1, 1, 10), Coordinate: mustCoord(t, "S1"), Box: image.Rect(1, 0, 2, 1), MosaicIndex: 1},
	})
	a, err := Pack(c)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if got := a.Shape.String(); got != "[(S,2) (M,2) (Y,1) (X,1)]" {
		t.Errorf("shape = %s", got)
	}
	data, _ := ArrayData[uint16](a)
	if diff := cmp.Diff([]uint16{7, 8, 9, 10}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestPackZeroTiles(t *testing.T) {
	c, _ := NewImagesContainer(Gray32Float, 0)
	a, err := Pack(c)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if a.Shape.Rank() != 0 || a.Len() != 0 || a.Shape.Len() != 0 {
		t.Errorf("expected empty result, got shape %s with %d elements", a.Shape, a.Len())
	}
	if a.Kind() != KindFloat32 {
		t.Errorf("kind = %s, want float32", a.Kind())
	}
}

func TestPackGridErrors(t *testing.T) {
	tests := []struct {
		name  string
		tiles func(t *testing.T) []Tile
	}{
		{"incomplete grid", func(t *testing.T) []Tile {
			return []Tile{
				{Bitmap: gray8(t, 1, 1, 1), Coordinate: mustCoord(t, "T0C0"), MosaicIndex: NoMosaic},
				{Bitmap: gray8(t, 1, 1, 2), Coordinate: mustCoord(t, "T1C1"), MosaicIndex: NoMosaic},
			}
		}},
		{"duplicate position", func(t *testing.T) []Tile {
			return []Tile{
				{Bitmap: gray8(t, 1, 1, 1), Coordinate: mustCoord(t, "T0"), MosaicIndex: NoMosaic},
				{Bitmap: gray8(t, 1, 1, 2), Coordinate: mustCoord(t, "T0"), MosaicIndex: NoMosaic},
			}
		}},
		{"unequal sizes", func(t *testing.T) []Tile {
			return []Tile{
				{Bitmap: gray8(t, 1, 1, 1), Coordinate: mustCoord(t, "T0"), MosaicIndex: NoMosaic},
				{Bitmap: gray8(t, 2, 1, 2, 3), Coordinate: mustCoord(t, "T1"), MosaicIndex: NoMosaic},
			}
		}},
		{"mosaic and non-mosaic", func(t *testing.T) []Tile {
			return []Tile{
				{Bitmap: gray8(t, 1, 1, 1), Coordinate: mustCoord(t, "S0"), MosaicIndex: 0},
				{Bitmap: gray8(t, 1, 1, 2), Coordinate: mustCoord(t, "S0"), MosaicIndex: NoMosaic},
			}
		}},
		{"spatial coordinate", func(t *testing.T) []Tile {
			return []Tile{
				{Bitmap: gray8(t, 1, 1, 1), Coordinate: Coordinate{DimY: 0}, MosaicIndex: NoMosaic},
				{Bitmap: gray8(t, 1, 1, 2), Coordinate: Coordinate{DimY: 1}, MosaicIndex: NoMosaic},
			}
		}},
		{"different axes", func(t *testing.T) []Tile {
			return []Tile{
				{Bitmap: gray8(t, 1, 1, 1), Coordinate: mustCoord(t, "T0"), MosaicIndex: NoMosaic},
				{Bitmap: gray8(t, 1, 1, 2), Coordinate: mustCoord(t, "Z0"), MosaicIndex: NoMosaic},
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := tt.tiles(t)
			c, _ := NewImagesContainer(Gray8, 3)
			fill(t, c, tiles)
			if _, err := Pack(c); !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("expected ErrShapeMismatch, got %v", err)
			}
		})
	}
}

func TestSortTiles(t *testing.T) {
	tiles := []TileMeta{
		{Coordinate: Coordinate{DimT: 1, DimC: 0}, MosaicIndex: 0, Offset: 0},
		{Coordinate: Coordinate{DimT: 0, DimC: 1}, MosaicIndex: 0, Offset: 1},
		{Coordinate: Coordinate{DimT: 0, DimC: 0}, MosaicIndex: 1, Offset: 2},
		{Coordinate: Coordinate{DimT: 0, DimC: 0}, MosaicIndex: 0, Offset: 3},
	}
	sortTiles(tiles)
	got := make([]int, len(tiles))
	for i, m := range tiles {
		got[i] = m.Offset
	}
	if diff := cmp.Diff([]int{3, 2, 1, 0}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
