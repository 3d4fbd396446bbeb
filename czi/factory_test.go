package czi

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robert-malhotra/go-czi/internal/pixel"
)

func TestConstructGray8Shape(t *testing.T) {
	samples := make([]uint8, 20)
	for i := range samples {
		samples[i] = uint8(i)
	}
	f := NewImageFactory()
	img, err := f.ConstructImage(gray8(t, 5, 4, samples...), Coordinate{DimT: 0}, image.Rect(0, 0, 5, 4), NoMosaic)
	if err != nil {
		t.Fatalf("ConstructImage failed: %v", err)
	}

	if got := img.Shape().String(); got != "[(Y,4) (X,5)]" {
		t.Errorf("shape = %s, want [(Y,4) (X,5)]", got)
	}
	if img.Len() != 20 {
		t.Errorf("Len = %d, want 20", img.Len())
	}
	if img.Kind() != KindUint8 || img.Ownership() != Owned {
		t.Errorf("kind %s ownership %s", img.Kind(), img.Ownership())
	}

	m, err := ImageAs[uint8](img)
	if err != nil {
		t.Fatalf("ImageAs failed: %v", err)
	}
	if diff := cmp.Diff(samples, m.Data()); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	v, err := m.At(3, 4)
	if err != nil || v != 19 {
		t.Errorf("At(3,4) = %d, %v; want 19", v, err)
	}
}

func TestConstructBgr48Shape(t *testing.T) {
	// 3x2 pixels, interleaved B, G, R
	data := make([]uint16, 18)
	for p := 0; p < 6; p++ {
		data[3*p+0] = uint16(100 + p) // B
		data[3*p+1] = uint16(200 + p) // G
		data[3*p+2] = uint16(300 + p) // R
	}
	raw := gray16(t, 18, 1, data...).data
	bm := newBitmap(t, Bgr48, 3, 2, 0, raw)

	img, err := NewImageFactory().ConstructImage(bm, nil, image.Rect(0, 0, 3, 2), NoMosaic)
	if err != nil {
		t.Fatalf("ConstructImage failed: %v", err)
	}
	if got := img.Shape().String(); got != "[(C,3) (Y,2) (X,3)]" {
		t.Errorf("shape = %s", got)
	}
	if img.Len() != 18 || img.Kind() != KindUint16 {
		t.Errorf("Len %d kind %s, want 18 uint16", img.Len(), img.Kind())
	}
	if img.PixelFormat() != Bgr48 {
		t.Errorf("format = %s, want Bgr48", img.PixelFormat())
	}

	m, err := ImageAs[uint16](img)
	if err != nil {
		t.Fatalf("ImageAs failed: %v", err)
	}
	want := []uint16{
		100, 101, 102, 103, 104, 105,
		200, 201, 202, 203, 204, 205,
		300, 301, 302, 303, 304, 305,
	}
	if diff := cmp.Diff(want, m.Data()); diff != "" {
		t.Errorf("planar samples mismatch (-want +got):\n%s", diff)
	}

	if _, err := ImageAs[uint8](img); !errors.Is(err, ErrElementKind) {
		t.Errorf("ImageAs[uint8]: expected ErrElementKind, got %v", err)
	}

	red, err := m.Channel(2)
	if err != nil {
		t.Fatalf("Channel failed: %v", err)
	}
	if red.PixelFormat() != Gray16 || red.Shape().String() != "[(Y,2) (X,3)]" {
		t.Errorf("channel: format %s shape %s", red.PixelFormat(), red.Shape())
	}
	if diff := cmp.Diff(want[12:], red.Data()); diff != "" {
		t.Errorf("channel samples mismatch (-want +got):\n%s", diff)
	}
	red.Data()[0] = 0
	if m.Data()[12] != 300 {
		t.Error("Channel should copy")
	}
	if _, err := m.Channel(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Channel(3): expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := red.Channel(0); err == nil {
		t.Error("Channel on a gray image should fail")
	}
}

func TestConstructRemovesStridePadding(t *testing.T) {
	// 2x3 Gray8 with 3 bytes of padding per row
	data := []byte{
		1, 2, 0xEE, 0xEE, 0xEE,
		3, 4, 0xEE, 0xEE, 0xEE,
		5, 6,
	}
	bm := newBitmap(t, Gray8, 2, 3, 5, data)
	img, err := NewImageFactory().ConstructImage(bm, nil, image.Rectangle{}, NoMosaic)
	if err != nil {
		t.Fatalf("ConstructImage failed: %v", err)
	}
	if diff := cmp.Diff([]uint8{1, 2, 3, 4, 5, 6}, img.Bytes()); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	if bm.Locked() {
		t.Error("bitmap left locked")
	}
}

func TestConstructFloat(t *testing.T) {
	bm := newBitmap(t, Gray32Float, 2, 1, 0, float32Bytes(1.5, -2))
	img, err := NewImageFactory().ConstructImage(bm, nil, image.Rectangle{}, NoMosaic)
	if err != nil {
		t.Fatalf("ConstructImage failed: %v", err)
	}
	m, err := ImageAs[float32](img)
	if err != nil {
		t.Fatalf("ImageAs failed: %v", err)
	}
	if diff := cmp.Diff([]float32{1.5, -2}, m.Data()); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestConstructUnsupportedFormat(t *testing.T) {
	for _, format := range []PixelFormat{pixel.Bgra32, pixel.Gray64ComplexFloat, pixel.Bgr192ComplexFloat, pixel.Gray64Float, 77} {
		t.Run(format.String(), func(t *testing.T) {
			bm := &fakeBitmap{format: format, size: image.Pt(2, 2), data: make([]byte, 64)}
			_, err := NewImageFactory().ConstructImage(bm, nil, image.Rectangle{}, NoMosaic)
			if !errors.Is(err, ErrUnsupportedPixelFormat) {
				t.Fatalf("expected ErrUnsupportedPixelFormat, got %v", err)
			}
			var pe *PixelFormatError
			if !errors.As(err, &pe) || pe.Format != format {
				t.Errorf("error does not carry format %d: %v", format, err)
			}
			if bm.locks != 0 {
				t.Error("bitmap locked before the format was checked")
			}
		})
	}
}

func TestConstructRankMismatch(t *testing.T) {
	bm := bgr24Bitmap(t, 1, 1, 1, 2, 3)
	img, err := NewImageFactory().ConstructImage(bm, nil, image.Rectangle{}, NoMosaic)
	if err != nil {
		t.Fatalf("ConstructImage failed: %v", err)
	}
	m, _ := ImageAs[uint8](img)

	_, err = m.Index(0, 0)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	var se *ShapeMismatchError
	if !errors.As(err, &se) || se.Got != 2 || se.Want != 3 {
		t.Errorf("unexpected mismatch detail: %v", err)
	}
	if _, err := m.At(0, 1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestConstructBitmapErrors(t *testing.T) {
	tests := []struct {
		name string
		bm   *fakeBitmap
		want error
	}{
		{"lock fails", &fakeBitmap{format: Gray8, size: image.Pt(2, 2), lockErr: errLockFailed}, errLockFailed},
		{"buffer short", &fakeBitmap{format: Gray8, size: image.Pt(2, 2), data: make([]byte, 3)}, ErrBitmap},
		{"stride too small", &fakeBitmap{format: Gray16, size: image.Pt(2, 2), data: make([]byte, 16), stride: 3}, ErrBitmap},
		{"empty tile", &fakeBitmap{format: Gray8, size: image.Pt(0, 4)}, ErrAllocation},
		{"negative size", &fakeBitmap{format: Gray8, size: image.Pt(-2, -2), data: make([]byte, 4)}, ErrAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImageFactory().ConstructImage(tt.bm, nil, image.Rectangle{}, NoMosaic)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == ErrAllocation && tt.bm.locks != 0 {
				t.Error("bitmap locked for a tile with no pixels")
			}
			if tt.bm.locks != tt.bm.unlocks && tt.bm.lockErr == nil {
				t.Errorf("locks %d unlocks %d", tt.bm.locks, tt.bm.unlocks)
			}
		})
	}

	if _, err := NewImageFactory().ConstructImage(nil, nil, image.Rectangle{}, NoMosaic); !errors.Is(err, ErrAllocation) {
		t.Errorf("nil bitmap: expected ErrAllocation, got %v", err)
	}
}

func TestConstructInto(t *testing.T) {
	c, err := NewImagesContainer(Gray16, 8)
	if err != nil {
		t.Fatalf("NewImagesContainer failed: %v", err)
	}
	f := NewImageFactory()

	img, err := f.ConstructInto(gray16(t, 2, 2, 1, 2, 3, 4), mustCoord(t, "T1"), image.Rect(2, 0, 4, 2), c, 4, NoMosaic)
	if err != nil {
		t.Fatalf("ConstructInto failed: %v", err)
	}
	if img.Ownership() != Borrowed {
		t.Errorf("ownership = %s, want borrowed", img.Ownership())
	}
	m, _ := ImageAs[uint16](img)
	if owner, off := m.Container(); owner != c || off != 4 {
		t.Errorf("Container() = %p, %d", owner, off)
	}

	data, err := ContainerData[uint16](c)
	if err != nil {
		t.Fatalf("ContainerData failed: %v", err)
	}
	if diff := cmp.Diff([]uint16{0, 0, 0, 0, 1, 2, 3, 4}, data); diff != "" {
		t.Errorf("container mismatch (-want +got):\n%s", diff)
	}
	m.Data()[0] = 9
	if data[4] != 9 {
		t.Error("borrowed image does not alias the container")
	}

	tiles := c.Tiles()
	if len(tiles) != 1 || tiles[0].Offset != 4 || tiles[0].Size != image.Pt(2, 2) || tiles[0].Coordinate[DimT] != 1 {
		t.Errorf("unexpected tile metadata: %+v", tiles)
	}
}

func TestConstructIntoErrors(t *testing.T) {
	f := NewImageFactory()
	c, _ := NewImagesContainer(Gray8, 4)

	if _, err := f.ConstructInto(gray8(t, 2, 2, 1, 2, 3, 4), nil, image.Rectangle{}, c, 1, NoMosaic); !errors.Is(err, ErrAllocation) {
		t.Errorf("window past capacity: expected ErrAllocation, got %v", err)
	}
	if _, err := f.ConstructInto(gray8(t, 1, 1, 1), nil, image.Rectangle{}, c, -1, NoMosaic); !errors.Is(err, ErrAllocation) {
		t.Errorf("negative offset: expected ErrAllocation, got %v", err)
	}
	if _, err := f.ConstructInto(bgr24Bitmap(t, 1, 1, 1, 2, 3), nil, image.Rectangle{}, c, 0, NoMosaic); !errors.Is(err, ErrMixedPixelFormats) {
		t.Errorf("format mismatch: expected ErrMixedPixelFormats, got %v", err)
	}
	if _, err := f.ConstructInto(gray8(t, 1, 1, 1), nil, image.Rectangle{}, nil, 0, NoMosaic); !errors.Is(err, ErrAllocation) {
		t.Errorf("nil container: expected ErrAllocation, got %v", err)
	}
	if len(c.Tiles()) != 0 {
		t.Errorf("failed constructions recorded metadata: %+v", c.Tiles())
	}
}
