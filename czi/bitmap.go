package czi

import (
	"encoding/binary"
	"fmt"
	"image"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/robert-malhotra/go-czi/internal/pixel"
)

// Bitmap is a decoded tile as handed over by a reader. Pixel memory is only
// valid between Lock and Unlock. Rows are Stride bytes apart and may carry
// padding; samples are in host byte order, color samples interleaved B, G, R.
type Bitmap interface {
	PixelFormat() PixelFormat
	// Size returns the width (X) and height (Y) in pixels.
	Size() image.Point
	Lock() (LockInfo, error)
	Unlock()
}

// LockInfo describes locked bitmap memory.
type LockInfo struct {
	Data   []byte
	Stride int // bytes between row starts; 0 means rows are packed tightly
}

// withLock runs fn on the locked bitmap memory and always unlocks.
func withLock(bm Bitmap, fn func(LockInfo) error) error {
	li, err := bm.Lock()
	if err != nil {
		return fmt.Errorf("%w: lock: %w", ErrBitmap, err)
	}
	defer bm.Unlock()
	return fn(li)
}

// MemoryBitmap is a Bitmap over caller-owned memory.
type MemoryBitmap struct {
	format PixelFormat
	size   image.Point
	stride int
	data   []byte
	locks  atomic.Int32
}

// NewMemoryBitmap wraps data holding height rows of width pixels, stride
// bytes apart. A stride of 0 means rows are packed tightly.
func NewMemoryBitmap(format PixelFormat, width, height, stride int, data []byte) (*MemoryBitmap, error) {
	bw, err := pixel.ByteWidth(format)
	if err != nil {
		return nil, err
	}
	ch, _ := pixel.Channels(format)
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrBitmap, width, height)
	}
	rowBytes := width * ch * bw
	if stride == 0 {
		stride = rowBytes
	}
	if stride < rowBytes {
		return nil, fmt.Errorf("%w: stride %d smaller than row size %d", ErrBitmap, stride, rowBytes)
	}
	if height > 0 && len(data) < stride*(height-1)+rowBytes {
		return nil, fmt.Errorf("%w: %d bytes for %d rows of stride %d", ErrBitmap, len(data), height, stride)
	}
	return &MemoryBitmap{
		format: format,
		size:   image.Pt(width, height),
		stride: stride,
		data:   data,
	}, nil
}

func (b *MemoryBitmap) PixelFormat() PixelFormat { return b.format }

func (b *MemoryBitmap) Size() image.Point { return b.size }

func (b *MemoryBitmap) Lock() (LockInfo, error) {
	b.locks.Add(1)
	return LockInfo{Data: b.data, Stride: b.stride}, nil
}

func (b *MemoryBitmap) Unlock() {
	b.locks.Add(-1)
}

// Locked reports whether a Lock is outstanding.
func (b *MemoryBitmap) Locked() bool {
	return b.locks.Load() != 0
}

// FromImage adapts a standard library image to a Bitmap.
//
//	*image.Gray                     -> Gray8 (no copy)
//	*image.Gray16                   -> Gray16
//	*image.RGBA, *image.NRGBA       -> Bgr24, alpha dropped
//	*image.RGBA64, *image.NRGBA64   -> Bgr48, alpha dropped
func FromImage(img image.Image) (*MemoryBitmap, error) {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()

	switch m := img.(type) {
	case *image.Gray:
		if h == 0 || w == 0 {
			return NewMemoryBitmap(Gray8, w, h, 0, nil)
		}
		return NewMemoryBitmap(Gray8, w, h, m.Stride, m.Pix[m.PixOffset(r.Min.X, r.Min.Y):])

	case *image.Gray16:
		if cpu.IsBigEndian && w > 0 && h > 0 {
			return NewMemoryBitmap(Gray16, w, h, m.Stride, m.Pix[m.PixOffset(r.Min.X, r.Min.Y):])
		}
		out := make([]byte, w*h*2)
		for y := 0; y < h; y++ {
			src := m.Pix[m.PixOffset(r.Min.X, r.Min.Y+y):]
			for x := 0; x < w; x++ {
				binary.NativeEndian.PutUint16(out[(y*w+x)*2:], uint16(src[2*x])<<8|uint16(src[2*x+1]))
			}
		}
		return NewMemoryBitmap(Gray16, w, h, 0, out)

	case *image.RGBA:
		return bgr24(w, h, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y))
	case *image.NRGBA:
		return bgr24(w, h, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y))
	case *image.RGBA64:
		return bgr48(w, h, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y))
	case *image.NRGBA64:
		return bgr48(w, h, m.Pix, m.Stride, m.PixOffset(r.Min.X, r.Min.Y))

	default:
		return nil, fmt.Errorf("%w: image type %T", ErrUnsupportedPixelFormat, img)
	}
}

// bgr24 repacks 8-bit RGBA samples as tightly packed BGR triples.
func bgr24(w, h int, pix []byte, stride, start int) (*MemoryBitmap, error) {
	out := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		src := pix[start+y*stride:]
		dst := out[y*w*3:]
		for x := 0; x < w; x++ {
			dst[3*x+0] = src[4*x+2]
			dst[3*x+1] = src[4*x+1]
			dst[3*x+2] = src[4*x+0]
		}
	}
	return NewMemoryBitmap(Bgr24, w, h, 0, out)
}

// bgr48 repacks big-endian 16-bit RGBA samples as native BGR triples.
func bgr48(w, h int, pix []byte, stride, start int) (*MemoryBitmap, error) {
	out := make([]byte, w*h*6)
	be16 := func(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
	for y := 0; y < h; y++ {
		src := pix[start+y*stride:]
		dst := out[y*w*6:]
		for x := 0; x < w; x++ {
			s := src[8*x:]
			binary.NativeEndian.PutUint16(dst[6*x+0:], be16(s[4:]))
			binary.NativeEndian.PutUint16(dst[6*x+2:], be16(s[2:]))
			binary.NativeEndian.PutUint16(dst[6*x+4:], be16(s[0:]))
		}
	}
	return NewMemoryBitmap(Bgr48, w, h, 0, out)
}
