package czi

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"
)

func newBitmap(t *testing.T, format PixelFormat, w, h, stride int, data []byte) *MemoryBitmap {
	t.Helper()
	bm, err := NewMemoryBitmap(format, w, h, stride, data)
	if err != nil {
		t.Fatalf("NewMemoryBitmap(%s, %d, %d): %v", format, w, h, err)
	}
	return bm
}

// gray8 builds a tightly packed Gray8 bitmap from row-major samples.
func gray8(t *testing.T, w, h int, samples ...uint8) *MemoryBitmap {
	t.Helper()
	return newBitmap(t, Gray8, w, h, 0, samples)
}

// gray16 builds a tightly packed Gray16 bitmap in host byte order.
func gray16(t *testing.T, w, h int, samples ...uint16) *MemoryBitmap {
	t.Helper()
	data := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.NativeEndian.PutUint16(data[2*i:], v)
	}
	return newBitmap(t, Gray16, w, h, 0, data)
}

// bgr24 builds a tightly packed Bgr24 bitmap from interleaved samples.
func bgr24Bitmap(t *testing.T, w, h int, samples ...uint8) *MemoryBitmap {
	t.Helper()
	return newBitmap(t, Bgr24, w, h, 0, samples)
}

func float32Bytes(vals ...float32) []byte {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return data
}

// fakeBitmap counts Lock and Unlock calls and can fail Lock.
type fakeBitmap struct {
	format  PixelFormat
	size    image.Point
	data    []byte
	stride  int
	lockErr error

	locks, unlocks int
}

func (b *fakeBitmap) PixelFormat() PixelFormat { return b.format }
func (b *fakeBitmap) Size() image.Point        { return b.size }

func (b *fakeBitmap) Lock() (LockInfo, error) {
	b.locks++
	if b.lockErr != nil {
		return LockInfo{}, b.lockErr
	}
	return LockInfo{Data: b.data, Stride: b.stride}, nil
}

func (b *fakeBitmap) Unlock() { b.unlocks++ }

var errLockFailed = errors.New("device busy")

func mustCoord(t *testing.T, s string) Coordinate {
	t.Helper()
	c, err := ParseCoordinate(s)
	if err != nil {
		t.Fatalf("ParseCoordinate(%q): %v", s, err)
	}
	return c
}
