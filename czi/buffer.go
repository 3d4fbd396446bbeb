package czi

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-czi/internal/layout"
)

// Element is the set of Go types a Buffer can hold.
type Element interface {
	uint8 | uint16 | uint32 | float32
}

// Buffer is a flat typed sample buffer. The set of implementations is
// closed: Uint8Buffer, Uint16Buffer, Uint32Buffer and Float32Buffer.
type Buffer interface {
	Kind() Kind
	Len() int
	// Bytes returns the samples as bytes in host order without copying.
	Bytes() []byte

	sealed()
}

type (
	Uint8Buffer   []uint8
	Uint16Buffer  []uint16
	Uint32Buffer  []uint32
	Float32Buffer []float32
)

func (b Uint8Buffer) Kind() Kind    { return KindUint8 }
func (b Uint8Buffer) Len() int      { return len(b) }
func (b Uint8Buffer) Bytes() []byte { return layout.Bytes([]uint8(b)) }
func (Uint8Buffer) sealed()         {}

func (b Uint16Buffer) Kind() Kind    { return KindUint16 }
func (b Uint16Buffer) Len() int      { return len(b) }
func (b Uint16Buffer) Bytes() []byte { return layout.Bytes([]uint16(b)) }
func (Uint16Buffer) sealed()         {}

func (b Uint32Buffer) Kind() Kind    { return KindUint32 }
func (b Uint32Buffer) Len() int      { return len(b) }
func (b Uint32Buffer) Bytes() []byte { return layout.Bytes([]uint32(b)) }
func (Uint32Buffer) sealed()         {}

func (b Float32Buffer) Kind() Kind    { return KindFloat32 }
func (b Float32Buffer) Len() int      { return len(b) }
func (b Float32Buffer) Bytes() []byte { return layout.Bytes([]float32(b)) }
func (Float32Buffer) sealed()         {}

// NewBuffer allocates n zeroed elements of the given kind.
func NewBuffer(kind Kind, n int) (Buffer, error) {
	size := kind.Size()
	if size == 0 {
		return nil, &AllocationError{What: "buffer of " + kind.String(), Elements: n, Err: ErrElementKind}
	}
	if n < 0 || n > math.MaxInt/size {
		return nil, &AllocationError{What: kind.String() + " buffer", Elements: n}
	}
	switch kind {
	case KindUint8:
		return make(Uint8Buffer, n), nil
	case KindUint16:
		return make(Uint16Buffer, n), nil
	case KindUint32:
		return make(Uint32Buffer, n), nil
	default:
		return make(Float32Buffer, n), nil
	}
}

// BufferAs returns the typed slice behind b. It fails with ErrElementKind
// when T does not match the buffer's element kind.
func BufferAs[T Element](b Buffer) ([]T, error) {
	var s any
	switch v := b.(type) {
	case Uint8Buffer:
		s = []uint8(v)
	case Uint16Buffer:
		s = []uint16(v)
	case Uint32Buffer:
		s = []uint32(v)
	case Float32Buffer:
		s = []float32(v)
	}
	out, ok := s.([]T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: buffer holds %s, requested %T", ErrElementKind, kindName(b), zero)
	}
	return out, nil
}

func kindName(b Buffer) string {
	if b == nil {
		return "nothing"
	}
	return b.Kind().String()
}

// kindFor returns the Kind of T.
func kindFor[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	default:
		return KindFloat32
	}
}
