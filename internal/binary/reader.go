package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reader reads fixed-width integers from a stream in a fixed byte order.
type Reader struct {
	r     io.Reader
	order binary.ByteOrder
	n     int64
}

// NewReader creates a Reader. A nil order means little-endian.
func NewReader(r io.Reader, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{r: r, order: order}
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	buf := make([]byte, n)
	m, err := io.ReadFull(r.r, buf)
	r.n += int64(m)
	if err != nil {
		return nil, fmt.Errorf("reading %d bytes at %d: %w", n, r.n-int64(m), err)
	}
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int64 {
	return r.n
}

// ByteOrder returns the byte order used for integers.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}
