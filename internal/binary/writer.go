// Package binary provides small stream helpers for the export frame format
// and the checksums used to protect it.
package binary

import (
	"encoding/binary"
	"io"
)

// Writer writes fixed-width integers to a stream in a fixed byte order.
// The first error is sticky; later writes are no-ops.
type Writer struct {
	w     io.Writer
	order binary.ByteOrder
	n     int64
	err   error
}

// NewWriter creates a Writer. A nil order means little-endian.
func NewWriter(w io.Writer, order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{w: w, order: order}
}

// WriteBytes writes data unchanged.
func (w *Writer) WriteBytes(data []byte) error {
	if w.err != nil || len(data) == 0 {
		return w.err
	}
	n, err := w.w.Write(data)
	w.n += int64(n)
	w.err = err
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.n
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}
