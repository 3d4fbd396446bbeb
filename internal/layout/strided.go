package layout

import (
	"fmt"
	"unsafe"
)

// Element is the set of Go types a packed buffer can hold.
type Element interface {
	~uint8 | ~uint16 | ~uint32 | ~float32
}

// Bytes returns the memory of s as a byte slice without copying.
// The bytes are in host byte order.
func Bytes[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// SizeOf returns the size in bytes of one element of T.
func SizeOf[T Element]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// CheckSource verifies that a source buffer with the given stride holds rows
// rows of rowBytes bytes each. The final row may omit its padding.
func CheckSource(src []byte, rows, rowBytes, stride int) error {
	if rows == 0 || rowBytes == 0 {
		return nil
	}
	if stride < rowBytes {
		return fmt.Errorf("stride %d is smaller than row size %d", stride, rowBytes)
	}
	need := stride*(rows-1) + rowBytes
	if len(src) < need {
		return fmt.Errorf("source holds %d bytes, need %d for %d rows of stride %d", len(src), need, rows, stride)
	}
	return nil
}

// CopyRows copies rows rows of rowBytes bytes from a source laid out with
// the given stride into dst, packed tightly.
func CopyRows(dst, src []byte, rows, rowBytes, stride int) error {
	if err := CheckSource(src, rows, rowBytes, stride); err != nil {
		return err
	}
	if len(dst) < rows*rowBytes {
		return fmt.Errorf("destination holds %d bytes, need %d", len(dst), rows*rowBytes)
	}

	if stride == rowBytes {
		copy(dst[:rows*rowBytes], src)
		return nil
	}
	for r := 0; r < rows; r++ {
		copy(dst[r*rowBytes:(r+1)*rowBytes], src[r*stride:r*stride+rowBytes])
	}
	return nil
}

// Deinterleave splits interleaved samples (s0 s1 s2 s0 s1 s2 ...) of
// pixels pixels into channels planes. Plane c starts at dst[c*planeStride].
func Deinterleave[T Element](dst []T, planeStride int, src []T, pixels, channels int) {
	for c := 0; c < channels; c++ {
		plane := dst[c*planeStride : c*planeStride+pixels]
		for p := range plane {
			plane[p] = src[p*channels+c]
		}
	}
}

// CopyInterleavedRows removes row padding from an interleaved source and
// writes the result planar: dst receives channels planes of rows*width
// elements each. Rows are staged through scratch, which must hold at least
// one row of width*channels elements.
func CopyInterleavedRows[T Element](dst []T, src []byte, rows, width, channels, stride int, scratch []T) error {
	rowBytes := width * channels * SizeOf[T]()
	if err := CheckSource(src, rows, rowBytes, stride); err != nil {
		return err
	}
	pixels := rows * width
	if len(dst) < pixels*channels {
		return fmt.Errorf("destination holds %d elements, need %d", len(dst), pixels*channels)
	}
	if len(scratch) < width*channels {
		return fmt.Errorf("scratch holds %d elements, need %d", len(scratch), width*channels)
	}

	row := scratch[:width*channels]
	rowView := Bytes(row)
	for r := 0; r < rows; r++ {
		copy(rowView, src[r*stride:r*stride+rowBytes])
		Deinterleave(dst[r*width:], pixels, row, width, channels)
	}
	return nil
}
