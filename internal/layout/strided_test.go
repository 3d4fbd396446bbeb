package layout

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCopyRowsRemovesPadding(t *testing.T) {
	// 3 rows of 4 bytes, stride 6 (2 bytes padding per row)
	src := []byte{
		1, 2, 3, 4, 0xEE, 0xEE,
		5, 6, 7, 8, 0xEE, 0xEE,
		9, 10, 11, 12, // last row without padding
	}
	dst := make([]byte, 12)
	if err := CopyRows(dst, src, 3, 4, 6); err != nil {
		t.Fatalf("CopyRows failed: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	if !bytes.Equal(dst, want) {
		t.Errorf("got %v, want %v", dst, want)
	}
}

func TestCopyRowsTight(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 6)
	if err := CopyRows(dst, src, 2, 3, 3); err != nil {
		t.Fatalf("CopyRows failed: %v", err)
	}
	if !bytes.Equal(dst, src) {
		t.Errorf("got %v, want %v", dst, src)
	}
}

func TestCopyRowsErrors(t *testing.T) {
	tests := []struct {
		name                   string
		src, dst               int
		rows, rowBytes, stride int
	}{
		{"stride too small", 12, 12, 3, 4, 3},
		{"source short", 10, 12, 3, 4, 4},
		{"destination short", 12, 8, 3, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CopyRows(make([]byte, tt.dst), make([]byte, tt.src), tt.rows, tt.rowBytes, tt.stride)
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDeinterleave(t *testing.T) {
	src := []uint16{1, 2, 3, 11, 12, 13, 21, 22, 23, 31, 32, 33}
	dst := make([]uint16, len(src))
	Deinterleave(dst, 4, src, 4, 3)
	want := []uint16{1, 11, 21, 31, 2, 12, 22, 32, 3, 13, 23, 33}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("Deinterleave mismatch (-want +got):\n%s", diff)
	}
}

func TestCopyInterleavedRows(t *testing.T) {
	// 2 rows x 2 pixels of BGR uint16, stride 14 bytes (2 bytes padding)
	const rows, width, channels, stride = 2, 2, 3, 14
	src := make([]byte, stride*rows)
	samples := [][]uint16{
		{1, 2, 3, 4, 5, 6},
		{7, 8, 9, 10, 11, 12},
	}
	for r, row := range samples {
		for i, v := range row {
			binary.NativeEndian.PutUint16(src[r*stride+2*i:], v)
		}
		src[r*stride+12] = 0xEE
	}

	dst := make([]uint16, rows*width*channels)
	scratch := make([]uint16, width*channels)
	if err := CopyInterleavedRows(dst, src, rows, width, channels, stride, scratch); err != nil {
		t.Fatalf("CopyInterleavedRows failed: %v", err)
	}
	// plane B, then G, then R; each plane row-major
	want := []uint16{1, 4, 7, 10, 2, 5, 8, 11, 3, 6, 9, 12}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("planar mismatch (-want +got):\n%s", diff)
	}
}

func TestCopyInterleavedRowsTight(t *testing.T) {
	// 2 rows x 2 pixels of BGR uint8 without padding
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	dst := make([]uint8, len(src))
	scratch := make([]uint8, 6)
	if err := CopyInterleavedRows(dst, src, 2, 2, 3, 6, scratch); err != nil {
		t.Fatalf("CopyInterleavedRows failed: %v", err)
	}
	want := []uint8{1, 4, 7, 10, 2, 5, 8, 11, 3, 6, 9, 12}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("planar mismatch (-want +got):\n%s", diff)
	}
	// the last row passed through scratch
	if diff := cmp.Diff([]uint8{7, 8, 9, 10, 11, 12}, scratch); diff != "" {
		t.Errorf("scratch mismatch (-want +got):\n%s", diff)
	}

	if err := CopyInterleavedRows(dst, src, 2, 2, 3, 6, scratch[:5]); err == nil {
		t.Error("expected error for short scratch")
	}
}

func TestHyperslab(t *testing.T) {
	// 2x3x4 array with values equal to their offset
	data := make([]uint32, 24)
	for i := range data {
		data[i] = uint32(i)
	}

	got, err := Hyperslab(data, []int{2, 3, 4}, []int{1, 0, 1}, []int{1, 2, 2})
	if err != nil {
		t.Fatalf("Hyperslab failed: %v", err)
	}
	want := []uint32{13, 14, 17, 18}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Hyperslab mismatch (-want +got):\n%s", diff)
	}

	if _, err := Hyperslab(data, []int{2, 3, 4}, []int{1, 2, 0}, []int{1, 2, 4}); err == nil {
		t.Error("expected error for selection past extent")
	}
	if _, err := Hyperslab(data, []int{2, 3, 4}, []int{0, 0}, []int{1, 1}); err == nil {
		t.Error("expected error for rank mismatch")
	}
}

func TestBytesView(t *testing.T) {
	s := []uint16{0x0102, 0x0304}
	b := Bytes(s)
	if len(b) != 4 {
		t.Fatalf("len = %d, want 4", len(b))
	}
	if binary.NativeEndian.Uint16(b[2:]) != 0x0304 {
		t.Errorf("byte view does not alias the slice")
	}
	if Bytes([]float32(nil)) != nil {
		t.Error("empty slice should give nil view")
	}
	if SizeOf[float32]() != 4 || SizeOf[uint8]() != 1 {
		t.Error("SizeOf wrong")
	}
}
