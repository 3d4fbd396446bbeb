// Package layout moves samples between the memory layouts a tile passes
// through on its way into a packed array.
//
// Decoded bitmaps hand over rows that may be padded to a stride and, for
// color formats, samples interleaved per pixel. Packed arrays are dense and
// planar. This package provides the copy routines between the two:
//
//   - [CopyRows]: drop row padding, keep the byte order of the source
//   - [CopyInterleavedRows]: drop row padding and split channels into planes
//   - [Deinterleave]: split an interleaved run into planes a fixed stride apart
//   - [Hyperslab]: extract a rectangular selection of a row-major array
//
// All routines are generic over [Element] and work on host-order samples.
// [Bytes] reinterprets a typed slice as bytes without copying.
package layout
