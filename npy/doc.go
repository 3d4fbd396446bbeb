// Package npy exports packed arrays in the NumPy .npy format.
//
// [Write] produces a version 1.0 stream: C order, the element type taken
// from the array kind and the host byte order. [Read] accepts either byte
// order and swaps samples to host order. Axis labels are not part of the
// format; pass [WithDims] to restore them.
//
// [WriteFiltered] and [ReadFiltered] wrap the .npy stream in a small frame
// that records the filter pipeline used to encode it:
//
//	var buf bytes.Buffer
//	err := npy.WriteFiltered(&buf, a, npy.WithShuffle(), npy.WithChecksum())
//	...
//	b, err := npy.ReadFiltered(&buf, npy.WithDims(a.Dims()))
package npy
