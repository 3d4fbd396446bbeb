package layout

import "fmt"

// Hyperslab extracts a rectangular region from data stored in row-major order.
// dims is the full array extent; start and count select the region.
func Hyperslab[T Element](data []T, dims, start, count []int) ([]T, error) {
	ndims := len(dims)
	if ndims == 0 {
		return nil, fmt.Errorf("cannot select from a rank 0 array")
	}
	if len(start) != ndims || len(count) != ndims {
		return nil, fmt.Errorf("selection rank %d/%d does not match array rank %d", len(start), len(count), ndims)
	}

	total := 1
	need := 1
	for d := 0; d < ndims; d++ {
		if start[d] < 0 || count[d] < 0 || start[d]+count[d] > dims[d] {
			return nil, fmt.Errorf("selection [%d, +%d) exceeds extent %d on axis %d", start[d], count[d], dims[d], d)
		}
		total *= count[d]
		need *= dims[d]
	}
	if len(data) < need {
		return nil, fmt.Errorf("array holds %d elements, shape needs %d", len(data), need)
	}

	result := make([]T, total)
	if total == 0 {
		return result, nil
	}

	// Calculate strides for source data (row-major order)
	srcStrides := make([]int, ndims)
	srcStrides[ndims-1] = 1
	for d := ndims - 2; d >= 0; d-- {
		srcStrides[d] = srcStrides[d+1] * dims[d+1]
	}

	// Calculate strides for result data
	dstStrides := make([]int, ndims)
	dstStrides[ndims-1] = 1
	for d := ndims - 2; d >= 0; d-- {
		dstStrides[d] = dstStrides[d+1] * count[d+1]
	}

	hyperslabRecursive(data, result, start, count, srcStrides, dstStrides, 0, 0, 0)
	return result, nil
}

// hyperslabRecursive copies one dimension at a time; the innermost
// dimension is copied as a contiguous run.
func hyperslabRecursive[T Element](
	src, dst []T,
	start, count []int,
	srcStrides, dstStrides []int,
	srcOffset, dstOffset int,
	dim int,
) {
	if dim == len(count)-1 {
		s := srcOffset + start[dim]
		copy(dst[dstOffset:dstOffset+count[dim]], src[s:s+count[dim]])
		return
	}

	for i := 0; i < count[dim]; i++ {
		hyperslabRecursive(src, dst, start, count, srcStrides, dstStrides,
			srcOffset+(start[dim]+i)*srcStrides[dim],
			dstOffset+i*dstStrides[dim],
			dim+1)
	}
}
