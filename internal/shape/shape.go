package shape

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Dim is a single-character dimension label.
type Dim byte

// Dimension labels used by the packer.
const (
	B Dim = 'B' // block
	V Dim = 'V' // view
	H Dim = 'H' // phase
	I Dim = 'I' // illumination
	S Dim = 'S' // scene
	R Dim = 'R' // rotation
	T Dim = 'T' // time
	C Dim = 'C' // channel
	Z Dim = 'Z' // focal plane
	M Dim = 'M' // mosaic tile
	Y Dim = 'Y' // height
	X Dim = 'X' // width
)

// canonical lists the known labels outermost first.
const canonical = "BVHISRTCZMYX"

var (
	ErrMismatch   = errors.New("shape mismatch")
	ErrOutOfRange = errors.New("index out of range")
)

// MismatchError reports a multi-index whose length differs from the rank.
type MismatchError struct {
	Got  int
	Want int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %d indices given for rank %d", e.Got, e.Want)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

func (d Dim) String() string {
	return string(rune(d))
}

// priority orders labels; lower values are outer dimensions.
func (d Dim) priority() int {
	if i := strings.IndexByte(canonical, byte(d)); i >= 0 {
		if d == Y || d == X {
			// leave room for unknown labels between M and Y
			return (i + 1) * 256
		}
		return i * 256
	}
	return strings.IndexByte(canonical, byte(M))*256 + 1 + int(d)
}

// Less reports whether a is an outer dimension relative to b.
func Less(a, b Dim) bool {
	return a.priority() < b.priority()
}

// SortDims sorts labels into canonical order.
func SortDims(dims []Dim) {
	sort.SliceStable(dims, func(i, j int) bool { return Less(dims[i], dims[j]) })
}

// Entry is one labelled axis.
type Entry struct {
	Dim    Dim
	Extent int
}

// Shape is an ordered list of labelled axes.
type Shape []Entry

// New builds a shape from alternating labels and extents given as a label
// string and matching extents, e.g. New("CYX", 3, 2, 3).
func New(dims string, extents ...int) (Shape, error) {
	if len(dims) != len(extents) {
		return nil, &MismatchError{Got: len(extents), Want: len(dims)}
	}
	s := make(Shape, len(dims))
	for i := range s {
		s[i] = Entry{Dim: Dim(dims[i]), Extent: extents[i]}
	}
	return s, s.Validate()
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// Len returns the number of elements described by the shape.
// An empty shape describes no elements.
func (s Shape) Len() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, e := range s {
		n *= e.Extent
	}
	return n
}

// Extents returns the extents in order.
func (s Shape) Extents() []int {
	out := make([]int, len(s))
	for i, e := range s {
		out[i] = e.Extent
	}
	return out
}

// Dims returns the labels as a string, e.g. "TCYX".
func (s Shape) Dims() string {
	var b strings.Builder
	for _, e := range s {
		b.WriteByte(byte(e.Dim))
	}
	return b.String()
}

// Strides returns the row-major element stride of each axis.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i].Extent
	}
	return strides
}

// Find returns the position of the axis labelled d.
func (s Shape) Find(d Dim) (int, bool) {
	for i, e := range s {
		if e.Dim == d {
			return i, true
		}
	}
	return -1, false
}

// Extent returns the extent of the axis labelled d, or 0 if absent.
func (s Shape) Extent(d Dim) int {
	if i, ok := s.Find(d); ok {
		return s[i].Extent
	}
	return 0
}

// Clone returns a copy that shares no memory with s.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Sort orders the axes canonically in place.
func (s Shape) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return Less(s[i].Dim, s[j].Dim) })
}

// Validate checks that extents are positive, labels are unique and the
// element count fits in an int.
func (s Shape) Validate() error {
	seen := make(map[Dim]bool, len(s))
	n := 1
	for _, e := range s {
		if e.Extent <= 0 {
			return fmt.Errorf("%w: axis %s has extent %d", ErrMismatch, e.Dim, e.Extent)
		}
		if n > math.MaxInt/e.Extent {
			return fmt.Errorf("%w: %s holds more than %d elements", ErrMismatch, s, math.MaxInt)
		}
		n *= e.Extent
		if seen[e.Dim] {
			return fmt.Errorf("%w: duplicate axis %s", ErrMismatch, e.Dim)
		}
		seen[e.Dim] = true
	}
	return nil
}

// Index returns the flat row-major offset of the multi-index idx.
func (s Shape) Index(idx ...int) (int, error) {
	if len(idx) != len(s) {
		return 0, &MismatchError{Got: len(idx), Want: len(s)}
	}
	offset := 0
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		if idx[i] < 0 || idx[i] >= s[i].Extent {
			return 0, fmt.Errorf("%w: index %d on axis %s with extent %d", ErrOutOfRange, idx[i], s[i].Dim, s[i].Extent)
		}
		offset += idx[i] * step
		step *= s[i].Extent
	}
	return offset, nil
}

// Unravel is the inverse of Index.
func (s Shape) Unravel(offset int) ([]int, error) {
	if offset < 0 || offset >= s.Len() {
		return nil, fmt.Errorf("%w: offset %d for %d elements", ErrOutOfRange, offset, s.Len())
	}
	idx := make([]int, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		idx[i] = offset % s[i].Extent
		offset /= s[i].Extent
	}
	return idx, nil
}

// Equal reports whether both shapes have the same axes in the same order.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = fmt.Sprintf("(%s,%d)", e.Dim, e.Extent)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
