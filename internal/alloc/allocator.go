package alloc

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCapacity is returned when a range does not fit in the remaining space.
var ErrCapacity = errors.New("allocation exceeds capacity")

// Allocator manages element ranges within a buffer of fixed capacity.
type Allocator struct {
	mu sync.Mutex

	// next is the offset of the next allocation
	next int

	// capacity is the total number of elements available
	capacity int

	// ranges tracks all allocations made (for validation)
	ranges []Range

	stats Stats
}

// Range is a single allocated window.
type Range struct {
	Offset int
	Len    int
	Tag    string // Optional tag for debugging
}

// End returns the offset one past the last element of the range.
func (r Range) End() int {
	return r.Offset + r.Len
}

// Stats contains allocation statistics.
type Stats struct {
	TotalAllocations int // Number of ranges handed out
	TotalElements    int // Sum of all range lengths
	LargestAlloc     int // Largest single range
	Rejected         int // Requests that did not fit
}

// New creates an Allocator for a buffer of capacity elements.
func New(capacity int) *Allocator {
	if capacity < 0 {
		capacity = 0
	}
	return &Allocator{capacity: capacity}
}

// Alloc reserves n elements and returns the offset of the first one.
func (a *Allocator) Alloc(n int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.allocLocked(n, "")
}

// AllocTagged reserves n elements with a tag for debugging.
func (a *Allocator) AllocTagged(n int, tag string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.allocLocked(n, tag)
}

// allocLocked performs allocation while holding the lock.
func (a *Allocator) allocLocked(n int, tag string) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative allocation size %d", n)
	}
	if n > a.capacity-a.next {
		a.stats.Rejected++
		return 0, fmt.Errorf("%w: %d elements requested at offset %d, capacity %d",
			ErrCapacity, n, a.next, a.capacity)
	}
	if n == 0 {
		return a.next, nil
	}

	off := a.next
	a.next += n

	a.ranges = append(a.ranges, Range{
		Offset: off,
		Len:    n,
		Tag:    tag,
	})

	a.stats.TotalAllocations++
	a.stats.TotalElements += n
	if n > a.stats.LargestAlloc {
		a.stats.LargestAlloc = n
	}

	return off, nil
}

// Next returns the offset the next allocation will receive.
func (a *Allocator) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// Capacity returns the total number of elements managed.
func (a *Allocator) Capacity() int {
	return a.capacity
}

// Remaining returns the number of elements still available.
func (a *Allocator) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capacity - a.next
}

// Stats returns a copy of the allocation statistics.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Ranges returns a copy of all ranges handed out, in allocation order.
func (a *Allocator) Ranges() []Range {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Range, len(a.ranges))
	copy(result, a.ranges)
	return result
}

// Validate checks that ranges don't overlap and are within capacity.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range a.ranges {
		if r.Offset < 0 {
			return fmt.Errorf("range at %d starts before the buffer", r.Offset)
		}
		if r.End() > a.capacity {
			return fmt.Errorf("range at %d length %d extends past capacity %d", r.Offset, r.Len, a.capacity)
		}
	}

	// Ranges are append-only, so each must start at or after the previous end.
	for i := 1; i < len(a.ranges); i++ {
		prev, cur := a.ranges[i-1], a.ranges[i]
		if cur.Offset < prev.End() {
			return fmt.Errorf("overlapping ranges: [%d, len %d] and [%d, len %d]",
				prev.Offset, prev.Len, cur.Offset, cur.Len)
		}
	}

	return nil
}
