// Package alloc hands out disjoint element ranges inside a fixed-size buffer.
//
// A packed request allocates one buffer large enough for every tile before
// any tile is decoded. Each tile then needs its own window in that buffer.
// This package computes those windows as a running sum of the tile sizes so
// that no two tiles ever overlap and no tile extends past the end.
//
// # Allocator
//
// The [Allocator] type is safe for concurrent use:
//
//   - Append-only allocation: each range starts where the previous one ended.
//   - Fixed capacity: a request that would run past the end fails with
//     [ErrCapacity] and leaves the allocator unchanged.
//   - Range tracking: every range is recorded so [Allocator.Validate] can
//     prove the layout is disjoint and in bounds.
//
// # Usage
//
//	a := alloc.New(3 * 20)     // room for three 4x5 tiles
//	off, err := a.Alloc(20)    // 0
//	off, err = a.Alloc(20)     // 20
package alloc
