// Package shape describes the labelled, row-major layout of packed arrays.
//
// A [Shape] is an ordered list of (label, extent) pairs. The order defines
// the row-major flattening: the last entry varies fastest. Labels are single
// characters naming an acquisition dimension (scene, time, channel, z, ...)
// or a spatial axis (Y, X).
//
// # Canonical Order
//
// Every component sorts dimensions by the same fixed priority, outermost
// first:
//
//	B V H I S R T C Z M Y X
//
// Labels outside this list sort after M and before Y, alphabetically.
//
// # Index Arithmetic
//
// [Shape.Index] maps a multi-index to a flat element offset and
// [Shape.Unravel] maps it back. Both reject a multi-index whose length does
// not match the rank with a [*MismatchError].
package shape
