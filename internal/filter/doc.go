// Package filter implements the reversible byte filters applied to exported
// arrays.
//
// A packed array is written once and read back later, so every filter here
// has both an Encode and a Decode direction. Filter ids follow the HDF5
// registered filter numbers, so a pipeline description is meaningful to
// anyone who knows those tables.
//
// # Supported Filters
//
//   - DEFLATE (ID 1): zlib compression via [Deflate], backed by
//     github.com/klauspost/compress/zlib.
//
//   - Shuffle (ID 2): byte shuffling via [Shuffle]. Groups byte 0 of every
//     element, then byte 1, and so on. Multi-byte pixel data compresses much
//     better after shuffling.
//
//   - Fletcher32 (ID 3): appends a Fletcher-32 checksum on encode and
//     verifies it on decode via [Fletcher32Filter].
//
//   - Zstandard (ID 32015): zstd compression via [Zstd], backed by
//     github.com/klauspost/compress/zstd.
//
// # Filter Pipeline
//
// The [Pipeline] type applies filters in order when encoding and in reverse
// order when decoding:
//
//	p, err := filter.NewPipeline([]filter.Info{
//		{ID: filter.IDShuffle, ClientData: 2},
//		{ID: filter.IDZstd, ClientData: 3},
//	})
//	packed, err := p.Encode(raw)
//	raw, err = p.Decode(packed)
//
// # Key Types
//
//   - [Filter]: interface implemented by all filters (ID, Encode, Decode)
//   - [Info]: a filter id plus its single client-data word
//   - [Pipeline]: an ordered sequence of filters
package filter
