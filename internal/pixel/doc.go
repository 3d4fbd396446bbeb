// Package pixel describes the closed set of pixel formats a decoded tile can carry.
//
// Every other package asks this registry three questions about a format: how
// wide one stored element is, how many interleaved samples make up a pixel,
// and which Go element type holds a sample.
//
// # Format Mapping
//
//	Format       | Kind    | Bytes | Channels
//	-------------|---------|-------|---------
//	Gray8        | uint8   | 1     | 1
//	Gray16       | uint16  | 2     | 1
//	Gray32       | uint32  | 4     | 1
//	Gray32Float  | float32 | 4     | 1
//	Bgr24        | uint8   | 1     | 3
//	Bgr48        | uint16  | 2     | 3
//	Bgr96Float   | float32 | 4     | 3
//
// Color formats share storage with their grayscale counterpart; only the
// channel count differs. Formats that are known by id but cannot be stored
// (Bgra32, the complex formats and Gray64Float) fail every lookup with an
// [*UnsupportedError], as does any id outside the enumeration.
//
// # Key Functions
//
//   - [ByteWidth]: size of a single stored element
//   - [Channels]: 1 for grayscale, 3 for BGR formats
//   - [KindOf]: element kind used for storage
//   - [Parse]: format from its name
//   - [All]: the supported formats in id order
package pixel
