package npy

import (
	"github.com/robert-malhotra/go-czi/czi"
	"github.com/robert-malhotra/go-czi/internal/filter"
	"github.com/robert-malhotra/go-czi/internal/pixel"
)

// Codec selects the compression stage of a filtered stream.
type Codec uint16

const (
	CodecNone    Codec = 0
	CodecDeflate Codec = Codec(filter.IDDeflate)
	CodecZstd    Codec = Codec(filter.IDZstd)
)

func (c Codec) String() string {
	if c == CodecNone {
		return "none"
	}
	return filter.Name(uint16(c))
}

// WriteOption configures WriteFiltered.
type WriteOption func(*writeOptions)

type writeOptions struct {
	codec    Codec
	level    int
	shuffle  bool
	checksum bool
}

func defaultWriteOptions() *writeOptions {
	return &writeOptions{codec: CodecZstd}
}

// WithCompression selects the codec and level. A level of 0 means the
// codec default.
func WithCompression(codec Codec, level int) WriteOption {
	return func(o *writeOptions) {
		o.codec = codec
		o.level = level
	}
}

// WithShuffle groups the bytes of each element before compression.
func WithShuffle() WriteOption {
	return func(o *writeOptions) {
		o.shuffle = true
	}
}

// WithChecksum appends a Fletcher-32 checksum to the payload.
func WithChecksum() WriteOption {
	return func(o *writeOptions) {
		o.checksum = true
	}
}

// infos builds the filter list for elements of the given size.
func (o *writeOptions) infos(elemSize int) []filter.Info {
	var infos []filter.Info
	if o.shuffle && elemSize > 1 {
		infos = append(infos, filter.Info{ID: filter.IDShuffle, ClientData: uint32(elemSize)})
	}
	if o.codec != CodecNone {
		infos = append(infos, filter.Info{ID: uint16(o.codec), ClientData: uint32(o.level)})
	}
	if o.checksum {
		infos = append(infos, filter.Info{ID: filter.IDFletcher32})
	}
	return infos
}

// ReadOption configures Read and ReadFiltered.
type ReadOption func(*readOptions)

type readOptions struct {
	dims   string
	format czi.PixelFormat
}

func buildReadOptions(opts []ReadOption) *readOptions {
	o := &readOptions{format: pixel.Invalid}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDims labels the axes of the array read, e.g. "TCYX".
func WithDims(dims string) ReadOption {
	return func(o *readOptions) {
		o.dims = dims
	}
}

// WithPixelFormat sets the pixel format of the array read. It must store the
// element kind found in the stream. The default is the gray format of that
// kind.
func WithPixelFormat(f czi.PixelFormat) ReadOption {
	return func(o *readOptions) {
		o.format = f
	}
}
