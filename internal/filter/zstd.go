package filter

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd implements Zstandard compression.
type Zstd struct {
	level int
}

// NewZstd creates a zstd filter. level uses the zstd command line scale
// (1-22); 0 selects the library default.
func NewZstd(level int) *Zstd {
	return &Zstd{level: level}
}

func (f *Zstd) ID() uint16 {
	return IDZstd
}

func (f *Zstd) Encode(input []byte) ([]byte, error) {
	opts := []zstd.EOption{}
	if f.level > 0 {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(f.level)))
	}
	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(input, make([]byte, 0, len(input)/2)), nil
}

func (f *Zstd) Decode(input []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	output, err := dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return output, nil
}
