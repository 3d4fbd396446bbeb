package filter

import (
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-czi/internal/binary"
)

// Fletcher32Filter appends a Fletcher-32 checksum on encode and verifies it
// on decode. The checksum is stored little-endian in the last 4 bytes.
type Fletcher32Filter struct{}

// NewFletcher32 creates a new Fletcher-32 filter.
func NewFletcher32() *Fletcher32Filter {
	return &Fletcher32Filter{}
}

func (f *Fletcher32Filter) ID() uint16 {
	return IDFletcher32
}

func (f *Fletcher32Filter) Encode(input []byte) ([]byte, error) {
	output := make([]byte, len(input)+4)
	copy(output, input)
	binary.LittleEndian.PutUint32(output[len(input):], binpkg.Fletcher32(input))
	return output, nil
}

// Decode verifies the checksum and returns the data without it.
func (f *Fletcher32Filter) Decode(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("fletcher32: input too short for checksum")
	}

	data := input[:len(input)-4]
	stored := binary.LittleEndian.Uint32(input[len(input)-4:])
	if !binpkg.VerifyFletcher32(data, stored) {
		return nil, fmt.Errorf("fletcher32: checksum mismatch (stored=0x%08x, computed=0x%08x)",
			stored, binpkg.Fletcher32(data))
	}

	return data, nil
}
