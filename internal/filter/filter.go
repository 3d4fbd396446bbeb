package filter

import (
	"errors"
	"fmt"
)

// Registered filter ids.
const (
	IDDeflate    uint16 = 1
	IDShuffle    uint16 = 2
	IDFletcher32 uint16 = 3
	IDZstd       uint16 = 32015
)

// ErrUnknownFilter is returned for a filter id with no implementation.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter is the interface implemented by all filters.
type Filter interface {
	// ID returns the filter identifier.
	ID() uint16

	// Encode transforms raw data into its filtered form.
	Encode(input []byte) ([]byte, error)

	// Decode reverses Encode.
	Decode(input []byte) ([]byte, error)
}

// Info describes one pipeline stage. The meaning of ClientData depends on
// the filter: compression level for Deflate and Zstd, element size for
// Shuffle, unused for Fletcher32.
type Info struct {
	ID         uint16
	ClientData uint32
}

// Registry maps filter IDs to filter constructors.
var Registry = map[uint16]func(uint32) Filter{
	IDDeflate:    func(cd uint32) Filter { return NewDeflate(int(cd)) },
	IDShuffle:    func(cd uint32) Filter { return NewShuffle(int(cd)) },
	IDFletcher32: func(uint32) Filter { return NewFletcher32() },
	IDZstd:       func(cd uint32) Filter { return NewZstd(int(cd)) },
}

// filterNames maps known filter IDs to their names for error messages.
var filterNames = map[uint16]string{
	IDDeflate:    "deflate",
	IDShuffle:    "shuffle",
	IDFletcher32: "fletcher32",
	IDZstd:       "zstd",
	4:            "szip",
	5:            "n-bit",
	6:            "scale-offset",
	32001:        "blosc",
	32004:        "lz4",
}

// Name returns a readable name for the filter id.
func Name(id uint16) string {
	if name, ok := filterNames[id]; ok {
		return name
	}
	return fmt.Sprintf("filter-%d", id)
}

// New creates a filter from an Info.
func New(info Info) (Filter, error) {
	constructor, ok := Registry[info.ID]
	if !ok {
		if name, known := filterNames[info.ID]; known {
			return nil, fmt.Errorf("%w: %s filter (ID %d) is not supported", ErrUnknownFilter, name, info.ID)
		}
		return nil, fmt.Errorf("%w: ID %d", ErrUnknownFilter, info.ID)
	}
	return constructor(info.ClientData), nil
}
