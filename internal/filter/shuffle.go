package filter

// Shuffle implements the byte shuffle filter.
// This filter rearranges bytes to improve compression by grouping
// similar byte positions together (e.g., all MSBs, then all next bytes, etc.).
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a shuffle filter for elements of elemSize bytes.
func NewShuffle(elemSize int) *Shuffle {
	if elemSize < 1 {
		elemSize = 1
	}
	return &Shuffle{elemSize: elemSize}
}

func (f *Shuffle) ID() uint16 {
	return IDShuffle
}

// Encode groups byte j of every element together.
// Trailing bytes that do not form a whole element are left in place.
func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input, nil
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			output[j*numElems+i] = input[i*f.elemSize+j]
		}
	}
	copy(output[numElems*f.elemSize:], input[numElems*f.elemSize:])
	return output, nil
}

// Decode reverses the shuffle transformation.
// Input is organized as: [all byte 0s][all byte 1s]...[all byte N-1s]
// Output is organized as: [elem0][elem1]...[elemM]
func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	numElems := len(input) / f.elemSize
	if f.elemSize <= 1 || numElems == 0 {
		return input, nil
	}

	output := make([]byte, len(input))
	for i := 0; i < numElems; i++ {
		for j := 0; j < f.elemSize; j++ {
			output[i*f.elemSize+j] = input[j*numElems+i]
		}
	}
	copy(output[numElems*f.elemSize:], input[numElems*f.elemSize:])
	return output, nil
}

// ElementSize returns the element size in bytes.
func (f *Shuffle) ElementSize() int {
	return f.elemSize
}
