package filter

import (
	"fmt"
)

// Pipeline is an ordered sequence of filters.
type Pipeline struct {
	infos   []Info
	filters []Filter
}

// NewPipeline creates a pipeline from stage descriptions.
func NewPipeline(infos []Info) (*Pipeline, error) {
	p := &Pipeline{
		infos:   make([]Info, 0, len(infos)),
		filters: make([]Filter, 0, len(infos)),
	}

	for _, info := range infos {
		f, err := New(info)
		if err != nil {
			return nil, fmt.Errorf("creating filter %d: %w", info.ID, err)
		}
		p.infos = append(p.infos, info)
		p.filters = append(p.filters, f)
	}

	return p, nil
}

// Encode applies the filters in order.
func (p *Pipeline) Encode(input []byte) ([]byte, error) {
	data := input
	for _, f := range p.filters {
		var err error
		data, err = f.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("%s encode: %w", Name(f.ID()), err)
		}
	}
	return data, nil
}

// Decode applies the filters in reverse order (last filter first).
func (p *Pipeline) Decode(input []byte) ([]byte, error) {
	data := input
	for i := len(p.filters) - 1; i >= 0; i-- {
		var err error
		data, err = p.filters[i].Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s decode: %w", Name(p.filters[i].ID()), err)
		}
	}
	return data, nil
}

// Infos returns a copy of the stage descriptions.
func (p *Pipeline) Infos() []Info {
	out := make([]Info, len(p.infos))
	copy(out, p.infos)
	return out
}

// Empty returns true if the pipeline has no filters.
func (p *Pipeline) Empty() bool {
	return len(p.filters) == 0
}

// Len returns the number of filters in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.filters)
}
