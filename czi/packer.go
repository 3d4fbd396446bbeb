package czi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Packer decodes a set of tiles into one container and packs it.
type Packer struct {
	workers int
	logger  *slog.Logger
	factory *ImageFactory
}

// NewPacker creates a Packer.
func NewPacker(opts ...Option) *Packer {
	o := buildOptions(opts)
	return &Packer{
		workers: o.workers,
		logger:  o.logger,
		factory: &ImageFactory{logger: o.logger},
	}
}

// Pack copies every tile into a shared container and returns the packed
// array. All tiles must have the same pixel format. Tile windows are
// reserved in input order before any decoding starts, so tiles may be
// decoded concurrently. The first failing tile fails the request.
func (p *Packer) Pack(ctx context.Context, tiles []Tile) (*Array, error) {
	start := time.Now()

	format := Gray8
	if len(tiles) > 0 {
		if tiles[0].Bitmap == nil {
			return nil, &AllocationError{What: "tile 0: nil bitmap"}
		}
		format = tiles[0].Bitmap.PixelFormat()
	}
	for i, t := range tiles {
		if t.Bitmap == nil {
			return nil, &AllocationError{What: fmt.Sprintf("tile %d: nil bitmap", i)}
		}
		if f := t.Bitmap.PixelFormat(); f != format {
			return nil, fmt.Errorf("%w: tile %d is %s, tile 0 is %s", ErrMixedPixelFormats, i, f, format)
		}
	}

	total := lo.SumBy(tiles, func(t Tile) int {
		s := t.Bitmap.Size()
		return s.X * s.Y
	})
	c, err := NewImagesContainer(format, total)
	if err != nil {
		return nil, err
	}

	offsets := make([]int, len(tiles))
	for i, t := range tiles {
		s := t.Bitmap.Size()
		if offsets[i], err = c.reserve(s.X*s.Y, t.Coordinate.String()); err != nil {
			return nil, fmt.Errorf("tile %d: %w", i, err)
		}
	}
	stats := c.alloc.Stats()
	p.logger.Debug("container allocated",
		"format", format, "tiles", len(tiles), "elements", c.Len(), "bytes", c.ByteSize(),
		"windows", stats.TotalAllocations, "largest", stats.LargestAlloc, "unreserved", c.Remaining())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, t := range tiles {
		if gctx.Err() != nil {
			break
		}
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := p.factory.ConstructInto(t.Bitmap, t.Coordinate, t.Box, c, offsets[i], t.MosaicIndex)
			if err != nil {
				return fmt.Errorf("tile %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := pack(c, p.logger)
	if err != nil {
		return nil, err
	}
	p.logger.Info("packed tiles",
		"tiles", len(tiles), "dims", a.Dims(), "shape", a.Shape.String(), "elapsed", time.Since(start))
	return a, nil
}
