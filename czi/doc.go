// Package czi packs decoded microscopy tiles into one contiguous,
// labelled array.
//
// A reader hands over tiles as [Bitmap] values together with their
// acquisition [Coordinate], bounding box and mosaic index. The tiles are
// copied into a shared [ImagesContainer] through disjoint windows and then
// reconciled into a single [Array] whose shape follows the canonical
// dimension order B V H I S R T C Z M Y X.
//
// # Basic Usage
//
//	p := czi.NewPacker(czi.WithWorkers(4))
//	a, err := p.Pack(ctx, tiles)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(a.Dims(), a.Shape) // e.g. TCYX [(T,2) (C,3) (Y,512) (X,512)]
//	samples, err := czi.ArrayData[uint16](a)
//
// # Lower-Level API
//
// [ImageFactory] builds a single [TypedImage], either owning its samples
// ([ImageFactory.ConstructImage]) or as a window into a container
// ([ImageFactory.ConstructInto]). [Pack] turns a filled container into an
// array. The container is consumed; packing it again fails with
// [ErrConsumed].
//
// # Color Tiles
//
// Bgr formats are stored planar: the interleaved B, G, R samples of a
// bitmap are split into three Y x X planes in that order, and the packed
// shape carries three times as many C entries as there are distinct
// channel coordinates.
package czi
