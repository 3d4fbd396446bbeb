package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/robert-malhotra/go-czi/czi"
)

// decoders maps tile file extensions to image decoders.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
}

// parseTileName splits a tile file name of the form
// <coordinate>[_m<mosaic>].<ext>, e.g. "T0C1Z4.tif" or "S0_m12.png".
func parseTileName(name string) (czi.Coordinate, int, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	mosaic := czi.NoMosaic
	if i := strings.LastIndex(base, "_m"); i >= 0 {
		m, err := strconv.Atoi(base[i+2:])
		if err != nil || m < 0 {
			return nil, 0, fmt.Errorf("tile %q: bad mosaic index %q", name, base[i+2:])
		}
		mosaic = m
		base = base[:i]
	}
	coord, err := czi.ParseCoordinate(base)
	if err != nil {
		return nil, 0, fmt.Errorf("tile %q: %w", name, err)
	}
	return coord, mosaic, nil
}

// loadTiles decodes every tile image in dir, in file name order.
func loadTiles(dir string) ([]czi.Tile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var tiles []czi.Tile
	for _, e := range entries {
		decode, ok := decoders[strings.ToLower(filepath.Ext(e.Name()))]
		if e.IsDir() || !ok {
			continue
		}
		coord, mosaic, err := parseTileName(e.Name())
		if err != nil {
			return nil, err
		}
		img, err := decodeFile(filepath.Join(dir, e.Name()), decode)
		if err != nil {
			return nil, err
		}
		bm, err := czi.FromImage(img)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", e.Name(), err)
		}
		tiles = append(tiles, czi.Tile{
			Bitmap:      bm,
			Coordinate:  coord,
			Box:         img.Bounds(),
			MosaicIndex: mosaic,
		})
	}
	return tiles, nil
}

func decodeFile(path string, decode func(io.Reader) (image.Image, error)) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
