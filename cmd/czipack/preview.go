package main

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xfmoulet/qoi"

	"github.com/robert-malhotra/go-czi/czi"
	"github.com/robert-malhotra/go-czi/npy"
)

func newPreviewCmd() *cobra.Command {
	var (
		output string
		dims   string
		at     map[string]int
	)
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Write one Y x X plane of a packed array as a QOI image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readArray(args[0], dims)
			if err != nil {
				return err
			}
			coord := make(map[czi.Dim]int, len(at))
			for k, v := range at {
				if len(k) != 1 {
					return fmt.Errorf("--at: %q is not a dimension label", k)
				}
				coord[czi.Dim(k[0])] = v
			}
			plane, err := a.Plane(coord)
			if err != nil {
				return err
			}
			img, err := grayImage(plane)
			if err != nil {
				return err
			}

			w, err := os.Create(output)
			if err != nil {
				return err
			}
			err = qoi.Encode(w, img)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d preview to %s\n", img.Rect.Dx(), img.Rect.Dy(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "preview.qoi", "output file")
	cmd.Flags().StringVar(&dims, "dims", "", "axis labels of the stored array, e.g. TCYX")
	cmd.Flags().StringToIntVar(&at, "at", nil, "plane to extract, e.g. T=0,C=1")
	_ = cmd.MarkFlagRequired("dims")
	return cmd
}

// readArray reads a plain or filtered .npy file.
func readArray(path, dims string) (*czi.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(len(npy.FrameMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if string(magic) == npy.FrameMagic {
		return npy.ReadFiltered(br, npy.WithDims(dims))
	}
	return npy.Read(br, npy.WithDims(dims))
}

// grayImage converts an 8 or 16 bit plane to an 8 bit image. 16 bit samples
// keep their high byte.
func grayImage(a *czi.Array) (*image.Gray, error) {
	h, w := a.Shape.Extent(czi.DimY), a.Shape.Extent(czi.DimX)
	img := image.NewGray(image.Rect(0, 0, w, h))
	switch data := a.Data.(type) {
	case czi.Uint8Buffer:
		copy(img.Pix, data)
	case czi.Uint16Buffer:
		for i, v := range data {
			img.Pix[i] = uint8(v >> 8)
		}
	default:
		return nil, fmt.Errorf("preview of %s samples is not supported", a.Kind())
	}
	return img, nil
}
