package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-czi/czi"
	"github.com/robert-malhotra/go-czi/npy"
)

type packFlags struct {
	output   string
	workers  int
	codec    string
	level    int
	shuffle  bool
	checksum bool
}

func newPackCmd() *cobra.Command {
	var f packFlags
	cmd := &cobra.Command{
		Use:   "pack DIR",
		Short: "Pack the tiles in DIR and write the array as .npy",
		Long: `Pack reads every .png, .tif and .tiff file in DIR. File names carry the
tile coordinate and an optional mosaic index, e.g. T0C1Z4.tif or S0_m12.png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: print shape only)")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 1, "tiles decoded concurrently")
	cmd.Flags().StringVar(&f.codec, "compress", "none", "wrap output in a filtered frame: none, zstd or deflate")
	cmd.Flags().IntVar(&f.level, "level", 0, "compression level (0: codec default)")
	cmd.Flags().BoolVar(&f.shuffle, "shuffle", false, "shuffle element bytes before compression")
	cmd.Flags().BoolVar(&f.checksum, "checksum", false, "append a Fletcher-32 checksum")
	return cmd
}

func parseCodec(s string) (npy.Codec, error) {
	switch s {
	case "none", "":
		return npy.CodecNone, nil
	case "zstd":
		return npy.CodecZstd, nil
	case "deflate", "zlib":
		return npy.CodecDeflate, nil
	}
	return npy.CodecNone, fmt.Errorf("unknown codec %q", s)
}

func runPack(cmd *cobra.Command, dir string, f packFlags) error {
	codec, err := parseCodec(f.codec)
	if err != nil {
		return err
	}
	tiles, err := loadTiles(dir)
	if err != nil {
		return err
	}

	start := time.Now()
	p := czi.NewPacker(czi.WithWorkers(f.workers), czi.WithLogger(slog.Default()))
	a, err := p.Pack(cmd.Context(), tiles)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tiles:   %d\n", len(tiles))
	fmt.Fprintf(out, "format:  %s\n", a.PixelFormat.Title())
	fmt.Fprintf(out, "dims:    %s\n", a.Dims())
	fmt.Fprintf(out, "shape:   %s\n", a.Shape)
	fmt.Fprintf(out, "elapsed: %s\n", elapsed)

	if f.output == "" {
		return nil
	}
	w, err := os.Create(f.output)
	if err != nil {
		return err
	}
	filtered := codec != npy.CodecNone || f.shuffle || f.checksum
	if filtered {
		var opts []npy.WriteOption
		opts = append(opts, npy.WithCompression(codec, f.level))
		if f.shuffle {
			opts = append(opts, npy.WithShuffle())
		}
		if f.checksum {
			opts = append(opts, npy.WithChecksum())
		}
		err = npy.WriteFiltered(w, a, opts...)
	} else {
		err = npy.Write(w, a)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	slog.Info("wrote array", "path", f.output, "bytes", len(a.Bytes()), "filtered", filtered)
	return nil
}
