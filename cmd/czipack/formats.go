package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-czi/internal/pixel"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported pixel formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tELEMENT\tCHANNELS\tBYTES/PIXEL")
			for _, f := range pixel.All() {
				bw, _ := pixel.ByteWidth(f)
				ch, _ := pixel.Channels(f)
				kind, _ := pixel.KindOf(f)
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", uint8(f), f.Title(), kind, ch, bw*ch)
			}
			return tw.Flush()
		},
	}
}
