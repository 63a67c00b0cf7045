package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

func newChannelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List supported channels and their file name markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHANNEL\tLABEL\tFILE MARKER\tREPORTED\tREQUIRES")
			for _, d := range listing.All() {
				reported := "no"
				if d.Portal() {
					reported = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Channel, d.Label, d.FileMarker, reported, d.Companion)
			}
			return tw.Flush()
		},
	}
}
