package cli

import (
	"fmt"
	"io"

	"kafila-ticketing/internal/client"

	"github.com/spf13/cobra"
)

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	var admit bool

	cmd := &cobra.Command{
		Use:   "scan <payload>",
		Short: "Validate a scanned ticket and optionally admit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Token == "" {
				return fmt.Errorf("a staff token is required (--token or KAFILA_STAFF_TOKEN)")
			}
			c := client.New(rootOpts.Server, rootOpts.Token)

			s, err := c.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if admit {
				if err := c.MarkUsed(cmd.Context(), s.OrderID); err != nil {
					return err
				}
			}

			return emit(cmd.OutOrStdout(), rootOpts, s, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s\n", s.OrderID, s.Name)
				for _, t := range s.Tickets {
					fmt.Fprintf(w, "  %s x%d\n", t.TierID, t.Qty)
				}
				if admit {
					fmt.Fprintln(w, "ADMITTED")
				}
			})
		},
	}

	cmd.Flags().BoolVar(&admit, "admit", false, "mark the order used after a successful validation")
	return cmd
}
