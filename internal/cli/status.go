package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"kafila-ticketing/internal/client"
	"kafila-ticketing/internal/models"

	"github.com/spf13/cobra"
)

type statusOptions struct {
	wait     bool
	interval time.Duration
	attempts int
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status <internal-order-id>",
		Short: "Show an order, optionally waiting for payment confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(rootOpts.Server, "")

			var (
				s   *models.OrderSummary
				err error
			)
			if opts.wait {
				s, err = c.WaitForSettled(cmd.Context(), args[0], opts.interval, opts.attempts)
			} else {
				s, err = c.GetOrder(cmd.Context(), args[0])
			}
			if errors.Is(err, client.ErrStillPending) {
				fmt.Fprintln(cmd.ErrOrStderr(), "still pending; confirmation may arrive later, check again or watch for the email")
				err = nil
			}
			if err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), rootOpts, s, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s  %s  used=%t\n", s.ID, s.Status, s.Amount.StringFixed(2), s.Used)
				for _, t := range s.Tickets {
					fmt.Fprintf(w, "  %s x%d\n", t.TierID, t.Qty)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&opts.wait, "wait", false, "poll until the order leaves PENDING")
	cmd.Flags().DurationVar(&opts.interval, "interval", 2*time.Second, "poll interval")
	cmd.Flags().IntVar(&opts.attempts, "attempts", 15, "maximum polls")

	return cmd
}
