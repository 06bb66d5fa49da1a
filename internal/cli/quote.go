package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"kafila-ticketing/internal/client"
	"kafila-ticketing/internal/models"

	"github.com/spf13/cobra"
)

// NewQuoteCommand creates the quote command.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "quote <tier=qty>...",
		Short:   "Price a cart the way checkout will",
		Example: "  ticketctl quote silver=3 gold=2",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, err := ParseCart(args)
			if err != nil {
				return err
			}

			q, err := client.New(rootOpts.Server, "").Quote(cmd.Context(), cart)
			if err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), rootOpts, q, func(w io.Writer) {
				for _, l := range q.Lines {
					fmt.Fprintf(w, "%-8s %3d x %8s = %10s\n", l.TierID, l.Qty, l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2))
				}
				fmt.Fprintf(w, "subtotal %s\n", q.Subtotal.StringFixed(2))
				fmt.Fprintf(w, "discount %d%% -%s\n", q.DiscountPercent, q.Discount.StringFixed(2))
				fmt.Fprintf(w, "tax      %s\n", q.Tax.StringFixed(2))
				fmt.Fprintf(w, "total    %s (%d minor units)\n", q.Total.StringFixed(2), q.TotalMinor)
			})
		},
	}
}

// ParseCart turns "silver=3" arguments into cart items. A bare tier means
// one ticket.
func ParseCart(args []string) ([]models.CartItem, error) {
	cart := make([]models.CartItem, 0, len(args))
	for _, arg := range args {
		tier, qtyStr, found := strings.Cut(arg, "=")
		qty := 1
		if found {
			n, err := strconv.Atoi(qtyStr)
			if err != nil {
				return nil, fmt.Errorf("bad quantity in %q", arg)
			}
			qty = n
		}
		if tier == "" {
			return nil, fmt.Errorf("missing tier in %q", arg)
		}
		cart = append(cart, models.CartItem{TierID: strings.ToLower(tier), Qty: qty})
	}
	return cart, nil
}
