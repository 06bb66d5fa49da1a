package cli

import (
	"fmt"
	"time"

	"kafila-ticketing/internal/auth"
	"kafila-ticketing/internal/config"

	"github.com/spf13/cobra"
)

// NewTokenCommand creates the token command. It signs with STAFF_TOKEN_SECRET
// so it must run where the service's configuration is available.
func NewTokenCommand(_ *RootOptions) *cobra.Command {
	var (
		subject string
		roles   []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff token for the scanner or admin routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			token, err := auth.IssueStaffToken(cfg.Auth.StaffTokenSecret, cfg.Auth.StaffTokenIssuer, subject, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "who the token is for, e.g. gate-1")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.ScannerRole}, "roles to grant (SCANNER, ADMIN)")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("subject")

	return cmd
}
