package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// SweepResult reports one expiry sweep
type SweepResult struct {
	Expired int64 `json:"expired"`
}

// NewVouchersCommand creates the vouchers command group
func NewVouchersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vouchers",
		Short: "Voucher maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Mark every unused voucher past its expiry as EXPIRED",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			a, err := openApp(rootOpts, cmd, true)
			if err != nil {
				return out.Error(err)
			}
			defer a.Close()

			n, err := a.services.Redemptions.ExpireVouchers(cmd.Context(), time.Time{})
			if err != nil {
				return out.Error(err)
			}
			return out.Success(SweepResult{Expired: n}, fmt.Sprintf("expired %d voucher(s)", n))
		},
	})
	return cmd
}
