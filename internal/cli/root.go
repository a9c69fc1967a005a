// Package cli implements recyclectl, the operator tool for the ledger store
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// store overrides; empty keeps DATABASE_DRIVER / DATABASE_URL
	Driver string
	DSN    string
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the recyclectl root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recyclectl",
		Short: "Operate the RecycleHub points ledger",
		Long: `recyclectl migrates and seeds the ledger store, works the submission
review queue and runs voucher maintenance outside the HTTP server.

Configuration is read from the same environment (and .env files) as the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (postgres|sqlite3)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database URL or sqlite file path")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewSubmissionsCommand(opts))
	cmd.AddCommand(NewVouchersCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
