package cli

import (
	"fmt"

	"recyclehub/internal/seed"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Upsert challenges and rewards from a YAML catalog",
		Long: `Upsert challenges and rewards from a YAML catalog.

Entries are matched by id, so re-running the same file updates in place.
Reward stock in the file replaces the stored stock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	catalog, err := seed.LoadFile(path)
	if err != nil {
		return out.Error(err)
	}
	out.VerboseLog("read %d challenge(s) and %d reward(s) from %s", len(catalog.Challenges), len(catalog.Rewards), path)

	a, err := openApp(opts, cmd, true)
	if err != nil {
		return out.Error(err)
	}
	defer a.Close()

	res, err := seed.Apply(cmd.Context(), a.services.Catalog, catalog, a.logger)
	if err != nil {
		return out.Error(err)
	}
	return out.Success(res, fmt.Sprintf("seeded %d challenge(s) and %d reward(s)", res.Challenges, res.Rewards))
}
