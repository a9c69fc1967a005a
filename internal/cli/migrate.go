package cli

import (
	"fmt"

	"recyclehub/internal/database"

	"github.com/spf13/cobra"
)

// MigrateResult is the outcome of a migrate run
type MigrateResult struct {
	Driver  string `json:"driver"`
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return out.Error(err)
	}
	logger, err := newLogger(opts, cfg)
	if err != nil {
		return out.Error(err)
	}
	defer logger.Sync()

	// migrate explicitly, whatever DB_AUTO_MIGRATE says
	cfg.Database.AutoMigrate = false
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		return out.Error(err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return out.Error(err)
	}
	state, err := db.MigrationStatus()
	if err != nil {
		return out.Error(err)
	}

	res := MigrateResult{Driver: string(db.Dialect()), Version: state.Version, Dirty: state.Dirty}
	return out.Success(res, fmt.Sprintf("%s schema at version %d", res.Driver, res.Version))
}
