package cli

import (
	"context"
	"fmt"
	"os"

	"recyclehub/internal/appinfo"
	"recyclehub/internal/config"
	"recyclehub/internal/database"
	"recyclehub/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what a command needs from the environment. Close releases it.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *database.Manager
	services *services.ServiceCollection
	out      *OutputFormatter
}

// loadConfig applies the --driver and --dsn overrides and reads the
// environment the same way the server does.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.Driver != "" {
		os.Setenv("DB_DRIVER", opts.Driver)
	}
	if opts.DSN != "" {
		os.Setenv("DATABASE_URL", opts.DSN)
	}
	return config.Load()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func newLogger(opts *RootOptions, cfg *config.Config) (*zap.Logger, error) {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	return appinfo.NewLogger(cfg.Server.Environment, level)
}

// openApp connects to the store. With withServices it also builds the
// ledger services on top.
func openApp(opts *RootOptions, cmd *cobra.Command, withServices bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(opts, cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, db: db, out: newFormatter(opts, cmd)}
	a.out.VerboseLog("connected to %s store", db.Dialect())

	if withServices {
		sc, err := services.NewServiceCollection(db, cfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize services: %w", err)
		}
		a.services = sc
	}
	return a, nil
}

func (a *app) Close() {
	if a.services != nil {
		a.services.Shutdown(context.Background())
	}
	a.db.Close()
	a.logger.Sync()
}
