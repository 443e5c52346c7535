package cmd

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/migraview/config"
	"github.com/ridoystarlord/migraview/database"
	"github.com/ridoystarlord/migraview/debug"
	"github.com/ridoystarlord/migraview/loader"
	"github.com/ridoystarlord/migraview/runner"
)

// openState opens the applied-migration store: the YAML state file when one
// is configured, the database otherwise.
func openState(ctx context.Context) (database.Store, error) {
	if cfg.StateFile != "" {
		debug.Debug("Using state file", "path", cfg.StateFile)
		return loader.YAMLState{Fs: config.AppFs, Path: cfg.StateFile}, nil
	}

	store, err := database.Open(ctx, cfg.DatabaseURL, cfg.MigrationsTable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runner.ErrStateUnavailable, err)
	}
	return store, nil
}

func scriptSource() *loader.DirSource {
	return loader.NewDirSource(config.AppFs, cfg.MigrationsPath)
}

// newRunner wires the script directory and the state store. The returned
// func closes the store.
func newRunner(ctx context.Context) (*runner.Runner, func(), error) {
	store, err := openState(ctx)
	if err != nil {
		return nil, nil, err
	}
	scripts := scriptSource()
	return runner.New(scripts, scripts, store), store.Close, nil
}
