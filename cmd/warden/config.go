package main

import (
	"fmt"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/warden"
	"github.com/bft-labs/warden/internal/cliconfig"
)

// loadConfig layers the config file and WARDEN_* environment under the
// flags the user set explicitly, then validates the result.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, path string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	explicit := path != ""
	if !explicit {
		path = cliconfig.DefaultConfigPath()
	}
	switch {
	case path != "" && cliconfig.FileExists(path):
		fc, err := cliconfig.LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return fmt.Errorf("%w: %w", warden.ErrInvalidConfig, err)
		}
	case explicit:
		return fmt.Errorf("%w: config file %s not found", warden.ErrInvalidConfig, path)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return fmt.Errorf("%w: environment: %w", warden.ErrInvalidConfig, err)
	}
	return cfg.Validate()
}

// options maps the CLI configuration onto Application options.
func options(cfg cliconfig.Config, env *warden.Env) warden.Options {
	return warden.Options{
		BaseDir:         cfg.BaseDir,
		Env:             env,
		TickInterval:    cfg.TickInterval,
		DialTimeout:     cfg.DialTimeout,
		ResponseTimeout: cfg.ResponseTimeout,
		KillWait:        cfg.KillWait,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}
