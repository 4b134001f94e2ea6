package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cathedral-dev/codexc/internal/config"
	"github.com/cathedral-dev/codexc/internal/logging"
)

// OptionalStringFlag returns the flag value, or "" when the flag is
// not defined on the command.
func OptionalStringFlag(cmd *cobra.Command, name string) string {
	if cmd.Flags().Lookup(name) == nil {
		return ""
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// OptionalBoolFlag returns the flag value, or false when the flag is
// not defined on the command.
func OptionalBoolFlag(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Lookup(name) == nil {
		return false
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// setup loads configuration and builds the run logger shared by every
// subcommand.
func setup(cmd *cobra.Command) (config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(OptionalStringFlag(cmd, "config"))
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
