// Package cli wires configuration, the keyword engine and its two surfaces
// (HTTP server and one-shot commands) into a cobra command tree.
package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"phrasebook/internal/config"
	"phrasebook/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	Format     string // "json" | "text"
	Remote     string
	DataDir    string

	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "phrasebook",
		Short: "Phrasebook - situational phrase pairs",
		Long: `Manage a personal collection of phrase pairs tagged by situation.

Keywords are kept in a local cache file and mirrored to a remote SQL store.
The remote store is authoritative when reachable; the cache keeps the tool
usable when it is not.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError, "invalid format", fmt.Errorf("%q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default phrasebook.yaml in . or $XDG_CONFIG_HOME/phrasebook)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Remote, "remote", "", "remote driver override (postgres|sqlite|none)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory override")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.DataDir != "" {
		cfg = cfg.WithDataDir(o.DataDir)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Remote != "" {
		cfg.Remote.Driver = strings.ToLower(o.Remote)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	logger.InitWriter(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	o.cfg = cfg
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
