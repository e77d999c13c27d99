package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FireRat666/Banter-Reversi/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Overrides applied on top of the config file and environment.
	Instance string
	Location string
	Store    string
	DBPath   string
	RelayURL string
	User     string
	LogFile  string

	// Config is the merged, validated configuration. Set before any
	// subcommand runs.
	Config config.Config

	logger    *slog.Logger
	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the reversi CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reversi",
		Short: "Synced Reversi",
		Long: `Two-player Reversi kept in sync through a shared property space.

Every client runs the full rule engine and publishes the game after each
move; other clients pick up the change and replace their local state.
The space is a SQLite file, an in-process space, or a websocket relay
started with "reversi serve".`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.applyOverrides(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			return opts.setupLogging(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.closeLog()
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	pf.StringVar(&opts.Instance, "instance", "", "game instance (overrides the location-derived key)")
	pf.StringVar(&opts.Location, "location", "", "hosting location the instance key is derived from")
	pf.StringVar(&opts.Store, "store", "", "property store (memory|sqlite|relay)")
	pf.StringVar(&opts.DBPath, "db", "", "path to the shared SQLite space")
	pf.StringVar(&opts.RelayURL, "url", "", "relay websocket URL, e.g. ws://localhost:8080/ws?space=lobby")
	pf.StringVar(&opts.User, "user", "", "local participant name")
	pf.StringVar(&opts.LogFile, "log-file", "", "write logs to a rolling file instead of stderr")

	// Add subcommands
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// applyOverrides copies explicitly set flags into cfg.
func (o *RootOptions) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, dst *string, val string) {
		if flags.Changed(name) {
			*dst = val
		}
	}
	set("instance", &cfg.Instance, o.Instance)
	set("location", &cfg.Location, o.Location)
	set("store", &cfg.Store.Kind, o.Store)
	set("db", &cfg.Store.Path, o.DBPath)
	set("url", &cfg.Store.URL, o.RelayURL)
	set("user", &cfg.User, o.User)
	set("log-file", &cfg.LogFile, o.LogFile)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
