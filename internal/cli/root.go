package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/jobtracker/internal/config"
	"github.com/roach88/jobtracker/internal/digest"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	EnvFile  string
	Database string
	Catalog  string
	Delay    time.Duration

	// Now overrides the wall clock. Nil uses time.Now.
	Now func() time.Time

	config config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the jnt CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jnt",
		Short: "jnt - job notification tracker",
		Long: `Track the ten-step verification checklist, preferences and the daily
job digest of a job notification tracker.

State is kept in a SQLite database (--db, or JNT_DB). Shipping stays locked
until every checklist test has passed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "env file to load (default .env when present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", config.DefaultDB, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "CUE digest catalog (default built-in)")
	cmd.PersistentFlags().DurationVar(&opts.Delay, "delay", digest.DefaultDelay, "digest generation delay")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts, true))
	cmd.AddCommand(NewCheckCommand(opts, false))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewPrefsCommand(opts))
	cmd.AddCommand(NewDigestCommand(opts))
	cmd.AddCommand(NewNavCommand(opts))
	cmd.AddCommand(NewJobCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewScenariosCommand(opts))

	return cmd
}

// setup validates global flags, loads the configuration and builds the
// logger. Flags set on the command line win over the environment.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	o.config = cfg

	flags := cmd.Flags()
	if !flags.Changed("db") {
		o.Database = cfg.DB
	}
	if !flags.Changed("catalog") {
		o.Catalog = cfg.Catalog
	}
	if !flags.Changed("delay") {
		o.Delay = cfg.DigestDelay
	}
	if o.Delay < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid delay %s: must not be negative", o.Delay))
	}

	level := cfg.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

// Logger returns the configured logger, or a discarding one before setup.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
