// Package cli implements the ormgen command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ormkit/ormgen/internal/config"
	"github.com/ormkit/ormgen/internal/logging"
)

// Version is reported by --version and set at build time.
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	v          *viper.Viper
}

// NewRootCommand creates the root command for the ormgen CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:   "ormgen",
		Short: "Type-safe query code generator and dialect regression runner",
		Long: `ormgen generates typed query code from annotated Go structs and
checks the SQL dialects of the generated code against live databases.

Connection settings come from flags, ORMGEN_* environment variables or a
config file, in that order of precedence.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.ReadFile(opts.v, opts.ConfigFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")
	flags.String("dialect", "mssql", "database dialect (mssql, postgres or mysql)")
	flags.String("dsn", "", "database connection string")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", logging.FormatConsole, "log format (console or json)")
	flags.Duration("connect-timeout", 0, "keep retrying an unreachable database for this long")

	for key, flag := range map[string]string{
		config.KeyDialect:   "dialect",
		config.KeyDSN:       "dsn",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",

		config.KeyConnectTimeout: "connect-timeout",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewRegressCommand(opts))

	return cmd
}

// settings loads and validates the connection settings.
func (o *RootOptions) settings() (config.Settings, error) {
	s, err := config.Load(o.v)
	if err != nil {
		return config.Settings{}, NewExitError(ExitCommandError, err)
	}
	return s, nil
}

// logger builds the logger from the current log flags without requiring
// a database connection to be configured.
func (o *RootOptions) logger(w io.Writer) (zerolog.Logger, error) {
	logger, err := logging.New(o.v.GetString(config.KeyLogLevel), o.v.GetString(config.KeyLogFormat), w)
	if err != nil {
		return zerolog.Nop(), NewExitError(ExitCommandError, err)
	}
	return logger, nil
}

// Execute runs the root command with os.Args and returns the process
// exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ormgen:", err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return ExitCommandError
	}
	return ExitSuccess
}
