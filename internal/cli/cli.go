package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravigo-ml/gravigo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// options are the persistent flags shared by every subcommand.
type options struct {
	configDir string
	name      string
	logLevel  string
	logFormat string
}

// Execute parses args and runs the selected subcommand. Command output
// goes to outW.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	cmd := newRootCmd(outW)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(outW io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "gravigo",
		Short:         "Gravigo, a config-composed experiment training framework",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)

	cmd.PersistentFlags().StringVarP(&opts.configDir, "config-dir", "d", "conf", "Directory containing the experiment configuration tree.")
	cmd.PersistentFlags().StringVarP(&opts.name, "name", "n", "", "Root document name without extension.")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Override the log output format. Options: 'text' or 'json'.")

	cmd.AddCommand(runCmd(outW, opts))
	cmd.AddCommand(composeCmd(outW, opts))
	cmd.AddCommand(versionCmd(outW))
	return cmd
}

// appConfig validates the persistent flags plus the positional override
// tokens into the app's configuration.
func (o *options) appConfig(overrides []string) (*app.Config, error) {
	logFormat := strings.ToLower(o.logFormat)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(o.logLevel)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg, err := app.NewConfig(app.Config{
		ConfigDir: o.configDir,
		Name:      o.name,
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Overrides: overrides,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, nil
}
