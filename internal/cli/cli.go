package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/pipeprint/internal/app"
	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/policy"
	"github.com/spf13/cobra"
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

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Environment variables consulted when the matching flag is not set.
var (
	accountEnvVars = []string{"AWS_ACCOUNT_ID", "CDK_DEFAULT_ACCOUNT"}
	regionEnvVars  = []string{"AWS_REGION", "CDK_DEFAULT_REGION"}
)

// options holds every flag of the command tree.
type options struct {
	logLevel  string
	logFormat string

	account   string
	region    string
	partition string

	format string
	out    string
	strict bool

	service string
	branch  string

	addr string
}

// environment returns the deployment environment from flags, falling back to
// the process environment.
func (o *options) environment() policy.Environment {
	return policy.Environment{
		Account:   firstNonEmpty(o.account, accountEnvVars),
		Region:    firstNonEmpty(o.region, regionEnvVars),
		Partition: o.partition,
	}
}

func firstNonEmpty(value string, envVars []string) string {
	if value != "" {
		return value
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// appConfig builds the app configuration shared by all commands.
func (o *options) appConfig(paths []string) (*app.Config, error) {
	format, err := blueprint.ParseFormat(o.format)
	if err != nil {
		return nil, usageError("invalid format: %v", err)
	}
	cfg, err := app.NewConfig(app.Config{
		ConfigPaths: paths,
		Environment: o.environment(),
		Format:      format,
		OutPath:     o.out,
		Addr:        o.addr,
		LogFormat:   o.logFormat,
		LogLevel:    o.logLevel,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, nil
}

// validate checks the global flags.
func (o *options) validate() error {
	o.logFormat = strings.ToLower(o.logFormat)
	if o.logFormat != "text" && o.logFormat != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}

	o.logLevel = strings.ToLower(o.logLevel)
	switch o.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return nil
}

// NewRootCommand builds the pipeprint command tree. Results go to outW,
// logs and diagnostics to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pipeprint",
		Short: "Build delivery pipeline blueprints from declarative configuration",
		Long: `pipeprint turns a pipeline definition (HCL, YAML or JSON) into a blueprint
for the orchestration platform: Source, Build, DeployDev and an optional
gated DeployLive stage, plus the build role policy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&opts.account, "account", "", "Deployment account (default $AWS_ACCOUNT_ID or $CDK_DEFAULT_ACCOUNT).")
	pf.StringVar(&opts.region, "region", "", "Deployment region (default $AWS_REGION or $CDK_DEFAULT_REGION).")
	pf.StringVar(&opts.partition, "partition", "", "Partition override; derived from the region when empty.")

	root.AddCommand(
		newSynthCommand(opts, outW, errW),
		newValidateCommand(opts, outW, errW),
		newDefaultsCommand(opts, outW),
		newServeCommand(opts, outW, errW),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) && isUsageError(err) {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return err
}

// isUsageError recognizes the argument errors cobra itself produces.
func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "requires at least") ||
		strings.HasPrefix(msg, "accepts ")
}
