package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/pipeprint/internal/app"
	"github.com/specialistvlad/pipeprint/internal/config"
	"github.com/specialistvlad/pipeprint/internal/hclconfig"
	"github.com/specialistvlad/pipeprint/internal/policy"
	"github.com/spf13/cobra"
)

func newSynthCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth PATH...",
		Short: "Build the pipeline blueprint",
		Long:  "Load the pipeline definition from the given files or directories and write its blueprint.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig(args)
			if err != nil {
				return err
			}
			_, err = app.NewApp(outW, errW, cfg).Synthesize(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format. Options: 'json' or 'yaml'.")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the blueprint to this file instead of stdout.")
	return cmd
}

func newValidateCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate PATH...",
		Short: "Check the pipeline definition without writing a blueprint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = "json"
			cfg, err := opts.appConfig(args)
			if err != nil {
				return err
			}
			result, err := app.NewApp(outW, errW, cfg).Validate(cmd.Context())
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Fprintf(errW, "WARNING: %s\n", w)
			}
			for _, e := range result.Errors {
				fmt.Fprintf(errW, "ERROR: %s\n", e)
			}
			if opts.strict && len(result.Warnings) > 0 {
				return fmt.Errorf("validation failed: %d warning(s) treated as errors in strict mode", len(result.Warnings))
			}
			if !result.IsValid() {
				return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
			}
			fmt.Fprintln(outW, "Validation passed.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as errors.")
	return cmd
}

func newDefaultsCommand(opts *options, outW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the baseline pipeline definition for a service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.service == "" {
				return usageError("--service is required")
			}
			cfg := config.Defaults(opts.service, opts.branch)

			env := opts.environment()
			var envPtr *policy.Environment
			if env.Account != "" || env.Region != "" || env.Partition != "" {
				envPtr = &env
			}

			if opts.out == "" {
				return hclconfig.WriteConfig(outW, cfg, envPtr)
			}
			return writeFile(opts.out, func(w io.Writer) error {
				return hclconfig.WriteConfig(w, cfg, envPtr)
			})
		},
	}
	cmd.Flags().StringVar(&opts.service, "service", "", "Service name (required).")
	cmd.Flags().StringVar(&opts.branch, "branch", "master", "Branch of the main and tools repositories.")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the definition to this file instead of stdout.")
	return cmd
}

// writeFile creates path and fills it with write. A failed close is reported
// since the file is incomplete.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func newServeCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blueprint API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = "json"
			cfg, err := opts.appConfig(nil)
			if err != nil {
				return err
			}
			return app.NewApp(outW, errW, cfg).Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address.")
	return cmd
}
