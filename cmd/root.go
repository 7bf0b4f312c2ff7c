package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"confattach/config"
	"confattach/internal/logging"
)

const version = "0.1.0"

// ErrReported marks a failure whose details were already written as JSON.
var ErrReported = errors.New("error already reported")

// usageError is a failure caused by how the program was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func NewRootCmd(cfg *config.Config) *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:   "confattach <page_id> [output_dir]",
		Short: "Download images and draw.io diagrams attached to a Confluence page",
		Long: `confattach lists and downloads the attachments of a Confluence page.

Images are saved to the output directory, draw.io diagrams to output_dir/diagrams
with a .drawio extension. Temporary and draft attachments are never downloaded.

Environment Variables:
  CONFLUENCE_URL             Base URL of the Confluence instance
  CONFLUENCE_PERSONAL_TOKEN  Personal access token for authentication
Configuration is loaded from .env file or environment variables.`,
		Example: `  # Download into the current directory
  confattach 1142972070

  # Download into ./output, diagrams only
  confattach 1142972070 ./output --no-images

  # Docker
  docker run --rm -v $(pwd)/output:/output \
    -e CONFLUENCE_URL='https://your-confluence.com/' \
    -e CONFLUENCE_PERSONAL_TOKEN='your-token' \
    confattach 1142972070 /output`,
		Version:       version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			level := cfg.LogLevel
			if isVerbose(cmd) {
				level = "DEBUG"
			}
			return logging.Configure(level, cfg.Debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, cfg, args, flags)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().Int("timeout", 3600, "Timeout in seconds for the operation")
	flags.register(cmd)

	cmd.AddCommand(
		newListCmd(cfg),
		newInfoCmd(cfg),
		newGetCmd(cfg),
		newServeCmd(cfg),
	)

	return cmd
}

// Execute runs the command line and reports failures on stderr.
func Execute(ctx context.Context, cfg *config.Config) error {
	root := NewRootCmd(cfg)
	err := root.ExecuteContext(ctx)
	if err != nil {
		reportError(os.Stderr, err)
	}
	return err
}

func reportError(w io.Writer, err error) {
	if errors.Is(err, ErrReported) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(w, "Run with --help for usage information")
	}
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
}
