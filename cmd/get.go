package cmd

import (
	"github.com/spf13/cobra"

	"confattach/config"
	"confattach/internal/tools"
)

func newGetCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get <page_id> <attachment_id> <output_path>",
		Short: "Download a single attachment to the given file path",
		Long: `Download one attachment by id. The output path must include the file name;
missing parent directories are created.`,
		Example: `  confattach get 1142972070 att1142972071 ./output/architecture.png`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			resp, err := tools.NewService(cfg).DownloadSpecificAttachment(ctx, args[0], args[1], args[2])
			return printToolResult(cmd, resp, err)
		},
	}
}
