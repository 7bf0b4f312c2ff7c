package cmd

import (
	"github.com/spf13/cobra"

	"confattach/config"
	"confattach/internal/tools"
)

func newInfoCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "info <page_id> <attachment_id>",
		Short:   "Show the metadata of a single attachment as JSON",
		Example: `  confattach info 1142972070 att1142972071`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			resp, err := tools.NewService(cfg).GetAttachmentMetadata(ctx, args[0], args[1])
			return printToolResult(cmd, resp, err)
		},
	}
}
