package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"confattach/config"
	"confattach/internal/models"
	"confattach/internal/tools"
	"confattach/pkg/utils"
)

func newListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list <page_id>",
		Short: "List the attachments of a Confluence page as JSON",
		Long: `List all attachments of a Confluence page, excluding temporary and draft files.

The result is printed as JSON with the id, title, media type, size and
classification of every attachment.`,
		Example: `  confattach list 1142972070`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			resp, err := tools.NewService(cfg).ListAttachments(ctx, args[0])
			return printToolResult(cmd, resp, err)
		},
	}
}

// printToolResult writes the tool payload, or its error envelope, as JSON.
func printToolResult(cmd *cobra.Command, payload any, err error) error {
	out := cmd.OutOrStdout()
	if err != nil {
		var toolErr *models.ToolError
		if !errors.As(err, &toolErr) {
			utils.WriteError(out, err, cmd.Name())
			return ErrReported
		}
		if werr := utils.WriteJSON(out, toolErr); werr != nil {
			return werr
		}
		return ErrReported
	}
	return utils.WriteJSON(out, payload)
}
