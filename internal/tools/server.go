package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"confattach/internal/attachments"
	"confattach/internal/models"
)

const ServerName = "Confluence Attachments MCP"

// Server is the MCP server together with the tool definitions it
// advertises.
type Server struct {
	core  *server.MCPServer
	tools []mcp.Tool
}

// NewServer registers the attachment tools on a new MCP server.
func NewServer(svc *Service, version string) *Server {
	core := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	set := toolSet(svc)
	core.AddTools(set...)

	definitions := make([]mcp.Tool, 0, len(set))
	for _, t := range set {
		definitions = append(definitions, t.Tool)
	}
	return &Server{core: core, tools: definitions}
}

// Tools lists the registered tool definitions in registration order.
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

func toolSet(svc *Service) []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("list_attachments",
				mcp.WithDescription(`[STEP 1] List all attachments for a Confluence page.

Retrieves metadata for all attachments on a page, excluding temporary and
draft files. Each entry carries id, title, mediaType, fileSize, isImage and
isDiagram.`),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("The Confluence page ID (numeric)")),
			),
			Handler: svc.handleListAttachments,
		},
		{
			Tool: mcp.NewTool("get_attachment_metadata",
				mcp.WithDescription(`[STEP 2] Get detailed metadata for a specific attachment.`),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("The Confluence page ID")),
				mcp.WithString("attachment_id", mcp.Required(), mcp.Description("The attachment ID")),
			),
			Handler: svc.handleGetAttachmentMetadata,
		},
		{
			Tool: mcp.NewTool("download_all_attachments",
				mcp.WithDescription(`[STEP 3] Download all attachments from a Confluence page.

Images are saved to output_dir, draw.io diagrams to output_dir/diagrams
with a .drawio extension.`),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("The Confluence page ID")),
				mcp.WithString("output_dir", mcp.Required(), mcp.Description("Local directory path to save files")),
				mcp.WithBoolean("download_images", mcp.DefaultBool(true), mcp.Description("Whether to download image files")),
				mcp.WithBoolean("download_diagrams", mcp.DefaultBool(true), mcp.Description("Whether to download draw.io diagrams")),
			),
			Handler: svc.handleDownloadAllAttachments,
		},
		{
			Tool: mcp.NewTool("download_specific_attachment",
				mcp.WithDescription(`[STEP 4] Download a specific attachment by ID to a full file path.`),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("The Confluence page ID")),
				mcp.WithString("attachment_id", mcp.Required(), mcp.Description("The attachment ID")),
				mcp.WithString("output_path", mcp.Required(), mcp.Description("Full local file path (including filename) to save to")),
			),
			Handler: svc.handleDownloadSpecificAttachment,
		},
	}
}

func (s *Service) handleListAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := stringArg(req, "page_id")
	if err != nil {
		return argumentError(err)
	}
	return toolResult(s.ListAttachments(ctx, pageID))
}

func (s *Service) handleGetAttachmentMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := stringArg(req, "page_id")
	if err != nil {
		return argumentError(err)
	}
	attachmentID, err := stringArg(req, "attachment_id")
	if err != nil {
		return argumentError(err)
	}
	return toolResult(s.GetAttachmentMetadata(ctx, pageID, attachmentID))
}

func (s *Service) handleDownloadAllAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := stringArg(req, "page_id")
	if err != nil {
		return argumentError(err)
	}
	outputDir, err := stringArg(req, "output_dir")
	if err != nil {
		return argumentError(err)
	}
	opts := attachments.FilterOptions{
		Images:   boolArg(req, "download_images", true),
		Diagrams: boolArg(req, "download_diagrams", true),
	}
	return toolResult(s.DownloadAllAttachments(ctx, pageID, outputDir, opts))
}

func (s *Service) handleDownloadSpecificAttachment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := stringArg(req, "page_id")
	if err != nil {
		return argumentError(err)
	}
	attachmentID, err := stringArg(req, "attachment_id")
	if err != nil {
		return argumentError(err)
	}
	outputPath, err := stringArg(req, "output_path")
	if err != nil {
		return argumentError(err)
	}
	return toolResult(s.DownloadSpecificAttachment(ctx, pageID, attachmentID, outputPath))
}

// toolResult encodes either the success payload or the tool error as the
// JSON text content of the result.
func toolResult(payload any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		var toolErr *models.ToolError
		if !errors.As(err, &toolErr) {
			toolErr = models.NewToolError(models.ErrAPI, err.Error())
		}
		payload = toolErr
	}

	data, merr := json.Marshal(payload)
	if merr != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", merr)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// argumentError reports a missing or malformed argument in the same
// envelope as every other tool failure.
func argumentError(err error) (*mcp.CallToolResult, error) {
	return toolResult(nil, models.NewToolError(models.ErrConfiguration, err.Error()))
}

// stringArg reads a required argument. Hosts may send numeric ids, so
// numbers are accepted and formatted.
func stringArg(req mcp.CallToolRequest, key string) (string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("missing required argument %q", key)
	}

	var value string
	switch v := raw.(type) {
	case string:
		value = v
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		value = v.String()
	default:
		value = fmt.Sprint(v)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("argument %q must not be empty", key)
	}
	return value, nil
}

func boolArg(req mcp.CallToolRequest, key string, defaultValue bool) bool {
	switch v := req.GetArguments()[key].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			slog.Warn("ignoring invalid boolean argument", "key", key, "value", v)
			return defaultValue
		}
		return parsed
	default:
		return defaultValue
	}
}
