// Package tools implements the attachment operations offered to an
// automation host and their MCP bindings.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"confattach/config"
	"confattach/internal/attachments"
	"confattach/internal/confluence"
	"confattach/internal/models"
)

// Service runs the tool operations. Every returned error is a
// *models.ToolError carrying the error kind.
type Service struct {
	cfg      *config.Config
	resolver attachments.PathResolver
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		resolver: attachments.NewPathResolver(cfg.OutputMount, cfg.OutputWorkdir),
	}
}

func (s *Service) backend() (*attachments.Catalog, *attachments.Fetcher, error) {
	if err := s.cfg.RequireConfluence(); err != nil {
		slog.Error("configuration error", "error", err)
		return nil, nil, models.NewToolError(models.ErrConfiguration, err.Error())
	}
	client := confluence.NewClient(s.cfg.ConfluenceURL, s.cfg.PersonalToken,
		confluence.WithTimeout(s.cfg.HTTPTimeout),
		confluence.WithPageLimit(s.cfg.PageLimit),
	)
	catalog := attachments.NewCatalog(client)
	return catalog, attachments.NewFetcher(catalog, client), nil
}

func (s *Service) ListAttachments(ctx context.Context, pageID string) (*models.ListAttachmentsResponse, error) {
	slog.Info("listing attachments", "page_id", pageID)

	catalog, _, err := s.backend()
	if err != nil {
		return nil, err
	}

	list, err := catalog.ListAttachments(ctx, pageID)
	if err != nil {
		slog.Error("error listing attachments", "page_id", pageID, "error", err)
		return nil, models.NewToolError(models.ErrAPI, fmt.Sprintf("Failed to list attachments: %v", err))
	}

	return &models.ListAttachmentsResponse{
		Status:      models.ResponseSuccess,
		PageID:      pageID,
		Count:       len(list),
		Attachments: list,
	}, nil
}

func (s *Service) GetAttachmentMetadata(ctx context.Context, pageID, attachmentID string) (*models.AttachmentResponse, error) {
	slog.Info("getting attachment metadata", "page_id", pageID, "attachment_id", attachmentID)

	catalog, _, err := s.backend()
	if err != nil {
		return nil, err
	}

	att, found, err := catalog.GetAttachmentMetadata(ctx, pageID, attachmentID)
	if err != nil {
		slog.Error("error getting attachment metadata", "page_id", pageID, "attachment_id", attachmentID, "error", err)
		return nil, models.NewToolError(models.ErrAPI, fmt.Sprintf("Failed to get attachment metadata: %v", err))
	}
	if !found {
		return nil, notFound(pageID, attachmentID)
	}

	return &models.AttachmentResponse{Status: models.ResponseSuccess, Attachment: &att}, nil
}

func (s *Service) DownloadAllAttachments(ctx context.Context, pageID, outputDir string, opts attachments.FilterOptions) (*models.DownloadAllResponse, error) {
	resolved := s.resolver.Resolve(outputDir)
	slog.Info("downloading attachments", "page_id", pageID, "output_dir", outputDir, "resolved", resolved,
		"images", opts.Images, "diagrams", opts.Diagrams)

	_, fetcher, err := s.backend()
	if err != nil {
		return nil, err
	}

	results, err := fetcher.DownloadFiltered(ctx, pageID, resolved, opts)
	if err != nil {
		slog.Error("error downloading attachments", "page_id", pageID, "error", err)
		var listErr *attachments.ListError
		if errors.As(err, &listErr) {
			return nil, models.NewToolError(models.ErrAPI, fmt.Sprintf("Failed to list attachments: %v", err))
		}
		return nil, models.NewToolError(models.ErrDownload, fmt.Sprintf("Failed to download attachments: %v", err))
	}

	summary := models.Summarize(results)
	return &models.DownloadAllResponse{
		Status:           models.ResponseSuccess,
		PageID:           pageID,
		OutputDir:        outputDir,
		TotalAttachments: summary.Total,
		Downloaded:       summary.Downloaded,
		Skipped:          summary.Skipped,
		Errors:           summary.Errors,
		Results:          results,
	}, nil
}

func (s *Service) DownloadSpecificAttachment(ctx context.Context, pageID, attachmentID, outputPath string) (*models.DownloadResponse, error) {
	resolved := s.resolver.Resolve(outputPath)
	slog.Info("downloading attachment", "page_id", pageID, "attachment_id", attachmentID, "output_path", outputPath, "resolved", resolved)

	catalog, fetcher, err := s.backend()
	if err != nil {
		return nil, err
	}

	att, found, err := catalog.GetAttachmentMetadata(ctx, pageID, attachmentID)
	if err != nil {
		slog.Error("error getting attachment metadata", "page_id", pageID, "attachment_id", attachmentID, "error", err)
		return nil, models.NewToolError(models.ErrAPI, fmt.Sprintf("Failed to get attachment metadata: %v", err))
	}
	if !found {
		return nil, notFound(pageID, attachmentID)
	}

	result, err := fetcher.DownloadOne(ctx, att.ID, att.DownloadURL, resolved)
	if err != nil {
		slog.Error("error downloading attachment", "attachment_id", attachmentID, "title", att.Title, "error", err)
		return nil, models.NewToolError(models.ErrDownload, fmt.Sprintf("Failed to download attachment %s (%s): %v", att.ID, att.Title, err))
	}
	result.Title = att.Title

	return &models.DownloadResponse{Status: models.ResponseSuccess, Attachment: &result}, nil
}

func notFound(pageID, attachmentID string) error {
	return models.NewToolError(models.ErrNotFound, fmt.Sprintf("Attachment %s not found on page %s", attachmentID, pageID))
}
