// Package attachments lists, classifies, filters and downloads the
// attachments of a Confluence page.
package attachments

import (
	"context"
	"fmt"
	"log/slog"

	"confattach/internal/confluence"
	"confattach/internal/models"
)

// Source is the remote listing a Catalog reads from.
type Source interface {
	GetAttachments(ctx context.Context, pageID string) ([]confluence.RawAttachment, error)
	BaseURL() string
}

// ListError wraps a failed remote listing.
type ListError struct {
	PageID string
	Err    error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("failed to list attachments for page %s: %v", e.PageID, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

type Catalog struct {
	source Source
}

func NewCatalog(source Source) *Catalog {
	return &Catalog{source: source}
}

// ListAttachments returns the page's attachments in remote order, without
// drafts and temporary files. An empty listing is not an error.
func (c *Catalog) ListAttachments(ctx context.Context, pageID string) ([]models.Attachment, error) {
	raw, err := c.source.GetAttachments(ctx, pageID)
	if err != nil {
		return nil, &ListError{PageID: pageID, Err: err}
	}

	baseURL := c.source.BaseURL()
	attachments := make([]models.Attachment, 0, len(raw))
	for _, att := range raw {
		mediaType := att.Metadata.MediaType
		if models.IsDraft(att.Title, mediaType) {
			slog.Debug("skipping temporary attachment", "page_id", pageID, "title", att.Title, "media_type", mediaType)
			continue
		}
		if att.ID == "" || att.Title == "" || att.Links.Download == "" {
			slog.Debug("skipping incomplete attachment", "page_id", pageID, "attachment_id", att.ID, "title", att.Title)
			continue
		}
		attachments = append(attachments, models.NewAttachment(
			att.ID,
			att.Title,
			mediaType,
			att.Extensions.FileSize,
			baseURL+att.Links.Download,
		))
	}

	return attachments, nil
}

// GetAttachmentMetadata scans the page listing for attachmentID. The bool is
// false when the page has no such attachment.
func (c *Catalog) GetAttachmentMetadata(ctx context.Context, pageID, attachmentID string) (models.Attachment, bool, error) {
	attachments, err := c.ListAttachments(ctx, pageID)
	if err != nil {
		return models.Attachment{}, false, err
	}
	for _, att := range attachments {
		if att.ID == attachmentID {
			return att, true, nil
		}
	}
	return models.Attachment{}, false, nil
}
