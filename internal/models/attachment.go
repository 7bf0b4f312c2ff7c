package models

import "strings"

// DiagramMediaType is the media type Confluence reports for draw.io diagrams.
const DiagramMediaType = "application/vnd.jgraph.mxfile"

// Attachment is the classified metadata of one page attachment.
type Attachment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	MediaType   string `json:"mediaType"`
	FileSize    int64  `json:"fileSize"`
	DownloadURL string `json:"downloadUrl"`
	IsImage     bool   `json:"isImage"`
	IsDiagram   bool   `json:"isDiagram"`
}

// NewAttachment fills the derived fields from the media type.
func NewAttachment(id, title, mediaType string, fileSize int64, downloadURL string) Attachment {
	return Attachment{
		ID:          id,
		Title:       title,
		MediaType:   mediaType,
		FileSize:    fileSize,
		DownloadURL: downloadURL,
		IsImage:     strings.HasPrefix(mediaType, "image/"),
		IsDiagram:   mediaType == DiagramMediaType,
	}
}

// IsDraft reports whether the platform marks the attachment as temporary.
func IsDraft(title, mediaType string) bool {
	return strings.HasPrefix(title, "~") || strings.Contains(strings.ToLower(mediaType), "draft")
}
