package models

type ErrorKind string

const (
	ErrConfiguration ErrorKind = "configuration_error"
	ErrAPI           ErrorKind = "api_error"
	ErrDownload      ErrorKind = "download_error"
	ErrNotFound      ErrorKind = "not_found"
)

const (
	ResponseSuccess = "success"
	ResponseError   = "error"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

// ToolError is returned by a tool operation instead of its success payload.
type ToolError struct {
	Status  string    `json:"status"`
	Kind    ErrorKind `json:"error"`
	Message string    `json:"message"`
}

func (e *ToolError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func NewToolError(kind ErrorKind, message string) *ToolError {
	return &ToolError{Status: ResponseError, Kind: kind, Message: message}
}

type ListAttachmentsResponse struct {
	Status      string       `json:"status"`
	PageID      string       `json:"page_id"`
	Count       int          `json:"count"`
	Attachments []Attachment `json:"attachments"`
}

type AttachmentResponse struct {
	Status     string      `json:"status"`
	Attachment *Attachment `json:"attachment"`
}

type DownloadResponse struct {
	Status     string          `json:"status"`
	Attachment *DownloadResult `json:"attachment"`
}

type DownloadAllResponse struct {
	Status           string           `json:"status"`
	PageID           string           `json:"page_id"`
	OutputDir        string           `json:"output_dir"`
	TotalAttachments int              `json:"total_attachments"`
	Downloaded       int              `json:"downloaded"`
	Skipped          int              `json:"skipped"`
	Errors           int              `json:"errors"`
	Results          []DownloadResult `json:"results"`
}
