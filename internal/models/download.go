package models

type DownloadStatus string

const (
	StatusSuccess DownloadStatus = "success"
	StatusSkipped DownloadStatus = "skipped"
	StatusError   DownloadStatus = "error"
)

// DownloadResult is the outcome of one attachment in a batch.
type DownloadResult struct {
	AttachmentID string         `json:"attachment_id"`
	Title        string         `json:"title,omitempty"`
	Status       DownloadStatus `json:"status"`
	OutputPath   string         `json:"output_path,omitempty"`
	FileSize     *int64         `json:"file_size,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func Succeeded(id, title, outputPath string, size int64) DownloadResult {
	return DownloadResult{AttachmentID: id, Title: title, Status: StatusSuccess, OutputPath: outputPath, FileSize: &size}
}

func Skipped(id, title, reason string) DownloadResult {
	return DownloadResult{AttachmentID: id, Title: title, Status: StatusSkipped, Reason: reason}
}

func Failed(id, title string, err error) DownloadResult {
	return DownloadResult{AttachmentID: id, Title: title, Status: StatusError, Error: err.Error()}
}

type DownloadSummary struct {
	Total      int
	Downloaded int
	Skipped    int
	Errors     int
}

func Summarize(results []DownloadResult) DownloadSummary {
	summary := DownloadSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			summary.Downloaded++
		case StatusSkipped:
			summary.Skipped++
		case StatusError:
			summary.Errors++
		}
	}
	return summary
}
