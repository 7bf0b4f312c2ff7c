package models

type PublishItem struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Size       int64  `json:"size"`
	IsArchived bool   `json:"is_archived"`
}

type PublishResult struct {
	BucketName      string        `json:"bucket_name"`
	PageID          string        `json:"page_id"`
	DestinationPath string        `json:"destination_path"`
	Items           []PublishItem `json:"items"`
	TotalFiles      int           `json:"total_files"`
	TotalSizeBytes  int64         `json:"total_size_bytes"`
	TotalSizeHuman  string        `json:"total_size_human"`
	OperationTime   string        `json:"operation_time"`
	ArchiveCreated  bool          `json:"archive_created"`
	UploadDuration  string        `json:"upload_duration"`
}

type ArchiveInfo struct {
	ArchivePath    string   `json:"archive_path"`
	Files          []string `json:"files"`
	CompressedSize int64    `json:"compressed_size"`
	OriginalSize   int64    `json:"original_size"`
}
