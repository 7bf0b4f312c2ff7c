package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"confattach/internal/models"
)

const DefaultChunkSize = 32 * 1024

// Opener streams the body behind an authenticated download URL.
type Opener interface {
	Open(ctx context.Context, downloadURL string) (io.ReadCloser, error)
}

// SetupError is a batch-level failure before any attachment is fetched.
type SetupError struct {
	Path string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("failed to prepare %s: %v", e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

type Fetcher struct {
	catalog   *Catalog
	opener    Opener
	chunkSize int
}

type FetcherOption func(*Fetcher)

func WithChunkSize(size int) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.chunkSize = size
		}
	}
}

func NewFetcher(catalog *Catalog, opener Opener, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{catalog: catalog, opener: opener, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DownloadOne streams downloadURL into outputPath, creating parent
// directories, and reports the size found on disk afterwards.
func (f *Fetcher) DownloadOne(ctx context.Context, attachmentID, downloadURL, outputPath string) (models.DownloadResult, error) {
	body, err := f.opener.Open(ctx, downloadURL)
	if err != nil {
		return models.DownloadResult{}, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return models.DownloadResult{}, fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
	}

	if err := f.writeFile(outputPath, body); err != nil {
		return models.DownloadResult{}, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return models.DownloadResult{}, fmt.Errorf("failed to stat %s: %w", outputPath, err)
	}

	slog.Info("downloaded attachment", "attachment_id", attachmentID, "path", outputPath, "bytes", info.Size())
	return models.Succeeded(attachmentID, "", outputPath, info.Size()), nil
}

func (f *Fetcher) writeFile(path string, src io.Reader) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	buf := make([]byte, f.chunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return fmt.Errorf("failed to write %s: %w", path, werr)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("failed to read attachment body: %w", rerr)
		}
	}
}

// DownloadFiltered downloads the page's images and diagrams into outputDir.
// Failures of single attachments become error entries; only listing and
// directory setup failures abort the batch.
func (f *Fetcher) DownloadFiltered(ctx context.Context, pageID, outputDir string, opts FilterOptions) ([]models.DownloadResult, error) {
	attachments, err := f.catalog.ListAttachments(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if len(attachments) == 0 {
		return []models.DownloadResult{}, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &SetupError{Path: outputDir, Err: err}
	}
	if opts.Diagrams {
		diagramsDir := filepath.Join(outputDir, DiagramsDir)
		if err := os.MkdirAll(diagramsDir, 0o755); err != nil {
			return nil, &SetupError{Path: diagramsDir, Err: err}
		}
	}

	results := make([]models.DownloadResult, 0, len(attachments))
	for _, att := range attachments {
		decision := Classify(att, opts)
		if !decision.Download {
			slog.Debug("skipping attachment", "attachment_id", att.ID, "title", att.Title, "reason", decision.Reason)
			results = append(results, models.Skipped(att.ID, att.Title, string(decision.Reason)))
			continue
		}

		outputPath, err := DestinationPath(outputDir, att)
		if err != nil {
			results = append(results, models.Failed(att.ID, att.Title, err))
			continue
		}

		result, err := f.DownloadOne(ctx, att.ID, att.DownloadURL, outputPath)
		if err != nil {
			slog.Error("attachment download failed", "attachment_id", att.ID, "title", att.Title, "error", err)
			results = append(results, models.Failed(att.ID, att.Title, err))
			continue
		}
		result.Title = att.Title
		results = append(results, result)
	}

	return results, nil
}
