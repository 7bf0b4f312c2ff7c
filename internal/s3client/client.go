package s3client

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "confattach/config"
	"confattach/internal/models"
	"confattach/pkg/utils"
)

// Client publishes downloaded attachments to an S3-compatible bucket.
type Client struct {
	s3Client *s3.Client
	config   appConfig.S3Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	if err := cfg.RequireS3(); err != nil {
		return nil, err
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.S3.Region)}
	if cfg.S3.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.S3.AccessKey,
				SecretAccessKey: cfg.S3.SecretKey,
			},
		}))
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.S3.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg.S3,
	}, nil
}

// PublishOptions controls where a batch lands in the bucket.
type PublishOptions struct {
	Prefix  string
	Archive bool
}

// PublishResults uploads the successful entries of a download batch. Files
// keep their layout relative to outputDir under <prefix>/<pageID>/. With
// Archive set they are zipped into one object instead.
func (c *Client) PublishResults(ctx context.Context, pageID, outputDir string, results []models.DownloadResult, opts PublishOptions) (*models.PublishResult, error) {
	startTime := time.Now()
	destination := DestinationPrefix(opts.Prefix, pageID)

	items, err := PlanUploads(destination, outputDir, results)
	if err != nil {
		return nil, err
	}

	localPaths := make([]string, 0, len(items))
	for _, item := range items {
		localPaths = append(localPaths, item.LocalPath)
	}
	if err := utils.ValidatePaths(localPaths); err != nil {
		return nil, fmt.Errorf("path validation failed: %w", err)
	}

	uploader := manager.NewUploader(c.s3Client)
	var totalSize int64

	if opts.Archive && len(items) > 0 {
		archivePath := filepath.Join(os.TempDir(), utils.GenerateArchiveName(pageID, ".zip"))
		archiveInfo, err := utils.CreateArchive(outputDir, localPaths, archivePath)
		if err != nil {
			utils.CleanupTempFile(archivePath)
			return nil, fmt.Errorf("failed to create archive: %w", err)
		}
		defer utils.CleanupTempFile(archivePath)

		remotePath := buildRemotePath(destination, filepath.Base(archivePath))
		if err := c.uploadSingleFile(ctx, uploader, archivePath, remotePath); err != nil {
			return nil, fmt.Errorf("failed to upload archive: %w", err)
		}

		items = []models.PublishItem{{
			LocalPath:  strings.Join(localPaths, ", "),
			RemotePath: remotePath,
			Size:       archiveInfo.CompressedSize,
			IsArchived: true,
		}}
		totalSize = archiveInfo.CompressedSize
	} else {
		for _, item := range items {
			if err := c.uploadSingleFile(ctx, uploader, item.LocalPath, item.RemotePath); err != nil {
				return nil, fmt.Errorf("failed to upload %s: %w", item.LocalPath, err)
			}
			totalSize += item.Size
		}
	}

	return &models.PublishResult{
		BucketName:      c.config.BucketName,
		PageID:          pageID,
		DestinationPath: destination,
		Items:           items,
		TotalFiles:      len(items),
		TotalSizeBytes:  totalSize,
		TotalSizeHuman:  utils.FormatBytes(totalSize),
		OperationTime:   utils.FormatTime(startTime),
		ArchiveCreated:  opts.Archive && len(items) > 0,
		UploadDuration:  time.Since(startTime).String(),
	}, nil
}

// PlanUploads maps every successful download to its object key.
func PlanUploads(destination, outputDir string, results []models.DownloadResult) ([]models.PublishItem, error) {
	var items []models.PublishItem
	for _, r := range results {
		if r.Status != models.StatusSuccess || r.OutputPath == "" {
			continue
		}
		name, err := utils.RelativeName(outputDir, r.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", r.OutputPath, err)
		}
		var size int64
		if r.FileSize != nil {
			size = *r.FileSize
		}
		items = append(items, models.PublishItem{
			LocalPath:  r.OutputPath,
			RemotePath: buildRemotePath(destination, name),
			Size:       size,
		})
	}
	return items, nil
}

func DestinationPrefix(prefix, pageID string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return pageID
	}
	return prefix + "/" + pageID
}

func (c *Client) uploadSingleFile(ctx context.Context, uploader *manager.Uploader, localPath, remotePath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(remotePath),
		Body:        file,
		ContentType: aws.String(detectContentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func buildRemotePath(destinationPath, filename string) string {
	destinationPath = strings.Trim(destinationPath, "/")
	if destinationPath == "" {
		return filename
	}
	return path.Join(destinationPath, filename)
}

func detectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	contentTypes := map[string]string{
		".drawio": models.DiagramMediaType,
		".png":    "image/png",
		".jpg":    "image/jpeg",
		".jpeg":   "image/jpeg",
		".gif":    "image/gif",
		".svg":    "image/svg+xml",
		".webp":   "image/webp",
		".bmp":    "image/bmp",
		".zip":    "application/zip",
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	return "application/octet-stream"
}
