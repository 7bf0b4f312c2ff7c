package utils

import (
	"archive/zip"
	"confattach/internal/models"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CreateArchive zips files into outputPath, naming each entry by its path
// relative to baseDir.
func CreateArchive(baseDir string, files []string, outputPath string) (info *models.ArchiveInfo, err error) {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
	}()

	zipWriter := zip.NewWriter(outFile)

	var originalSize int64
	for _, path := range files {
		size, err := addToArchive(zipWriter, baseDir, path)
		if err != nil {
			zipWriter.Close()
			return nil, fmt.Errorf("failed to add %s to archive: %w", path, err)
		}
		originalSize += size
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	fileInfo, err := outFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get archive info: %w", err)
	}

	return &models.ArchiveInfo{
		ArchivePath:    outputPath,
		Files:          files,
		CompressedSize: fileInfo.Size(),
		OriginalSize:   originalSize,
	}, nil
}

func addToArchive(zipWriter *zip.Writer, baseDir, path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}

	name, err := RelativeName(baseDir, path)
	if err != nil {
		return 0, err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return io.Copy(writer, file)
}

// RelativeName returns path relative to baseDir in slash form, falling back
// to the base name for paths outside baseDir.
func RelativeName(baseDir, path string) (string, error) {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(rel), nil
}

func GenerateArchiveName(pageID, extension string) string {
	return fmt.Sprintf("%s_%s%s", pageID, time.Now().Format("20060102_150405"), extension)
}

func ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("path does not exist: %s", path)
			}
			return fmt.Errorf("cannot access path %s: %w", path, err)
		}
	}
	return nil
}

func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to cleanup temporary file %s: %w", path, err)
	}
	return nil
}
