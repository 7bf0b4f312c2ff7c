package attachments

import (
	"fmt"
	"path/filepath"
	"strings"

	"confattach/internal/models"
)

const (
	DiagramsDir      = "diagrams"
	DiagramExtension = ".drawio"
)

type SkipReason string

const (
	ReasonImagesFiltered   SkipReason = "images filtered out"
	ReasonDiagramsFiltered SkipReason = "diagrams filtered out"
	ReasonUnsupportedType  SkipReason = "not an image or diagram"
)

type FilterOptions struct {
	Images   bool
	Diagrams bool
}

func DefaultFilterOptions() FilterOptions {
	return FilterOptions{Images: true, Diagrams: true}
}

// Decision is either a download or a skip with its reason.
type Decision struct {
	Download bool
	Reason   SkipReason
}

// Classify applies the filter rules in order; the first match wins.
func Classify(att models.Attachment, opts FilterOptions) Decision {
	switch {
	case att.IsImage && !opts.Images:
		return Decision{Reason: ReasonImagesFiltered}
	case att.IsDiagram && !opts.Diagrams:
		return Decision{Reason: ReasonDiagramsFiltered}
	case !att.IsImage && !att.IsDiagram:
		return Decision{Reason: ReasonUnsupportedType}
	default:
		return Decision{Download: true}
	}
}

// DiagramFilename appends the .drawio extension unless it is already there.
func DiagramFilename(title string) string {
	if strings.HasSuffix(title, DiagramExtension) {
		return title
	}
	return title + DiagramExtension
}

// DestinationPath places diagrams under outputDir/diagrams and everything
// else directly in outputDir. Titles that would escape the target directory
// are rejected.
func DestinationPath(outputDir string, att models.Attachment) (string, error) {
	dir, name := outputDir, att.Title
	if att.IsDiagram {
		dir, name = filepath.Join(outputDir, DiagramsDir), DiagramFilename(att.Title)
	}
	return safeJoin(dir, name)
}

func safeJoin(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("unsafe attachment title %q", name)
	}
	return path, nil
}
