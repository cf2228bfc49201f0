package library

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/coolbeans/treatise/pkg/extract"
	"github.com/coolbeans/treatise/pkg/statute"
)

// SegmentText runs the segmenter over raw statute text and wraps the result
// in a Statute with the given ID and title.
func SegmentText(rawText string, statuteID, title string, segmenter *extract.Segmenter) (*statute.Statute, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("source text is empty")
	}
	if statuteID == "" {
		return nil, fmt.Errorf("statute ID is required")
	}
	if segmenter == nil {
		segmenter = extract.NewSegmenter()
	}

	if title == "" {
		title = statuteID
	}

	return &statute.Statute{
		ID:       statuteID,
		Title:    title,
		Chapters: segmenter.Segment(rawText),
	}, nil
}

// SegmenterFor builds a segmenter from an optional layout profile path.
func SegmenterFor(layoutPath string) (*extract.Segmenter, error) {
	if layoutPath == "" {
		return extract.NewSegmenter(), nil
	}
	layout, err := extract.LoadLayout(layoutPath)
	if err != nil {
		return nil, err
	}
	return extract.NewSegmenterWithLayout(layout)
}

// DeriveStatuteID creates a statute ID from a file path by lowercasing the
// basename without its extension.
func DeriveStatuteID(filePath string) string {
	baseName := filepath.Base(filePath)
	if idx := strings.Index(baseName, "."); idx > 0 {
		baseName = baseName[:idx]
	}
	return strings.ToLower(strings.ReplaceAll(baseName, " ", "-"))
}
