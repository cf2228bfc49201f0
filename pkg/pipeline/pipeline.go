// Package pipeline runs the one-shot build of a statute file: read the
// source, segment it, attach annotations and write the result.
package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/coolbeans/treatise/pkg/annotate"
	"github.com/coolbeans/treatise/pkg/export"
	"github.com/coolbeans/treatise/pkg/library"
	"github.com/coolbeans/treatise/pkg/render"
	"github.com/coolbeans/treatise/pkg/source"
	"github.com/coolbeans/treatise/pkg/statute"
)

// FormatHTML renders the reading view. The other formats come from export.
const FormatHTML = "html"

// Job describes one statute build.
type Job struct {
	SourcePath      string
	AnnotationsPath string
	LayoutPath      string
	// StatuteID defaults to an ID derived from the source file name.
	StatuteID string
	Title     string
}

// Build reads, segments and annotates the job's statute.
func (j Job) Build() (*annotate.Result, error) {
	segmenter, err := library.SegmenterFor(j.LayoutPath)
	if err != nil {
		return nil, err
	}

	rawText, err := source.ReadFile(j.SourcePath)
	if err != nil {
		return nil, err
	}

	statuteID := j.StatuteID
	if statuteID == "" {
		statuteID = library.DeriveStatuteID(j.SourcePath)
	}
	st, err := library.SegmentText(rawText, statuteID, j.Title, segmenter)
	if err != nil {
		return nil, fmt.Errorf("segmenting %s: %w", j.SourcePath, err)
	}

	var set *annotate.Set
	if j.AnnotationsPath != "" {
		if set, err = annotate.Load(j.AnnotationsPath); err != nil {
			return nil, err
		}
	}
	return annotate.Apply(st, set), nil
}

// BuildTo builds the statute and writes it to outputPath. The file is
// replaced atomically so readers never see a partial write.
func (j Job) BuildTo(outputPath, format string) (*annotate.Result, error) {
	result, err := j.Build()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Write(&buf, result.Statute, format); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return nil, fmt.Errorf("replacing %s: %w", outputPath, err)
	}
	return result, nil
}

// Write renders st to w as html, json or xlsx.
func Write(w io.Writer, st *statute.Statute, format string) error {
	if strings.EqualFold(format, FormatHTML) {
		page, err := render.New().ReaderPage(st)
		if err != nil {
			return err
		}
		return render.Write(w, page)
	}

	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, st, exportFormat)
}

// FormatForPath guesses an output format from a file extension, defaulting
// to json.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".xlsx":
		return string(export.FormatXLSX)
	default:
		return string(export.FormatJSON)
	}
}
