// Package source reads statute sources of various formats into the raw,
// line-oriented text consumed by the segmenter.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Reader extracts raw text from a statute source.
type Reader interface {
	ReadText(r io.Reader) (string, error)
}

// Format names a supported source format.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// SupportedExtensions lists the file extensions that can be read.
var SupportedExtensions = map[string]Format{
	".txt":  FormatText,
	".text": FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// ForFormat returns the reader for a format.
func ForFormat(format Format) (Reader, error) {
	switch format {
	case FormatText:
		return &TextReader{}, nil
	case FormatPDF:
		return &PDFReader{}, nil
	case FormatDOCX:
		return &DOCXReader{}, nil
	case FormatHTML:
		return &HTMLReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported source format: %q", format)
	}
}

// ForFile returns the reader for a filename based on its extension.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := SupportedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
	return ForFormat(format)
}

// Detect sniffs the format of data from its content.
func Detect(data []byte) (Format, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/pdf"):
		return FormatPDF, nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return FormatDOCX, nil
	case mtype.Is("text/html"):
		return FormatHTML, nil
	case mtype.Is("text/plain"):
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported source content type: %s", mtype.String())
}

// ReadFile reads a statute source from disk. The extension selects the
// reader; unknown extensions fall back to content sniffing.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading source %s: %w", path, err)
	}

	reader, err := ForFile(path)
	if err != nil {
		format, detectErr := Detect(data)
		if detectErr != nil {
			return "", fmt.Errorf("source %s: %w", path, detectErr)
		}
		reader, err = ForFormat(format)
		if err != nil {
			return "", err
		}
	}

	text, err := reader.ReadText(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return text, nil
}

// TextReader reads plain text, normalising line endings.
type TextReader struct{}

func (t *TextReader) ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimPrefix(text, "\ufeff"), nil
}
