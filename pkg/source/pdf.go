package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFReader extracts text from PDF statutes, one output line per text row
// so that headings and page numbers stay on their own lines.
type PDFReader struct{}

func (p *PDFReader) ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	return joinPages(reader.NumPage(), func(i int) (string, bool, error) {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", false, nil
		}
		text, err := pageText(page)
		return text, true, err
	})
}

// UnreadablePagesError reports PDF pages whose text could not be extracted.
type UnreadablePagesError struct {
	Pages []int
	Total int
}

func (e *UnreadablePagesError) Error() string {
	return fmt.Sprintf("pdf: %d of %d pages unreadable: %v", len(e.Pages), e.Total, e.Pages)
}

// joinPages concatenates the text of pages 1..numPages, one line per row.
// Any page that fails extraction fails the whole document.
func joinPages(numPages int, extract func(page int) (text string, ok bool, err error)) (string, error) {
	var buf strings.Builder
	var unreadable []int
	for i := 1; i <= numPages; i++ {
		text, ok, err := extract(i)
		if err != nil {
			unreadable = append(unreadable, i)
			continue
		}
		if !ok {
			continue
		}
		buf.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			buf.WriteByte('\n')
		}
	}
	if len(unreadable) > 0 {
		return "", &UnreadablePagesError{Pages: unreadable, Total: numPages}
	}
	return buf.String(), nil
}

func pageText(page pdflib.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return page.GetPlainText(nil)
	}

	var buf strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			buf.WriteString(word.S)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}
