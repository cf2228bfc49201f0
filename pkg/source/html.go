package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements that start a new line of statute text.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, td, pre"

// HTMLReader extracts statute text from HTML pages such as the India Code
// or Gazette renderings. Every block element becomes one line.
type HTMLReader struct{}

func (h *HTMLReader) ReadText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, header, footer").Remove()

	var lines []string
	doc.Find(blockSelector).Each(func(_ int, block *goquery.Selection) {
		// Nested blocks are emitted by their innermost element.
		if block.Find(blockSelector).Length() > 0 {
			return
		}
		if block.Is("pre") {
			lines = append(lines, strings.Split(block.Text(), "\n")...)
			return
		}
		text := strings.Join(strings.Fields(block.Text()), " ")
		if text != "" {
			lines = append(lines, text)
		}
	})

	if len(lines) == 0 {
		return strings.TrimSpace(doc.Find("body").Text()), nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}
