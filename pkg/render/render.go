// Package render builds the reading views of a treatise: the library index
// and the annotated reader for a single statute. Pages are assembled as
// golang.org/x/net/html node trees, so every piece of statute or annotation
// text is escaped by the HTML renderer.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer builds pages. Commentary text is Markdown and is converted with
// goldmark; raw HTML in commentary is not passed through.
type Renderer struct {
	markdown goldmark.Markdown
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.Typographer)),
	}
}

// markdownNodes converts Markdown source into HTML nodes.
func (r *Renderer) markdownNodes(source string) ([]*html.Node, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(&buf, context)
	if err != nil {
		return nil, fmt.Errorf("parsing converted markdown: %w", err)
	}
	return nodes, nil
}
