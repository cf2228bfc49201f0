package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// stylesheet is the editorial layout: provision text on the left, side
// notes in a margin column on the right.
const stylesheet = `
:root { --font-body: Georgia, serif; --font-ui: system-ui, sans-serif; --text-meta: #6b6b6b; --rule: #d9d4c7; }
body { margin: 0; font-family: var(--font-body); color: #1d1d1d; background: #fbf9f4; }
.top-nav { font-family: var(--font-ui); padding: 12px 32px; border-bottom: 1px solid var(--rule); }
.top-nav a { color: inherit; text-decoration: none; margin-right: 16px; }
.library-container, .treatise-grid { max-width: 1100px; margin: 0 auto; padding: 0 32px 80px; }
.lib-header { font-weight: normal; margin-top: 60px; }
.statute-entry { display: block; color: inherit; text-decoration: none; padding: 20px 0; border-bottom: 1px solid var(--rule); }
.statute-meta, .meta-tag { font-family: var(--font-ui); text-transform: uppercase; letter-spacing: 0.1em; font-size: 0.75em; color: var(--text-meta); }
.chapter-header { margin-top: 48px; padding-bottom: 8px; border-bottom: 2px solid #1d1d1d; font-family: var(--font-ui); letter-spacing: 0.05em; }
.chapter-title { font-weight: normal; }
.section-block { display: grid; grid-template-columns: 2fr 1fr; gap: 40px; padding: 24px 0; border-bottom: 1px solid var(--rule); }
.provision-number { font-weight: bold; margin-right: 8px; }
.provision-title { font-style: italic; }
.sidenote { font-size: 0.9em; margin-bottom: 20px; padding-left: 12px; border-left: 2px solid var(--rule); }
.sidenote h4 { margin: 4px 0; }
.case-law { border-left-color: #8a6d3b; }
.tech-deep-dive { border-left-color: #3b6d8a; }
.citation { font-family: var(--font-ui); font-size: 0.85em; color: var(--text-meta); }
.toc { font-family: var(--font-ui); font-size: 0.85em; columns: 2; }
.toc a { color: inherit; }
`

// document wraps body content in a complete HTML page.
func document(title string, content ...*html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := elem(atom.Head, nil,
		elem(atom.Meta, []html.Attribute{attr("charset", "utf-8")}),
		elem(atom.Meta, []html.Attribute{attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")}),
		elem(atom.Title, nil, textNode(title)),
		elem(atom.Style, nil, textNode(stylesheet)),
	)

	nav := elem(atom.Nav, classAttr("top-nav"),
		link("/", "nav-btn", textNode("Library")),
	)

	mainContent := elem(atom.Main, []html.Attribute{attr("id", "main-content")}, content...)

	doc.AppendChild(elem(atom.Html, []html.Attribute{attr("lang", "en")},
		head,
		elem(atom.Body, nil, nav, mainContent),
	))
	return doc
}

// Write renders a page to w.
func Write(w io.Writer, page *html.Node) error {
	if err := html.Render(w, page); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
