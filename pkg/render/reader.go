package render

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/coolbeans/treatise/pkg/statute"
)

// ReaderPage builds the annotated reading view of a statute: each section's
// provision text beside a column of commentary, case law and technical
// side notes.
func (r *Renderer) ReaderPage(st *statute.Statute) (*html.Node, error) {
	grid := div("treatise-grid")

	titleBlock := div("chapter-header title-block")
	if st.Category != "" {
		titleBlock.AppendChild(tagged(atom.Div, "statute-meta", st.Category))
	}
	titleBlock.AppendChild(tagged(atom.H1, "chapter-title", st.Title))
	if st.Description != "" {
		titleBlock.AppendChild(tagged(atom.P, "statute-description", st.Description))
	}
	grid.AppendChild(titleBlock)
	grid.AppendChild(tableOfContents(st))

	for chapterIndex, chapter := range st.Chapters {
		header := tagged(atom.H2, "chapter-header", chapter.Title)
		header.Attr = append(header.Attr, attr("id", fmt.Sprintf("chapter-%d", chapterIndex+1)))
		grid.AppendChild(header)

		for _, section := range chapter.Sections {
			block, err := r.sectionBlock(section)
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", section.Number, err)
			}
			grid.AppendChild(block)
		}
	}

	return document(st.Title, grid), nil
}

func tableOfContents(st *statute.Statute) *html.Node {
	list := elem(atom.Ol, nil)
	for _, section := range st.Sections() {
		list.AppendChild(elem(atom.Li, nil,
			link("#"+section.ID, "", textNode(fmt.Sprintf("%s. %s", section.Number, section.Title))),
		))
	}
	return elem(atom.Nav, classAttr("toc"), list)
}

func (r *Renderer) sectionBlock(section *statute.Section) (*html.Node, error) {
	provision := div("provision-text",
		tagged(atom.Span, "provision-number", "§ "+section.Number),
		tagged(atom.Span, "provision-title", section.Title),
	)
	for _, paragraph := range section.Paragraphs() {
		provision.AppendChild(elem(atom.P, nil, textNode(paragraph)))
	}

	notes := div("sidenote-column")
	for _, commentary := range section.Commentary {
		note, err := r.commentaryNote(commentary)
		if err != nil {
			return nil, err
		}
		notes.AppendChild(note)
	}
	for _, caseLaw := range section.CaseLaws {
		notes.AppendChild(caseLawNote(caseLaw))
	}
	for _, detail := range section.TechnicalDetails {
		notes.AppendChild(technicalNote(detail))
	}

	block := div("section-block", provision, notes)
	block.Attr = append(block.Attr, attr("id", section.ID))
	return block, nil
}

func (r *Renderer) commentaryNote(commentary *statute.Commentary) (*html.Node, error) {
	body, err := r.markdownNodes(commentary.Text)
	if err != nil {
		return nil, err
	}
	note := div("sidenote", tagged(atom.H4, "", commentary.Subtitle))
	appendAll(note, body)
	return note, nil
}

func caseLawNote(caseLaw *statute.CaseLaw) *html.Node {
	note := div("sidenote case-law",
		tagged(atom.Div, "meta-tag", "CASE LAW"),
		tagged(atom.H4, "", caseLaw.Title),
		tagged(atom.Div, "citation", caseLaw.Citation),
	)
	if caseLaw.Summary != "" {
		note.AppendChild(tagged(atom.P, "", caseLaw.Summary))
	}
	return note
}

func technicalNote(detail *statute.TechnicalDetail) *html.Node {
	return div("sidenote tech-deep-dive",
		tagged(atom.Div, "meta-tag", "TECH DEEP DIVE"),
		tagged(atom.H4, "", detail.Topic),
		tagged(atom.P, "", detail.Summary()),
	)
}
