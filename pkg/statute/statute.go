// Package statute defines the Chapter/Section tree produced by segmenting a
// statute, plus the editorial annotations attached to sections afterwards.
package statute

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/words"
)

// ParagraphSeparator joins the paragraphs of a section's content.
const ParagraphSeparator = "<br/><br/>"

// SectionIDPrefix is prepended to a section number to form its ID.
const SectionIDPrefix = "s"

// Statute is a complete treated statute: metadata plus its chapter tree.
type Statute struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Chapters    []*Chapter `json:"chapters"`
}

// Chapter is a top-level grouping of sections under a Roman-numeral heading.
type Chapter struct {
	Title    string     `json:"title"`
	Sections []*Section `json:"sections"`
}

// Section is a numbered provision with a short title and body content.
type Section struct {
	ID               string             `json:"id"`
	Number           string             `json:"number"`
	Title            string             `json:"title"`
	Content          string             `json:"content"`
	Commentary       []*Commentary      `json:"commentary"`
	CaseLaws         []*CaseLaw         `json:"caseLaws,omitempty"`
	TechnicalDetails []*TechnicalDetail `json:"technicalDetails,omitempty"`
}

// Commentary is an editorial note on a section. Text is Markdown.
type Commentary struct {
	Subtitle string `json:"subtitle" yaml:"subtitle" validate:"required"`
	Text     string `json:"text" yaml:"text" validate:"required"`
}

// CaseLaw summarises a judgment interpreting a section.
type CaseLaw struct {
	Title    string `json:"title" yaml:"title" validate:"required"`
	Citation string `json:"citation" yaml:"citation" validate:"required"`
	Summary  string `json:"summary,omitempty" yaml:"summary"`
}

// TechnicalDetail explains the technology a section regulates.
type TechnicalDetail struct {
	Topic       string `json:"topic" yaml:"topic" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description"`
	Mechanism   string `json:"mechanism,omitempty" yaml:"mechanism" validate:"required_without=Description"`
}

// Summary returns the description, falling back to the mechanism.
func (t *TechnicalDetail) Summary() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Mechanism
}

// NewSection creates a section with an ID derived from its number.
func NewSection(number, title string) *Section {
	return &Section{
		ID:         SectionIDPrefix + number,
		Number:     number,
		Title:      title,
		Commentary: make([]*Commentary, 0),
	}
}

// Paragraphs splits the section content on the paragraph separator.
func (s *Section) Paragraphs() []string {
	if s.Content == "" {
		return nil
	}
	return strings.Split(s.Content, ParagraphSeparator)
}

// Annotated reports whether any editorial material is attached.
func (s *Section) Annotated() bool {
	return len(s.Commentary) > 0 || len(s.CaseLaws) > 0 || len(s.TechnicalDetails) > 0
}

// WordCount counts the words in the section content.
func (s *Section) WordCount() int {
	return CountWords(strings.ReplaceAll(s.Content, ParagraphSeparator, " "))
}

// Sections returns every section in document order.
func (st *Statute) Sections() []*Section {
	var sections []*Section
	for _, chapter := range st.Chapters {
		sections = append(sections, chapter.Sections...)
	}
	return sections
}

// Section returns the section with the given ID, or nil if not found.
func (st *Statute) Section(id string) *Section {
	for _, chapter := range st.Chapters {
		for _, section := range chapter.Sections {
			if section.ID == id {
				return section
			}
		}
	}
	return nil
}

// ChapterOf returns the chapter holding the section with the given ID.
func (st *Statute) ChapterOf(id string) *Chapter {
	for _, chapter := range st.Chapters {
		for _, section := range chapter.Sections {
			if section.ID == id {
				return chapter
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the statute tree. Annotation values are shared
// since they are never modified once attached.
func (st *Statute) Clone() *Statute {
	clone := *st
	clone.Chapters = make([]*Chapter, len(st.Chapters))
	for i, chapter := range st.Chapters {
		chapterCopy := &Chapter{
			Title:    chapter.Title,
			Sections: make([]*Section, len(chapter.Sections)),
		}
		for j, section := range chapter.Sections {
			sectionCopy := *section
			sectionCopy.Commentary = append(make([]*Commentary, 0, len(section.Commentary)), section.Commentary...)
			sectionCopy.CaseLaws = append([]*CaseLaw(nil), section.CaseLaws...)
			sectionCopy.TechnicalDetails = append([]*TechnicalDetail(nil), section.TechnicalDetails...)
			chapterCopy.Sections[j] = &sectionCopy
		}
		clone.Chapters[i] = chapterCopy
	}
	return &clone
}

// Statistics summarises a statute tree.
type Statistics struct {
	Chapters          int `json:"chapters"`
	Sections          int `json:"sections"`
	AnnotatedSections int `json:"annotated_sections"`
	Commentary        int `json:"commentary"`
	CaseLaws          int `json:"case_laws"`
	TechnicalDetails  int `json:"technical_details"`
	Words             int `json:"words"`
}

// Statistics returns counts over the statute tree.
func (st *Statute) Statistics() Statistics {
	stats := Statistics{Chapters: len(st.Chapters)}
	for _, section := range st.Sections() {
		stats.Sections++
		stats.Words += section.WordCount()
		stats.Commentary += len(section.Commentary)
		stats.CaseLaws += len(section.CaseLaws)
		stats.TechnicalDetails += len(section.TechnicalDetails)
		if section.Annotated() {
			stats.AnnotatedSections++
		}
	}
	return stats
}

// CountWords counts Unicode word segments that contain a letter or digit.
func CountWords(text string) int {
	count := 0
	segmenter := words.NewSegmenter([]byte(text))
	for segmenter.Next() {
		if isWordlike(segmenter.Bytes()) {
			count++
		}
	}
	return count
}

func isWordlike(token []byte) bool {
	for _, r := range string(token) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
