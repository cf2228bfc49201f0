// Package extract segments the plain text of a statute into an ordered tree
// of chapters and sections.
//
// Segmentation runs in three passes: the preamble before the enactment marker
// is cut away, pagination noise is filtered out line by line, and the
// remaining lines are folded into chapters and sections. Malformed input never
// fails; unrecognised lines become section content or are dropped when no
// section is open. The result is a heuristic extraction that needs human
// review.
package extract

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/coolbeans/treatise/pkg/statute"
)

// Segmenter turns raw statute text into chapters and sections according to
// a Layout. A Segmenter holds no parse state and is safe for concurrent use.
type Segmenter struct {
	layout         Layout
	chapterPattern *regexp.Regexp
	sectionPattern *regexp.Regexp
}

// NewSegmenter creates a Segmenter for the default layout.
func NewSegmenter() *Segmenter {
	segmenter, err := NewSegmenterWithLayout(DefaultLayout())
	if err != nil {
		panic(fmt.Sprintf("default layout is invalid: %v", err))
	}
	return segmenter
}

// NewSegmenterWithLayout creates a Segmenter for a custom layout.
func NewSegmenterWithLayout(layout Layout) (*Segmenter, error) {
	layout.fillDefaults()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{
		layout:         layout,
		chapterPattern: regexp.MustCompile(layout.ChapterPattern),
		sectionPattern: regexp.MustCompile(layout.SectionPattern),
	}, nil
}

// Layout returns the layout the segmenter was built with.
func (s *Segmenter) Layout() Layout {
	return s.layout
}

// Segment splits raw statute text into chapters in document order.
func (s *Segmenter) Segment(rawText string) []*statute.Chapter {
	lines := s.layout.FilterNoise(Truncate(rawText, s.layout.StartMarker))

	state := segmentState{chapterIndex: -1}
	for cursor := 0; cursor < len(lines); {
		state, cursor = s.step(state, lines, cursor)
	}
	return state.closeSection().chapters
}

// SegmentReader reads all of r and segments it. Only read errors are
// returned.
func (s *Segmenter) SegmentReader(r io.Reader) ([]*statute.Chapter, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return s.Segment(string(data)), nil
}

// segmentState is the fold accumulator: the chapters built so far, the
// index of the chapter receiving sections, and the open section with its
// pending content lines.
type segmentState struct {
	chapters     []*statute.Chapter
	chapterIndex int
	section      *statute.Section
	pending      []string
}

// step consumes the line at cursor (and the chapter name line following a
// chapter heading) and returns the new state and the next cursor position.
func (s *Segmenter) step(state segmentState, lines []string, cursor int) (segmentState, int) {
	line := strings.TrimSpace(lines[cursor])
	if line == "" {
		return state, cursor + 1
	}

	if m := s.chapterPattern.FindStringSubmatch(line); m != nil {
		title := s.layout.ChapterKeyword + " " + m[1]
		next := cursor + 1
		if nameIndex := nextNonBlank(lines, cursor+1); nameIndex != -1 {
			title += ": " + strings.TrimSpace(lines[nameIndex])
			next = nameIndex + 1
		}
		return state.openChapter(title), next
	}

	if m := s.sectionPattern.FindStringSubmatch(line); m != nil {
		state = state.closeSection()
		title, remainder := s.SplitTitle(m[2])
		if state.chapterIndex < 0 {
			state = state.openChapter(s.layout.DefaultChapterTitle)
		}
		return state.openSection(statute.NewSection(m[1], title), remainder), cursor + 1
	}

	if state.section != nil {
		state.pending = append(state.pending, line)
	}
	return state, cursor + 1
}

func (st segmentState) openChapter(title string) segmentState {
	st.chapters = append(st.chapters, &statute.Chapter{
		Title:    title,
		Sections: make([]*statute.Section, 0),
	})
	st.chapterIndex = len(st.chapters) - 1
	return st
}

func (st segmentState) openSection(section *statute.Section, firstLine string) segmentState {
	chapter := st.chapters[st.chapterIndex]
	chapter.Sections = append(chapter.Sections, section)
	st.section = section
	st.pending = nil
	if firstLine != "" {
		st.pending = append(st.pending, firstLine)
	}
	return st
}

// closeSection freezes the open section's content.
func (st segmentState) closeSection() segmentState {
	if st.section == nil {
		return st
	}
	st.section.Content = strings.Join(st.pending, statute.ParagraphSeparator)
	st.section = nil
	st.pending = nil
	return st
}

func nextNonBlank(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

// SplitTitle splits a section heading into its short title and the start of
// its body at the earliest title separator. Without a separator the whole
// heading is the title.
func (s *Segmenter) SplitTitle(heading string) (title, remainder string) {
	return splitTitle(heading, s.layout.TitleSeparators)
}

// SplitTitle splits a section heading using the default layout's separators.
func SplitTitle(heading string) (title, remainder string) {
	return splitTitle(heading, DefaultLayout().TitleSeparators)
}

func splitTitle(heading string, separators []string) (string, string) {
	splitIndex, separatorLength := -1, 0
	for _, separator := range separators {
		index := strings.Index(heading, separator)
		if index != -1 && (splitIndex == -1 || index < splitIndex) {
			splitIndex, separatorLength = index, len(separator)
		}
	}
	if splitIndex == -1 {
		return strings.TrimSpace(heading), ""
	}
	return strings.TrimSpace(heading[:splitIndex]), strings.TrimSpace(heading[splitIndex+separatorLength:])
}
