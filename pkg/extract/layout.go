package extract

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Layout describes the print layout of a statute source: where the enacted
// text starts, which lines are pagination noise, and how chapter and section
// headings look.
type Layout struct {
	// Name identifies the layout profile.
	Name string `yaml:"name" json:"name"`

	// StartMarker is the first text of the enacted body. Everything before
	// it (arrangement of sections, table of contents) is discarded.
	StartMarker string `yaml:"start_marker" json:"start_marker"`

	// HeaderLines are repeated running headers or footers, matched exactly
	// against the trimmed line.
	HeaderLines []string `yaml:"header_lines" json:"header_lines"`

	// FooterPrefixes are citation or gazette-date lines, matched by prefix.
	FooterPrefixes []string `yaml:"footer_prefixes" json:"footer_prefixes"`

	// ChapterPattern must capture the chapter numeral in group 1.
	ChapterPattern string `yaml:"chapter_pattern" json:"chapter_pattern"`

	// SectionPattern must capture the section number in group 1 and the
	// heading text in group 2.
	SectionPattern string `yaml:"section_pattern" json:"section_pattern"`

	// ChapterKeyword prefixes the numeral in composed chapter titles.
	ChapterKeyword string `yaml:"chapter_keyword" json:"chapter_keyword"`

	// TitleSeparators split a section heading into title and body, tried in
	// order. The first separator found anywhere in the heading wins.
	TitleSeparators []string `yaml:"title_separators" json:"title_separators"`

	// DefaultChapterTitle names the chapter synthesised for sections that
	// appear before any chapter heading.
	DefaultChapterTitle string `yaml:"default_chapter_title" json:"default_chapter_title"`
}

const (
	defaultChapterPattern = `^CHAPTER\s+([IVXLCDM]+)\b`
	defaultSectionPattern = `^(\d+)\.\s+(.+)$`
)

// DefaultLayout returns the layout of the Digital Personal Data Protection
// Act, 2023 as published in the Gazette of India.
func DefaultLayout() Layout {
	return Layout{
		Name:        "dpdp-2023",
		StartMarker: "BE it enacted by Parliament",
		HeaderLines: []string{
			"THE DIGITAL PERSONAL DATA PROTECTION ACT, 2023",
		},
		FooterPrefixes: []string{
			"ACT NO. 22 OF 2023",
			"[11th August, 2023.]",
		},
		ChapterPattern:      defaultChapterPattern,
		SectionPattern:      defaultSectionPattern,
		ChapterKeyword:      "CHAPTER",
		TitleSeparators:     []string{".—", ".–"},
		DefaultChapterTitle: "Preliminary",
	}
}

// LoadLayout reads a YAML layout profile from disk.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout %s: %w", path, err)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes a YAML layout profile. Fields left empty keep the
// values of DefaultLayout, except the noise lists, which are replaced
// whenever they are present in the document.
func ParseLayout(data []byte) (Layout, error) {
	layout := DefaultLayout()
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parsing layout: %w", err)
	}
	layout.fillDefaults()
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

func (l *Layout) fillDefaults() {
	defaults := DefaultLayout()
	if l.ChapterPattern == "" {
		l.ChapterPattern = defaults.ChapterPattern
	}
	if l.SectionPattern == "" {
		l.SectionPattern = defaults.SectionPattern
	}
	if l.ChapterKeyword == "" {
		l.ChapterKeyword = defaults.ChapterKeyword
	}
	if l.DefaultChapterTitle == "" {
		l.DefaultChapterTitle = defaults.DefaultChapterTitle
	}
}

// Validate checks that the layout can drive a Segmenter.
func (l Layout) Validate() error {
	if len(l.TitleSeparators) == 0 {
		return fmt.Errorf("layout %q: at least one title separator is required", l.Name)
	}
	for _, separator := range l.TitleSeparators {
		if separator == "" {
			return fmt.Errorf("layout %q: empty title separator", l.Name)
		}
	}

	chapterPattern, err := regexp.Compile(l.ChapterPattern)
	if err != nil {
		return fmt.Errorf("layout %q: invalid chapter pattern: %w", l.Name, err)
	}
	if chapterPattern.NumSubexp() < 1 {
		return fmt.Errorf("layout %q: chapter pattern must capture the numeral", l.Name)
	}

	sectionPattern, err := regexp.Compile(l.SectionPattern)
	if err != nil {
		return fmt.Errorf("layout %q: invalid section pattern: %w", l.Name, err)
	}
	if sectionPattern.NumSubexp() < 2 {
		return fmt.Errorf("layout %q: section pattern must capture number and heading", l.Name)
	}
	return nil
}
