package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLayout_IsValid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("Default layout invalid: %v", err)
	}
}

func TestParseLayout_OverridesAndDefaults(t *testing.T) {
	data := []byte(`
name: it-act-2000
start_marker: "BE it enacted by Parliament in the Fifty-first Year"
header_lines:
  - "THE INFORMATION TECHNOLOGY ACT, 2000"
footer_prefixes:
  - "ACT NO. 21 OF 2000"
`)

	layout, err := ParseLayout(data)
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}

	if layout.Name != "it-act-2000" {
		t.Errorf("Expected name it-act-2000, got %q", layout.Name)
	}
	if len(layout.HeaderLines) != 1 || layout.HeaderLines[0] != "THE INFORMATION TECHNOLOGY ACT, 2000" {
		t.Errorf("Header lines not replaced: %q", layout.HeaderLines)
	}
	if layout.ChapterPattern != defaultChapterPattern {
		t.Errorf("Chapter pattern should default, got %q", layout.ChapterPattern)
	}
	if layout.DefaultChapterTitle != "Preliminary" {
		t.Errorf("Default chapter title should default, got %q", layout.DefaultChapterTitle)
	}
	if len(layout.TitleSeparators) != 2 {
		t.Errorf("Title separators should default, got %q", layout.TitleSeparators)
	}
}

func TestParseLayout_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad yaml", "name: [unterminated", "parsing layout"},
		{"no separators", "title_separators: []", "title separator"},
		{"empty separator", "title_separators: ['']", "empty title separator"},
		{"bad chapter regex", "chapter_pattern: '('", "invalid chapter pattern"},
		{"chapter without group", "chapter_pattern: '^CHAPTER'", "capture the numeral"},
		{"section with one group", "section_pattern: '^(\\d+)\\.'", "number and heading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.data))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte("name: custom\ndefault_chapter_title: General\n"), 0644); err != nil {
		t.Fatal(err)
	}

	layout, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout failed: %v", err)
	}

	segmenter, err := NewSegmenterWithLayout(layout)
	if err != nil {
		t.Fatalf("NewSegmenterWithLayout failed: %v", err)
	}
	chapters := segmenter.Segment("1. Title.—Body")
	if chapters[0].Title != "General" {
		t.Errorf("Expected synthesized chapter %q, got %q", "General", chapters[0].Title)
	}

	if _, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing layout file")
	}
}

func TestNewSegmenterWithLayout_CustomSeparator(t *testing.T) {
	layout := DefaultLayout()
	layout.TitleSeparators = []string{". -"}

	segmenter, err := NewSegmenterWithLayout(layout)
	if err != nil {
		t.Fatalf("NewSegmenterWithLayout failed: %v", err)
	}

	section := segmenter.Segment("CHAPTER I\nPRELIMINARY\n1. Short title. - This Act")[0].Sections[0]
	if section.Title != "Short title" || section.Content != "This Act" {
		t.Errorf("Custom separator not honoured: title %q content %q", section.Title, section.Content)
	}
}

func TestChapterPattern_NumeralBoundary(t *testing.T) {
	input := "CHAPTER I\nPRELIMINARY\n1. Scope.—Body.\nCHAPTER IIA\nTRANSITIONAL\n2. Savings.—Body."

	chapters := NewSegmenter().Segment(input)
	if len(chapters) != 1 {
		t.Fatalf("Expected CHAPTER IIA to stay body text, got %d chapters", len(chapters))
	}
	if !strings.Contains(chapters[0].Sections[0].Content, "CHAPTER IIA") {
		t.Errorf("Expected marker in section content, got %q", chapters[0].Sections[0].Content)
	}

	layout, err := ParseLayout([]byte(`chapter_pattern: '^CHAPTER\s+([IVX]+)'`))
	if err != nil {
		t.Fatalf("ParseLayout failed: %v", err)
	}
	segmenter, err := NewSegmenterWithLayout(layout)
	if err != nil {
		t.Fatalf("NewSegmenterWithLayout failed: %v", err)
	}
	if got := len(segmenter.Segment(input)); got != 2 {
		t.Errorf("Expected unbounded pattern to open a second chapter, got %d", got)
	}
}
