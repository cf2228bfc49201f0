package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantType string
		wantErr  bool
	}{
		{"dpdp.txt", "*source.TextReader", false},
		{"DPDP.PDF", "*source.PDFReader", false},
		{"act.docx", "*source.DOCXReader", false},
		{"act.htm", "*source.HTMLReader", false},
		{"act.rtf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			reader, err := ForFile(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForFile failed: %v", err)
			}
			if got := fmt.Sprintf("%T", reader); got != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, got)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"plain text", []byte("CHAPTER I\nPRELIMINARY\n1. Short title.—This Act"), FormatText},
		{"html", []byte("<!DOCTYPE html><html><body><p>1. Short title</p></body></html>"), FormatHTML},
		{"pdf", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"), FormatPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.data)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextReader_NormalisesLineEndings(t *testing.T) {
	text, err := (&TextReader{}).ReadText(strings.NewReader("\ufeffCHAPTER I\r\nPRELIMINARY\r\n"))
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	if text != "CHAPTER I\nPRELIMINARY\n" {
		t.Errorf("Unexpected text %q", text)
	}
}

func TestHTMLReader_OneLinePerBlock(t *testing.T) {
	page := `<html><head><title>DPDP</title><style>p{}</style></head><body>
<nav><p>Home</p></nav>
<h2>CHAPTER I</h2>
<h3>PRELIMINARY</h3>
<div><p>1. Short title and commencement.—(1) This Act may be
   called the Digital Personal Data Protection Act, 2023.</p></div>
<ul><li>(a) first clause</li><li>(b) second clause</li></ul>
<script>var x = "2. Not a section";</script>
</body></html>`

	text, err := (&HTMLReader{}).ReadText(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	want := []string{
		"CHAPTER I",
		"PRELIMINARY",
		"1. Short title and commencement.—(1) This Act may be called the Digital Personal Data Protection Act, 2023.",
		"(a) first clause",
		"(b) second clause",
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestDOCXReader_OneLinePerParagraph(t *testing.T) {
	document := docx.New().WithDefaultTheme()
	document.AddParagraph().AddText("CHAPTER I")
	document.AddParagraph().AddText("PRELIMINARY")
	document.AddParagraph().AddText("1. Short title.—This Act may be called the Act.")

	var buf bytes.Buffer
	if _, err := document.WriteTo(&buf); err != nil {
		t.Fatalf("Writing docx failed: %v", err)
	}

	text, err := (&DOCXReader{}).ReadText(&buf)
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 3 || lines[2] != "1. Short title.—This Act may be called the Act." {
		t.Errorf("Unexpected lines %q", lines)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "dpdp.txt")
	if err := os.WriteFile(textPath, []byte("1. Title.—Body\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	text, err := ReadFile(textPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if text != "1. Title.—Body\n" {
		t.Errorf("Unexpected text %q", text)
	}

	sniffPath := filepath.Join(dir, "dpdp.source")
	if err := os.WriteFile(sniffPath, []byte("<html><body><p>1. Title.—Body</p></body></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	text, err = ReadFile(sniffPath)
	if err != nil {
		t.Fatalf("ReadFile with sniffing failed: %v", err)
	}
	if strings.TrimSpace(text) != "1. Title.—Body" {
		t.Errorf("Unexpected sniffed text %q", text)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestJoinPages(t *testing.T) {
	pages := map[int]string{1: "CHAPTER I\nPRELIMINARY", 3: "1. Short title.—This Act.\n"}
	text, err := joinPages(3, func(i int) (string, bool, error) {
		content, ok := pages[i]
		return content, ok, nil
	})
	if err != nil {
		t.Fatalf("joinPages failed: %v", err)
	}
	if text != "CHAPTER I\nPRELIMINARY\n1. Short title.—This Act.\n" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestJoinPages_UnreadablePage(t *testing.T) {
	_, err := joinPages(4, func(i int) (string, bool, error) {
		if i == 2 || i == 4 {
			return "", true, fmt.Errorf("malformed content stream")
		}
		return "text", true, nil
	})

	var pageErr *UnreadablePagesError
	if !errors.As(err, &pageErr) {
		t.Fatalf("Expected UnreadablePagesError, got %v", err)
	}
	if pageErr.Total != 4 || len(pageErr.Pages) != 2 || pageErr.Pages[0] != 2 || pageErr.Pages[1] != 4 {
		t.Errorf("unexpected error %+v", pageErr)
	}
}
