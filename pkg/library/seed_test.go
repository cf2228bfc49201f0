package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalog(t *testing.T) {
	entries, err := LoadCatalog(filepath.Join("..", "..", "testdata", "catalog.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].SourcePath != filepath.Join("..", "..", "testdata", "dpdp-excerpt.txt") {
		t.Errorf("source path not resolved: %s", entries[0].SourcePath)
	}
	if entries[1].ID != "it-act-missing" {
		t.Errorf("expected derived ID, got %q", entries[1].ID)
	}
}

func TestSeedFromCatalog(t *testing.T) {
	lib := newLibrary(t)

	entries, err := LoadCatalog(filepath.Join("..", "..", "testdata", "catalog.yaml"))
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	seedReport, err := SeedFromCatalog(lib, entries)
	if err != nil {
		t.Fatalf("SeedFromCatalog failed: %v", err)
	}
	if seedReport.Succeeded != 1 || seedReport.Failed != 1 {
		t.Errorf("expected 1 succeeded and 1 failed, got %+v", seedReport)
	}

	entry := lib.GetEntry("dpdp")
	if entry == nil || !entry.Annotated {
		t.Fatalf("expected annotated dpdp entry, got %+v", entry)
	}
	if entry.SourceInfo != "Gazette of India, Extraordinary, Part II, Section 1" {
		t.Errorf("unexpected source info %q", entry.SourceInfo)
	}

	again, err := SeedFromCatalog(lib, entries[:1])
	if err != nil {
		t.Fatalf("second SeedFromCatalog failed: %v", err)
	}
	if again.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", again.Skipped)
	}
}

func TestSeedFromDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"dpdp.txt":              "1. Short title.—This Act may be called the Act.\n2. Definitions.—In this Act,\n",
		"dpdp.annotations.yaml": "sections:\n  s2:\n    commentary:\n      - subtitle: Scope\n        text: Exhaustive.\n",
		"notes.md":              "not a statute",
		"it-act.html":           "<html><body><p>CHAPTER I</p><p>PRELIMINARY</p><p>1. Short title.—This Act.</p></body></html>",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	lib := newLibrary(t)
	seedReport, err := SeedFromDirectory(lib, dir)
	if err != nil {
		t.Fatalf("SeedFromDirectory failed: %v", err)
	}
	if seedReport.TotalAttempted != 2 || seedReport.Succeeded != 2 {
		for _, entryState := range seedReport.Entries {
			if entryState.Error != "" {
				t.Logf("  %s: %s", entryState.ID, entryState.Error)
			}
		}
		t.Fatalf("unexpected report: %+v", seedReport)
	}

	st, err := lib.LoadStatute("dpdp")
	if err != nil {
		t.Fatalf("LoadStatute failed: %v", err)
	}
	if len(st.Section("s2").Commentary) != 1 {
		t.Error("sibling annotations were not applied")
	}

	html, err := lib.LoadStatute("it-act")
	if err != nil {
		t.Fatalf("LoadStatute failed: %v", err)
	}
	if html.Chapters[0].Title != "CHAPTER I: PRELIMINARY" {
		t.Errorf("unexpected chapter title %q", html.Chapters[0].Title)
	}
}

func TestSeedFromDirectoryInvalidAnnotations(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "act.txt")
	annotationsPath := filepath.Join(dir, "act.annotations.yaml")
	if err := os.WriteFile(sourcePath, []byte("1. Short title.—This Act may be called the Act.\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(annotationsPath, []byte("sections:\n  s1:\n    commentary:\n      - subtitle: Scope\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lib := newLibrary(t)
	seedReport, err := SeedFromDirectory(lib, dir)
	if err != nil {
		t.Fatalf("SeedFromDirectory failed: %v", err)
	}
	if seedReport.Failed != 1 {
		t.Fatalf("expected 1 failed, got %+v", seedReport)
	}
	if entry := lib.GetEntry("act"); entry != nil {
		t.Fatalf("statute ingested despite invalid annotations: %+v", entry)
	}

	if err := os.WriteFile(annotationsPath, []byte("sections:\n  s1:\n    commentary:\n      - subtitle: Scope\n        text: Narrow.\n"), 0644); err != nil {
		t.Fatal(err)
	}
	seedReport, err = SeedFromDirectory(lib, dir)
	if err != nil {
		t.Fatalf("second SeedFromDirectory failed: %v", err)
	}
	if seedReport.Succeeded != 1 {
		t.Fatalf("expected 1 succeeded, got %+v", seedReport)
	}
	if entry := lib.GetEntry("act"); entry == nil || !entry.Annotated {
		t.Fatalf("expected annotated entry, got %+v", entry)
	}
}

func TestSeedAnnotatesReadyUnannotatedEntry(t *testing.T) {
	dir := t.TempDir()
	sourceText := []byte("1. Short title.—This Act may be called the Act.\n")
	if err := os.WriteFile(filepath.Join(dir, "act.txt"), sourceText, 0644); err != nil {
		t.Fatal(err)
	}

	lib := newLibrary(t)
	if _, err := lib.AddStatute("act", sourceText, AddOptions{}); err != nil {
		t.Fatalf("AddStatute failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "act.annotations.yaml"), []byte("sections:\n  s1:\n    commentary:\n      - subtitle: Scope\n        text: Narrow.\n"), 0644); err != nil {
		t.Fatal(err)
	}

	seedReport, err := SeedFromDirectory(lib, dir)
	if err != nil {
		t.Fatalf("SeedFromDirectory failed: %v", err)
	}
	if seedReport.Succeeded != 1 || seedReport.Skipped != 0 {
		t.Fatalf("expected annotations to be applied, got %+v", seedReport)
	}
	st, err := lib.LoadStatute("act")
	if err != nil {
		t.Fatalf("LoadStatute failed: %v", err)
	}
	if len(st.Section("s1").Commentary) != 1 {
		t.Error("annotations were not applied to existing entry")
	}
}

func TestSeedFromDirectoryMissing(t *testing.T) {
	if _, err := SeedFromDirectory(newLibrary(t), "/nonexistent/dir"); err == nil {
		t.Error("expected error for missing directory")
	}
}
