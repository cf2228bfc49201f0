package annotate

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/coolbeans/treatise/pkg/extract"
	"github.com/coolbeans/treatise/pkg/statute"
)

func excerptStatute() *statute.Statute {
	chapters := extract.NewSegmenter().Segment("CHAPTER I\nPRELIMINARY\n" +
		"1. Short title and commencement.—(1) This Act may be called the Act.\n" +
		"2. Definitions.—In this Act,\n" +
		"CHAPTER II\nOBLIGATIONS OF DATA FIDUCIARY\n" +
		"4. Grounds for processing personal data.—(1) A person may process")
	return &statute.Statute{ID: "dpdp", Title: "DPDP", Chapters: chapters}
}

func TestLoad_Testdata(t *testing.T) {
	set, err := Load(filepath.Join("..", "..", "testdata", "dpdp-annotations.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if set.Statute.ID != "dpdp" || set.Statute.Category != "Data Protection" {
		t.Errorf("Unexpected metadata %+v", set.Statute)
	}
	if got := strings.Join(set.SectionIDs(), ","); got != "s1,s2,s4" {
		t.Errorf("Expected s1,s2,s4 got %s", got)
	}
	if len(set.Sections["s2"].CaseLaws) != 1 {
		t.Errorf("Expected 1 case law on s2, got %d", len(set.Sections["s2"].CaseLaws))
	}
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"statute": {"title": "IT Act"}, "sections": {"s43": {"caseLaws": [{"title": "Shreya Singhal v. Union of India", "citation": "(2015) 5 SCC 1"}]}}}`)

	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if set.Sections["s43"].CaseLaws[0].Citation != "(2015) 5 SCC 1" {
		t.Errorf("Unexpected citation %q", set.Sections["s43"].CaseLaws[0].Citation)
	}
}

func TestParse_Empty(t *testing.T) {
	set, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed on empty input: %v", err)
	}
	if set.Sections == nil || len(set.Sections) != 0 {
		t.Errorf("Expected empty sections map, got %v", set.Sections)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad section key", "sections:\n  section-1:\n    commentary: []\n", "section_id"},
		{"missing commentary text", "sections:\n  s1:\n    commentary:\n      - subtitle: Scope\n", "Text"},
		{"missing citation", "sections:\n  s1:\n    caseLaws:\n      - title: A v. B\n", "Citation"},
		{"technical detail without body", "sections:\n  s1:\n    technicalDetails:\n      - topic: Hashing\n", "required_without"},
		{"unknown field", "sections:\n  s1:\n    footnotes: []\n", "footnotes"},
		{"bad statute id", "statute:\n  id: Not A Slug\n", "slug"},
		{"null section", "sections:\n  s1:\n", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApply_AttachesAnnotations(t *testing.T) {
	set, err := Load(filepath.Join("..", "..", "testdata", "dpdp-annotations.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	original := excerptStatute()
	result := Apply(original, set)

	if result.Applied != 3 {
		t.Errorf("Expected 3 applied sections, got %d", result.Applied)
	}
	if len(result.UnmatchedSections) != 0 {
		t.Errorf("Expected no unmatched sections, got %v", result.UnmatchedSections)
	}

	annotated := result.Statute
	if annotated.Title != "The Digital Personal Data Protection Act, 2023" {
		t.Errorf("Title not applied, got %q", annotated.Title)
	}
	if len(annotated.Section("s1").Commentary) != 1 {
		t.Errorf("Expected commentary on s1")
	}
	if len(annotated.Section("s4").TechnicalDetails) != 1 {
		t.Errorf("Expected technical detail on s4")
	}

	if original.Title != "DPDP" || len(original.Section("s1").Commentary) != 0 {
		t.Error("Apply modified the input statute")
	}
}

func TestApply_ReportsUnmatchedSections(t *testing.T) {
	set, err := Parse([]byte("sections:\n  s99:\n    commentary:\n      - subtitle: Lost\n        text: Nowhere\n  s2:\n    commentary:\n      - subtitle: Found\n        text: Here\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	result := Apply(excerptStatute(), set)
	if result.Applied != 1 {
		t.Errorf("Expected 1 applied section, got %d", result.Applied)
	}
	if len(result.UnmatchedSections) != 1 || result.UnmatchedSections[0] != "s99" {
		t.Errorf("Expected s99 unmatched, got %v", result.UnmatchedSections)
	}
}

func TestApply_NilSet(t *testing.T) {
	result := Apply(excerptStatute(), nil)
	if result.Statute == nil || result.Applied != 0 {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestFromStatute_RoundTrip(t *testing.T) {
	set, err := Load(filepath.Join("..", "..", "testdata", "dpdp-annotations.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	annotated := Apply(excerptStatute(), set).Statute

	collected := FromStatute(annotated)
	data, err := collected.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	reparsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Reparse failed: %v\n%s", err, data)
	}
	if got := strings.Join(reparsed.SectionIDs(), ","); got != "s1,s2,s4" {
		t.Errorf("Expected s1,s2,s4 after round trip, got %s", got)
	}

	reapplied := Apply(excerptStatute(), reparsed).Statute
	if reapplied.Section("s2").CaseLaws[0].Citation != "(2017) 10 SCC 1" {
		t.Errorf("Case law lost in round trip")
	}
}

func TestSectionIDs_NumericOrder(t *testing.T) {
	set := &Set{Sections: map[string]*SectionNotes{"s10": {}, "s2": {}, "s1": {}}}
	if got := strings.Join(set.SectionIDs(), ","); got != "s1,s2,s10" {
		t.Errorf("Expected numeric order, got %s", got)
	}
}
