// Package annotate attaches editorial material (commentary, case law and
// technical notes) to a segmented statute. Annotations are authored
// separately from the statute text, in YAML or JSON files keyed by section ID.
package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/treatise/pkg/statute"
)

// Set is a complete annotation file for one statute.
type Set struct {
	Statute  Metadata                 `yaml:"statute" json:"statute"`
	Sections map[string]*SectionNotes `yaml:"sections" json:"sections" validate:"dive,keys,section_id,endkeys,required"`
}

// Metadata describes the statute in the library and reading views.
type Metadata struct {
	ID          string `yaml:"id,omitempty" json:"id,omitempty" validate:"omitempty,slug"`
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
}

// SectionNotes holds the annotations for a single section.
type SectionNotes struct {
	Commentary       []*statute.Commentary      `yaml:"commentary,omitempty" json:"commentary,omitempty" validate:"dive,required"`
	CaseLaws         []*statute.CaseLaw         `yaml:"caseLaws,omitempty" json:"caseLaws,omitempty" validate:"dive,required"`
	TechnicalDetails []*statute.TechnicalDetail `yaml:"technicalDetails,omitempty" json:"technicalDetails,omitempty" validate:"dive,required"`
}

var (
	sectionIDPattern = regexp.MustCompile(`^` + statute.SectionIDPrefix + `\d+$`)
	slugPattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("section_id", func(fl validator.FieldLevel) bool {
		return sectionIDPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Load reads an annotation file from disk.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading annotations %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("annotations %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes and validates an annotation document. JSON documents are
// accepted since they are valid YAML. Unknown keys are rejected.
func Parse(data []byte) (*Set, error) {
	set := &Set{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(set); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing annotations: %w", err)
	}
	if set.Sections == nil {
		set.Sections = make(map[string]*SectionNotes)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Validate checks that every annotation has its required fields and every
// section key looks like a section ID.
func (s *Set) Validate() error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("%s fails %q", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("invalid annotations: %s", strings.Join(messages, "; "))
		}
		return fmt.Errorf("invalid annotations: %w", err)
	}
	return nil
}

// Marshal encodes the set as YAML.
func (s *Set) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding annotations: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoding annotations: %w", err)
	}
	return buf.Bytes(), nil
}

// SectionIDs returns the annotated section IDs in numeric order.
func (s *Set) SectionIDs() []string {
	ids := make([]string, 0, len(s.Sections))
	for id := range s.Sections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return sectionOrder(ids[i]) < sectionOrder(ids[j])
	})
	return ids
}

func sectionOrder(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, statute.SectionIDPrefix))
	if err != nil {
		return -1
	}
	return n
}

// Result reports how an annotation set was applied.
type Result struct {
	Statute *statute.Statute
	// Applied counts the sections that received annotations.
	Applied int
	// UnmatchedSections lists annotated section IDs missing from the statute.
	UnmatchedSections []string
}

// Apply returns a copy of st with the set's metadata and annotations
// attached. st itself is not modified. Annotations for sections that do not
// exist in the statute are reported, not treated as errors, since the
// segmenter output is heuristic.
func Apply(st *statute.Statute, set *Set) *Result {
	annotated := st.Clone()
	result := &Result{Statute: annotated}
	if set == nil {
		return result
	}

	if set.Statute.Title != "" {
		annotated.Title = set.Statute.Title
	}
	if set.Statute.Description != "" {
		annotated.Description = set.Statute.Description
	}
	if set.Statute.Category != "" {
		annotated.Category = set.Statute.Category
	}

	for _, id := range set.SectionIDs() {
		notes := set.Sections[id]
		section := annotated.Section(id)
		if section == nil {
			result.UnmatchedSections = append(result.UnmatchedSections, id)
			continue
		}
		section.Commentary = append(section.Commentary, notes.Commentary...)
		section.CaseLaws = append(section.CaseLaws, notes.CaseLaws...)
		section.TechnicalDetails = append(section.TechnicalDetails, notes.TechnicalDetails...)
		result.Applied++
	}

	return result
}

// FromStatute collects the annotations already attached to st into a Set.
func FromStatute(st *statute.Statute) *Set {
	set := &Set{
		Statute: Metadata{
			ID:          st.ID,
			Title:       st.Title,
			Description: st.Description,
			Category:    st.Category,
		},
		Sections: make(map[string]*SectionNotes),
	}
	for _, section := range st.Sections() {
		if !section.Annotated() {
			continue
		}
		set.Sections[section.ID] = &SectionNotes{
			Commentary:       section.Commentary,
			CaseLaws:         section.CaseLaws,
			TechnicalDetails: section.TechnicalDetails,
		}
	}
	return set
}
