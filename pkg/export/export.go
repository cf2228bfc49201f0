// Package export writes segmented statutes in machine-readable formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/coolbeans/treatise/pkg/statute"
)

// Format names an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// SectionsSheet is the worksheet that lists one row per section.
const SectionsSheet = "Sections"

var sectionColumns = []interface{}{
	"Chapter", "Number", "Title", "Words", "Commentary", "Case Laws", "Technical Notes",
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format: %s (supported: json, xlsx)", name)
	}
}

// Write exports st to w in the given format.
func Write(w io.Writer, st *statute.Statute, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, st)
	case FormatXLSX:
		return WriteXLSX(w, st)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}

// WriteJSON writes the chapter tree as indented JSON. Section content keeps
// its paragraph separators.
func WriteJSON(w io.Writer, st *statute.Statute) error {
	chapters := st.Chapters
	if chapters == nil {
		chapters = []*statute.Chapter{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(chapters); err != nil {
		return fmt.Errorf("encoding statute %s: %w", st.ID, err)
	}
	return nil
}

// WriteXLSX writes a workbook with one row per section, for editorial
// review and annotation planning.
func WriteXLSX(w io.Writer, st *statute.Statute) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SectionsSheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetSheetRow(SectionsSheet, "A1", &sectionColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(sectionColumns), 1)
	if err := f.SetCellStyle(SectionsSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	rowIdx := 2
	for _, chapter := range st.Chapters {
		for _, section := range chapter.Sections {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return err
			}
			row := []interface{}{
				chapter.Title,
				section.Number,
				section.Title,
				section.WordCount(),
				len(section.Commentary),
				len(section.CaseLaws),
				len(section.TechnicalDetails),
			}
			if err := f.SetSheetRow(SectionsSheet, cell, &row); err != nil {
				return fmt.Errorf("writing section %s: %w", section.ID, err)
			}
			rowIdx++
		}
	}

	if err := f.SetColWidth(SectionsSheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(SectionsSheet, "C", "C", 60); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
