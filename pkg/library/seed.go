package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/treatise/pkg/annotate"
	"github.com/coolbeans/treatise/pkg/source"
)

const annotationsSuffix = ".annotations.yaml"

// LoadCatalog reads a YAML catalog of statute sources. Relative source,
// annotation and layout paths are resolved against the catalog's directory.
func LoadCatalog(catalogPath string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog struct {
		Statutes []CatalogEntry `yaml:"statutes"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	baseDir := filepath.Dir(catalogPath)
	for i := range catalog.Statutes {
		entry := &catalog.Statutes[i]
		if entry.SourcePath == "" {
			return nil, fmt.Errorf("catalog entry %d has no source", i)
		}
		if entry.ID == "" {
			entry.ID = DeriveStatuteID(entry.SourcePath)
		}
		entry.SourcePath = resolvePath(baseDir, entry.SourcePath)
		entry.Annotations = resolvePath(baseDir, entry.Annotations)
		entry.LayoutPath = resolvePath(baseDir, entry.LayoutPath)
	}

	return catalog.Statutes, nil
}

// SeedFromCatalog ingests every catalog entry that is not already ready in
// the library, attaching annotations when the entry names them.
func SeedFromCatalog(lib *Library, entries []CatalogEntry) (*SeedReport, error) {
	seedReport := &SeedReport{
		TotalAttempted: len(entries),
		Entries:        make([]SeedEntryState, 0, len(entries)),
	}

	for _, catalogEntry := range entries {
		opts := AddOptions{
			Title:       catalogEntry.Title,
			Description: catalogEntry.Description,
			Category:    catalogEntry.Category,
			SourceInfo:  catalogEntry.SourceInfo,
			LayoutPath:  catalogEntry.LayoutPath,
			Force:       true,
		}
		seedReport.record(seedOne(lib, catalogEntry.ID, catalogEntry.SourcePath, catalogEntry.Annotations, opts))
	}

	return seedReport, nil
}

// SeedFromDirectory scans a directory for readable statute sources and
// ingests each one. A sibling "<name>.annotations.yaml" file is applied to
// the statute derived from "<name>.<ext>".
func SeedFromDirectory(lib *Library, dirPath string) (*SeedReport, error) {
	dirEntries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var sourcePaths []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		if _, ok := source.SupportedExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		sourcePaths = append(sourcePaths, filepath.Join(dirPath, name))
	}
	sort.Strings(sourcePaths)

	seedReport := &SeedReport{
		TotalAttempted: len(sourcePaths),
		Entries:        make([]SeedEntryState, 0, len(sourcePaths)),
	}

	for _, sourcePath := range sourcePaths {
		statuteID := DeriveStatuteID(sourcePath)

		annotationsPath := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + annotationsSuffix
		if _, err := os.Stat(annotationsPath); err != nil {
			annotationsPath = ""
		}

		seedReport.record(seedOne(lib, statuteID, sourcePath, annotationsPath, AddOptions{Force: true}))
	}

	return seedReport, nil
}

func seedOne(lib *Library, statuteID, sourcePath, annotationsPath string, opts AddOptions) SeedEntryState {
	var set *annotate.Set
	if annotationsPath != "" {
		loaded, err := annotate.Load(annotationsPath)
		if err != nil {
			return SeedEntryState{ID: statuteID, Status: "failed", Error: err.Error()}
		}
		set = loaded
	}

	if existing := lib.GetEntry(statuteID); existing != nil && existing.Status == StatusReady {
		if set == nil || existing.Annotated {
			return SeedEntryState{ID: statuteID, Status: "skipped"}
		}
		if _, err := lib.Annotate(statuteID, set); err != nil {
			return SeedEntryState{ID: statuteID, Status: "failed", Error: err.Error()}
		}
		return SeedEntryState{ID: statuteID, Status: "ingested"}
	}

	sourceText, err := source.ReadFile(sourcePath)
	if err != nil {
		return SeedEntryState{ID: statuteID, Status: "failed", Error: fmt.Sprintf("failed to read source: %v", err)}
	}
	if opts.SourceInfo == "" {
		opts.SourceInfo = filepath.Base(sourcePath)
	}

	if _, err := lib.AddStatute(statuteID, []byte(sourceText), opts); err != nil {
		return SeedEntryState{ID: statuteID, Status: "failed", Error: err.Error()}
	}

	if set != nil {
		if _, err := lib.Annotate(statuteID, set); err != nil {
			return SeedEntryState{ID: statuteID, Status: "failed", Error: err.Error()}
		}
	}

	return SeedEntryState{ID: statuteID, Status: "ingested"}
}

func (r *SeedReport) record(state SeedEntryState) {
	switch state.Status {
	case "ingested":
		r.Succeeded++
	case "skipped":
		r.Skipped++
	default:
		r.Failed++
	}
	r.Entries = append(r.Entries, state)
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
