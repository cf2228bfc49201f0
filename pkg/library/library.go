// Package library manages a persistent, flat-file collection of treated
// statutes: the original source text, the segmented tree and the editorial
// annotations for each one.
package library

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/coolbeans/treatise/pkg/annotate"
	"github.com/coolbeans/treatise/pkg/statute"
)

const (
	manifestFileName    = "library.json"
	statutesDir         = "statutes"
	sourceFileName      = "source.txt"
	treeFileName        = "statute.json"
	annotationsFileName = "annotations.yaml"
	manifestVersion     = "1.0.0"
	defaultLayoutName   = "default"
)

// ErrNotFound is returned when a statute ID is not in the library.
var ErrNotFound = errors.New("statute not found")

// Library manages a persistent collection of treated statutes.
type Library struct {
	mu       sync.RWMutex
	path     string
	manifest *Manifest
}

// Init creates a new library at the given path.
func Init(libraryPath string) (*Library, error) {
	statutesPath := filepath.Join(libraryPath, statutesDir)
	if err := os.MkdirAll(statutesPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	now := time.Now().UTC()
	lib := &Library{
		path: libraryPath,
		manifest: &Manifest{
			Version:   manifestVersion,
			CreatedAt: now,
			UpdatedAt: now,
			Statutes:  []*Entry{},
		},
	}

	if err := lib.saveManifest(); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	return lib, nil
}

// Open loads an existing library from disk.
func Open(libraryPath string) (*Library, error) {
	manifestPath := filepath.Join(libraryPath, manifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read library manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse library manifest: %w", err)
	}

	return &Library{
		path:     libraryPath,
		manifest: &manifest,
	}, nil
}

// OpenOrInit opens the library at libraryPath, creating it if missing.
func OpenOrInit(libraryPath string) (*Library, error) {
	if _, err := os.Stat(filepath.Join(libraryPath, manifestFileName)); errors.Is(err, os.ErrNotExist) {
		return Init(libraryPath)
	}
	return Open(libraryPath)
}

// AddStatute segments source text and stores it in the library.
func (lib *Library) AddStatute(statuteID string, sourceText []byte, opts AddOptions) (*Entry, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	if statuteID == "" {
		return nil, fmt.Errorf("statute ID is required")
	}

	existing := lib.findEntryUnsafe(statuteID)
	if existing != nil && !opts.Force {
		return existing, nil // idempotent: return existing entry
	}

	layoutName := defaultLayoutName
	segmenter, err := SegmenterFor(opts.LayoutPath)
	if err == nil {
		if name := segmenter.Layout().Name; name != "" {
			layoutName = name
		}
	}

	var st *statute.Statute
	if err == nil {
		st, err = SegmentText(string(sourceText), statuteID, opts.Title, segmenter)
	}
	if err != nil {
		now := time.Now().UTC()
		if existing != nil && existing.Status == StatusReady {
			// The stored tree stays readable; only the error is recorded.
			existing.Error = err.Error()
			existing.UpdatedAt = now
			if saveErr := lib.saveManifest(); saveErr != nil {
				return nil, fmt.Errorf("segmentation failed (%v) and failed to save manifest: %w", err, saveErr)
			}
			return nil, fmt.Errorf("segmentation failed for %s: %w", statuteID, err)
		}
		lib.upsertEntry(&Entry{
			ID:          statuteID,
			Title:       opts.Title,
			Layout:      layoutName,
			Status:      StatusFailed,
			IngestedAt:  now,
			UpdatedAt:   now,
			StorageHash: hashStatuteID(statuteID),
			Error:       err.Error(),
		})
		if saveErr := lib.saveManifest(); saveErr != nil {
			return nil, fmt.Errorf("segmentation failed (%v) and failed to save manifest: %w", err, saveErr)
		}
		return nil, fmt.Errorf("segmentation failed for %s: %w", statuteID, err)
	}
	st.Description = opts.Description
	st.Category = opts.Category

	storageHash := hashStatuteID(statuteID)

	// A re-segmented source keeps the annotations stored next to it.
	var annotations *annotate.Set
	if lib.hasStatuteFileUnsafe(storageHash, annotationsFileName) {
		annotations, err = lib.loadAnnotationsUnsafe(storageHash)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored annotations for %s: %w", statuteID, err)
		}
	}

	if err := lib.writeStatuteFile(storageHash, sourceFileName, sourceText); err != nil {
		return nil, fmt.Errorf("failed to save source: %w", err)
	}

	treeData, err := SerializeStatute(st)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize statute: %w", err)
	}
	if err := lib.writeStatuteFile(storageHash, treeFileName, treeData); err != nil {
		return nil, fmt.Errorf("failed to save statute: %w", err)
	}

	annotated := annotations != nil
	stats := st.Statistics()
	if annotated {
		stats = annotate.Apply(st, annotations).Statute.Statistics()
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:          statuteID,
		Title:       st.Title,
		Description: st.Description,
		Category:    st.Category,
		Layout:      layoutName,
		Status:      StatusReady,
		Annotated:   annotated,
		IngestedAt:  now,
		UpdatedAt:   now,
		SourceInfo:  opts.SourceInfo,
		Stats:       &stats,
		StorageHash: storageHash,
	}

	lib.upsertEntry(entry)

	if err := lib.saveManifest(); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	return entry, nil
}

// Annotate stores an annotation set for a statute, replacing any previous
// one, and returns how it applies to the stored tree.
func (lib *Library) Annotate(statuteID string, set *annotate.Set) (*annotate.Result, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	entry, err := lib.readyEntryUnsafe(statuteID)
	if err != nil {
		return nil, err
	}

	st, err := lib.loadTreeUnsafe(entry)
	if err != nil {
		return nil, err
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	data, err := set.Marshal()
	if err != nil {
		return nil, err
	}
	if err := lib.writeStatuteFile(entry.StorageHash, annotationsFileName, data); err != nil {
		return nil, fmt.Errorf("failed to save annotations: %w", err)
	}

	result := annotate.Apply(st, set)
	stats := result.Statute.Statistics()

	entry.Annotated = true
	entry.Title = result.Statute.Title
	entry.Description = result.Statute.Description
	entry.Category = result.Statute.Category
	entry.Stats = &stats
	entry.UpdatedAt = time.Now().UTC()
	lib.manifest.UpdatedAt = entry.UpdatedAt

	if err := lib.saveManifest(); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	return result, nil
}

// RemoveStatute deletes a statute and its associated files from the library.
func (lib *Library) RemoveStatute(statuteID string) error {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	entry := lib.findEntryUnsafe(statuteID)
	if entry == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, statuteID)
	}

	if err := os.RemoveAll(lib.statuteDir(entry.StorageHash)); err != nil {
		return fmt.Errorf("failed to remove statute files: %w", err)
	}

	lib.removeEntry(statuteID)

	if err := lib.saveManifest(); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}

	return nil
}

// GetEntry returns the entry for a specific statute, or nil.
func (lib *Library) GetEntry(statuteID string) *Entry {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return lib.findEntryUnsafe(statuteID)
}

// ListEntries returns all statute entries, sorted by ID.
func (lib *Library) ListEntries() []*Entry {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	result := make([]*Entry, len(lib.manifest.Statutes))
	copy(result, lib.manifest.Statutes)

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// LoadStatute returns the stored tree with its annotations attached.
func (lib *Library) LoadStatute(statuteID string) (*statute.Statute, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	entry, err := lib.readyEntryUnsafe(statuteID)
	if err != nil {
		return nil, err
	}

	st, err := lib.loadTreeUnsafe(entry)
	if err != nil {
		return nil, err
	}
	if !entry.Annotated {
		return st, nil
	}

	set, err := lib.loadAnnotationsUnsafe(entry.StorageHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load annotations for %s: %w", statuteID, err)
	}
	return annotate.Apply(st, set).Statute, nil
}

// LoadAnnotations returns the stored annotation set for a statute, or an
// empty set when none has been stored.
func (lib *Library) LoadAnnotations(statuteID string) (*annotate.Set, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	entry, err := lib.readyEntryUnsafe(statuteID)
	if err != nil {
		return nil, err
	}
	if !entry.Annotated {
		return &annotate.Set{Sections: map[string]*annotate.SectionNotes{}}, nil
	}
	return lib.loadAnnotationsUnsafe(entry.StorageHash)
}

// LoadSourceText returns the original source text for a statute.
func (lib *Library) LoadSourceText(statuteID string) ([]byte, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	entry := lib.findEntryUnsafe(statuteID)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, statuteID)
	}

	return lib.readStatuteFile(entry.StorageHash, sourceFileName)
}

// Stats returns aggregate statistics across all statutes.
func (lib *Library) Stats() *Stats {
	lib.mu.RLock()
	defer lib.mu.RUnlock()

	libraryStats := &Stats{
		ByCategory: make(map[string]int),
		ByStatus:   make(map[string]int),
	}

	for _, entry := range lib.manifest.Statutes {
		libraryStats.TotalStatutes++
		libraryStats.ByStatus[string(entry.Status)]++

		if entry.Category != "" {
			libraryStats.ByCategory[entry.Category]++
		}

		if entry.Stats != nil {
			libraryStats.TotalChapters += entry.Stats.Chapters
			libraryStats.TotalSections += entry.Stats.Sections
			libraryStats.TotalAnnotatedSections += entry.Stats.AnnotatedSections
			libraryStats.TotalWords += entry.Stats.Words
		}
	}

	return libraryStats
}

// Path returns the library's root directory.
func (lib *Library) Path() string {
	return lib.path
}

// --- Internal helpers ---

func (lib *Library) findEntryUnsafe(statuteID string) *Entry {
	for _, entry := range lib.manifest.Statutes {
		if entry.ID == statuteID {
			return entry
		}
	}
	return nil
}

func (lib *Library) readyEntryUnsafe(statuteID string) (*Entry, error) {
	entry := lib.findEntryUnsafe(statuteID)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, statuteID)
	}
	if entry.Status != StatusReady {
		return nil, fmt.Errorf("statute %s is not ready (status: %s)", statuteID, entry.Status)
	}
	return entry, nil
}

func (lib *Library) loadTreeUnsafe(entry *Entry) (*statute.Statute, error) {
	data, err := lib.readStatuteFile(entry.StorageHash, treeFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read statute %s: %w", entry.ID, err)
	}
	return DeserializeStatute(data)
}

func (lib *Library) loadAnnotationsUnsafe(storageHash string) (*annotate.Set, error) {
	data, err := lib.readStatuteFile(storageHash, annotationsFileName)
	if err != nil {
		return nil, err
	}
	return annotate.Parse(data)
}

func (lib *Library) upsertEntry(entry *Entry) {
	for i, existing := range lib.manifest.Statutes {
		if existing.ID == entry.ID {
			lib.manifest.Statutes[i] = entry
			lib.manifest.UpdatedAt = time.Now().UTC()
			return
		}
	}
	lib.manifest.Statutes = append(lib.manifest.Statutes, entry)
	lib.manifest.UpdatedAt = time.Now().UTC()
}

func (lib *Library) removeEntry(statuteID string) {
	filtered := make([]*Entry, 0, len(lib.manifest.Statutes))
	for _, entry := range lib.manifest.Statutes {
		if entry.ID != statuteID {
			filtered = append(filtered, entry)
		}
	}
	lib.manifest.Statutes = filtered
	lib.manifest.UpdatedAt = time.Now().UTC()
}

func (lib *Library) saveManifest() error {
	manifestPath := filepath.Join(lib.path, manifestFileName)
	data, err := json.MarshalIndent(lib.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(manifestPath, data, 0644)
}

func (lib *Library) statuteDir(storageHash string) string {
	return filepath.Join(lib.path, statutesDir, storageHash)
}

func (lib *Library) writeStatuteFile(storageHash string, fileName string, data []byte) error {
	dirPath := lib.statuteDir(storageHash)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dirPath, fileName), data, 0644)
}

func (lib *Library) hasStatuteFileUnsafe(storageHash string, fileName string) bool {
	_, err := os.Stat(filepath.Join(lib.statuteDir(storageHash), fileName))
	return err == nil
}

func (lib *Library) readStatuteFile(storageHash string, fileName string) ([]byte, error) {
	return os.ReadFile(filepath.Join(lib.statuteDir(storageHash), fileName))
}

func hashStatuteID(statuteID string) string {
	hash := sha256.Sum256([]byte(statuteID))
	return fmt.Sprintf("%x", hash)
}
