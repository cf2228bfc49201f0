package library

import (
	"time"

	"github.com/coolbeans/treatise/pkg/statute"
)

// StatuteStatus represents the state of a statute in the library.
type StatuteStatus string

const (
	// StatusReady indicates the statute has been segmented and can be read.
	StatusReady StatuteStatus = "ready"

	// StatusFailed indicates the source could not be read or stored.
	StatusFailed StatuteStatus = "failed"
)

// Manifest is the top-level index of all statutes in the library.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Statutes  []*Entry  `json:"statutes"`
}

// Entry represents a single statute stored in the library.
type Entry struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Layout      string              `json:"layout"`
	Status      StatuteStatus       `json:"status"`
	Annotated   bool                `json:"annotated"`
	IngestedAt  time.Time           `json:"ingested_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	SourceInfo  string              `json:"source_info,omitempty"`
	Stats       *statute.Statistics `json:"stats,omitempty"`
	StorageHash string              `json:"storage_hash"`
	Error       string              `json:"error,omitempty"`
}

// AddOptions configures how a statute is added to the library.
type AddOptions struct {
	Title       string
	Description string
	Category    string
	SourceInfo  string
	// LayoutPath points to a YAML layout profile. Empty uses the default layout.
	LayoutPath string
	Force      bool // overwrite existing statute with same ID
}

// Stats aggregates statistics across all statutes in the library.
type Stats struct {
	TotalStatutes          int            `json:"total_statutes"`
	TotalChapters          int            `json:"total_chapters"`
	TotalSections          int            `json:"total_sections"`
	TotalAnnotatedSections int            `json:"total_annotated_sections"`
	TotalWords             int            `json:"total_words"`
	ByCategory             map[string]int `json:"by_category"`
	ByStatus               map[string]int `json:"by_status"`
}

// CatalogEntry describes a statute source available for seeding.
type CatalogEntry struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string `yaml:"category,omitempty" json:"category,omitempty"`
	SourcePath  string `yaml:"source" json:"source"`
	Annotations string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	LayoutPath  string `yaml:"layout,omitempty" json:"layout,omitempty"`
	SourceInfo  string `yaml:"source_info,omitempty" json:"source_info,omitempty"`
}

// SeedReport summarizes the results of a seeding operation.
type SeedReport struct {
	TotalAttempted int              `json:"total_attempted"`
	Succeeded      int              `json:"succeeded"`
	Skipped        int              `json:"skipped"`
	Failed         int              `json:"failed"`
	Entries        []SeedEntryState `json:"entries"`
}

// SeedEntryState records the outcome of seeding a single statute.
type SeedEntryState struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "ingested", "skipped", "failed"
	Error  string `json:"error,omitempty"`
}
