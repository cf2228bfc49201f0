package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coolbeans/treatise/pkg/annotate"
	"github.com/coolbeans/treatise/pkg/library"
	"github.com/coolbeans/treatise/pkg/source"
)

func libraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the statute library",
		Long: `Manage a persistent library of segmented, annotated statutes.

The library keeps each statute's original text, its segmented tree and
its annotations on disk, so the reading views can be served without
re-segmenting.

Examples:
  treatise library init
  treatise library add --source dpdp.txt --id dpdp --category "Data Protection"
  treatise library annotate dpdp --annotations dpdp.yaml
  treatise library seed --catalog catalog.yaml
  treatise library list
  treatise library show dpdp
  treatise library stats
  treatise library remove dpdp`,
	}

	cmd.PersistentFlags().String("path", cfg.LibraryPath, "Library directory path")

	cmd.AddCommand(libraryInitCmd())
	cmd.AddCommand(libraryAddCmd())
	cmd.AddCommand(libraryAnnotateCmd())
	cmd.AddCommand(librarySeedCmd())
	cmd.AddCommand(libraryListCmd())
	cmd.AddCommand(libraryShowCmd())
	cmd.AddCommand(libraryStatsCmd())
	cmd.AddCommand(libraryRemoveCmd())
	cmd.AddCommand(librarySourceCmd())

	return cmd
}

func openLibrary(cmd *cobra.Command) (*library.Library, error) {
	libraryPath, _ := cmd.Flags().GetString("path")
	lib, err := library.Open(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("library not found at %s (run 'treatise library init' first): %w", libraryPath, err)
	}
	return lib, nil
}

func libraryInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new statute library",
		RunE: func(cmd *cobra.Command, args []string) error {
			libraryPath, _ := cmd.Flags().GetString("path")

			lib, err := library.Init(libraryPath)
			if err != nil {
				return fmt.Errorf("failed to initialize library: %w", err)
			}

			fmt.Printf("Library initialized at: %s\n", lib.Path())
			fmt.Println("\nNext steps:")
			fmt.Println("  treatise library add --source path/to/statute.txt --id my-act")
			fmt.Println("  treatise library annotate my-act --annotations my-act.yaml")
			fmt.Println("  treatise serve")
			return nil
		},
	}
}

func libraryAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a statute to the library",
		Long: `Segment a statute and store it in the library.

Examples:
  treatise library add --source dpdp.txt --id dpdp --title "The Digital Personal Data Protection Act, 2023"
  treatise library add --source it-act.pdf --layout layouts/it-act.yaml --annotations it-act.yaml
  treatise library add --source dpdp.txt --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			statuteID, _ := cmd.Flags().GetString("id")
			title, _ := cmd.Flags().GetString("title")
			description, _ := cmd.Flags().GetString("description")
			category, _ := cmd.Flags().GetString("category")
			layoutPath, _ := cmd.Flags().GetString("layout")
			annotationsPath, _ := cmd.Flags().GetString("annotations")
			force, _ := cmd.Flags().GetBool("force")

			if sourcePath == "" {
				return fmt.Errorf("--source flag is required")
			}

			sourceText, err := source.ReadFile(sourcePath)
			if err != nil {
				return err
			}

			if statuteID == "" {
				statuteID = library.DeriveStatuteID(sourcePath)
			}

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			fmt.Printf("Adding statute: %s\n", statuteID)
			fmt.Printf("  Source: %s (%d bytes of text)\n", sourcePath, len(sourceText))

			entry, err := lib.AddStatute(statuteID, []byte(sourceText), library.AddOptions{
				Title:       title,
				Description: description,
				Category:    category,
				SourceInfo:  sourcePath,
				LayoutPath:  layoutPath,
				Force:       force,
			})
			if err != nil {
				return fmt.Errorf("failed to add statute: %w", err)
			}

			if annotationsPath != "" {
				set, err := annotate.Load(annotationsPath)
				if err != nil {
					return err
				}
				result, err := lib.Annotate(statuteID, set)
				if err != nil {
					return fmt.Errorf("failed to annotate statute: %w", err)
				}
				reportUnmatched(result.UnmatchedSections)
				entry = lib.GetEntry(statuteID)
			}

			printEntrySummary(entry)
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source statute path")
	cmd.Flags().String("id", "", "Statute identifier (derived from filename if omitted)")
	cmd.Flags().String("title", "", "Statute title")
	cmd.Flags().String("description", "", "Short description")
	cmd.Flags().String("category", "", "Category shown on the library page")
	cmd.Flags().String("layout", cfg.LayoutPath, "Layout profile (YAML)")
	cmd.Flags().StringP("annotations", "a", "", "Annotation file to attach")
	cmd.Flags().Bool("force", false, "Re-segment an existing statute")

	return cmd
}

func libraryAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <id>",
		Short: "Attach an annotation file to a statute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			annotationsPath, _ := cmd.Flags().GetString("annotations")
			dump, _ := cmd.Flags().GetBool("dump")

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			if dump {
				set, err := lib.LoadAnnotations(args[0])
				if err != nil {
					return err
				}
				data, err := set.Marshal()
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}

			if annotationsPath == "" {
				return fmt.Errorf("--annotations flag is required")
			}
			set, err := annotate.Load(annotationsPath)
			if err != nil {
				return err
			}

			result, err := lib.Annotate(args[0], set)
			if err != nil {
				return fmt.Errorf("failed to annotate statute: %w", err)
			}

			fmt.Printf("Annotated %d section(s) of %s\n", result.Applied, args[0])
			reportUnmatched(result.UnmatchedSections)
			return nil
		},
	}

	cmd.Flags().StringP("annotations", "a", "", "Annotation file (YAML or JSON)")
	cmd.Flags().Bool("dump", false, "Print the stored annotations instead of replacing them")

	return cmd
}

func librarySeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the library from a catalog or a directory",
		Long: `Ingest every statute listed in a catalog file, or every readable source
in a directory. Sources already in the library are skipped.

In directory mode a "<name>.annotations.yaml" file next to "<name>.txt"
is attached to that statute.

Example:
  treatise library seed --catalog testdata/catalog.yaml
  treatise library seed --dir statutes/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			dirPath, _ := cmd.Flags().GetString("dir")
			libraryPath, _ := cmd.Flags().GetString("path")

			if (catalogPath == "") == (dirPath == "") {
				return fmt.Errorf("exactly one of --catalog or --dir is required")
			}

			lib, err := library.OpenOrInit(libraryPath)
			if err != nil {
				return fmt.Errorf("failed to open library: %w", err)
			}

			var seedReport *library.SeedReport
			if catalogPath != "" {
				entries, err := library.LoadCatalog(catalogPath)
				if err != nil {
					return err
				}
				fmt.Printf("Seeding library with %d statutes from %s\n\n", len(entries), catalogPath)
				seedReport, err = library.SeedFromCatalog(lib, entries)
				if err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
			} else {
				seedReport, err = library.SeedFromDirectory(lib, dirPath)
				if err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
			}

			for _, entryState := range seedReport.Entries {
				switch entryState.Status {
				case "ingested":
					sectionCount := 0
					if entry := lib.GetEntry(entryState.ID); entry != nil && entry.Stats != nil {
						sectionCount = entry.Stats.Sections
					}
					fmt.Printf("  [OK] %-20s %d sections\n", entryState.ID, sectionCount)
				case "skipped":
					fmt.Printf("  [SKIP] %-18s already in library\n", entryState.ID)
				case "failed":
					fmt.Printf("  [FAIL] %-18s %s\n", entryState.ID, entryState.Error)
				}
			}

			fmt.Printf("\nSeed complete: %d ingested, %d skipped, %d failed\n",
				seedReport.Succeeded, seedReport.Skipped, seedReport.Failed)
			return nil
		},
	}

	cmd.Flags().String("catalog", "", "Catalog file (YAML)")
	cmd.Flags().String("dir", "", "Directory of statute sources")

	return cmd
}

func libraryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all statutes in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			category, _ := cmd.Flags().GetString("category")

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			entries := lib.ListEntries()
			if category != "" {
				filtered := make([]*library.Entry, 0)
				for _, entry := range entries {
					if strings.EqualFold(entry.Category, category) {
						filtered = append(filtered, entry)
					}
				}
				entries = filtered
			}

			if formatStr == "json" {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Println("Library is empty. Run 'treatise library add' to add a statute.")
				return nil
			}

			fmt.Printf("%-16s %-40s %-8s %8s %9s %9s\n",
				"ID", "TITLE", "STATUS", "CHAPTERS", "SECTIONS", "ANNOTATED")
			fmt.Println(strings.Repeat("-", 96))

			for _, entry := range entries {
				var chapters, sections, annotated int
				if entry.Stats != nil {
					chapters = entry.Stats.Chapters
					sections = entry.Stats.Sections
					annotated = entry.Stats.AnnotatedSections
				}
				fmt.Printf("%-16s %-40s %-8s %8d %9d %9d\n",
					truncateString(entry.ID, 16),
					truncateString(entry.Title, 40),
					entry.Status,
					chapters,
					sections,
					annotated,
				)
			}

			fmt.Printf("\n%d statute(s)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	cmd.Flags().String("category", "", "Filter by category")

	return cmd
}

func libraryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a statute's chapters and sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			entry := lib.GetEntry(args[0])
			if entry == nil {
				return fmt.Errorf("%w: %s", library.ErrNotFound, args[0])
			}
			printEntrySummary(entry)
			if entry.Status != library.StatusReady {
				return nil
			}

			st, err := lib.LoadStatute(args[0])
			if err != nil {
				return err
			}

			fmt.Println()
			for _, chapter := range st.Chapters {
				fmt.Println(chapter.Title)
				for _, section := range chapter.Sections {
					marker := " "
					if section.Annotated() {
						marker = "*"
					}
					fmt.Printf("  %s %4s. %s\n", marker, section.Number, truncateString(section.Title, 70))
				}
			}
			return nil
		},
	}
}

func libraryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			libraryStats := lib.Stats()

			fmt.Printf("Library: %s\n\n", lib.Path())
			fmt.Printf("Statutes:           %d\n", libraryStats.TotalStatutes)
			fmt.Printf("Chapters:           %d\n", libraryStats.TotalChapters)
			fmt.Printf("Sections:           %d\n", libraryStats.TotalSections)
			fmt.Printf("Annotated sections: %d\n", libraryStats.TotalAnnotatedSections)
			fmt.Printf("Words:              %d\n", libraryStats.TotalWords)

			printCounts("By Category", libraryStats.ByCategory)
			printCounts("By Status", libraryStats.ByStatus)
			return nil
		},
	}
}

func libraryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a statute from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			if err := lib.RemoveStatute(args[0]); err != nil {
				return fmt.Errorf("failed to remove statute: %w", err)
			}

			fmt.Printf("Removed statute: %s\n", args[0])
			return nil
		},
	}
}

func librarySourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source <id>",
		Short: "Print the stored source text of a statute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			sourceText, err := lib.LoadSourceText(args[0])
			if err != nil {
				return fmt.Errorf("failed to load source: %w", err)
			}

			_, err = os.Stdout.Write(sourceText)
			return err
		},
	}
}

func printEntrySummary(entry *library.Entry) {
	fmt.Printf("  ID: %s\n", entry.ID)
	fmt.Printf("  Title: %s\n", entry.Title)
	if entry.Category != "" {
		fmt.Printf("  Category: %s\n", entry.Category)
	}
	fmt.Printf("  Layout: %s\n", entry.Layout)
	fmt.Printf("  Status: %s\n", entry.Status)
	if entry.Error != "" {
		fmt.Printf("  Error: %s\n", entry.Error)
	}
	if entry.Stats != nil {
		fmt.Printf("  Chapters: %d\n", entry.Stats.Chapters)
		fmt.Printf("  Sections: %d (%d annotated)\n", entry.Stats.Sections, entry.Stats.AnnotatedSections)
		fmt.Printf("  Words: %d\n", entry.Stats.Words)
	}
}

func printCounts(heading string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", heading)
	for _, key := range keys {
		fmt.Printf("  %-20s %d\n", key, counts[key])
	}
}
