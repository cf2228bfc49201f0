package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/treatise/pkg/config"
	"github.com/coolbeans/treatise/pkg/export"
	"github.com/coolbeans/treatise/pkg/library"
	"github.com/coolbeans/treatise/pkg/pipeline"
	"github.com/coolbeans/treatise/pkg/serve"
	"github.com/coolbeans/treatise/pkg/statute"
	"github.com/coolbeans/treatise/pkg/watch"
)

var version = "0.1.0"

var cfg = config.Load()

func main() {
	rootCmd := &cobra.Command{
		Use:   "treatise",
		Short: "Statute segmenter and annotated reader",
		Long: `Treatise turns the plain text of a statute into a tree of chapters and
sections, attaches editorial commentary, case law and technical notes, and
publishes the result as a reading view or structured data.

Segmentation is heuristic: page numbers, running headers and gazette
footers are stripped, chapter and section headings are recognised by
pattern, and everything else becomes section content. Review the output.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(segmentCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(libraryCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addBuildFlags registers the flags shared by commands that build a statute
// from a source file.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "Source statute path (.txt, .pdf, .docx, .html)")
	cmd.Flags().StringP("annotations", "a", "", "Annotation file (YAML or JSON)")
	cmd.Flags().String("layout", cfg.LayoutPath, "Layout profile (YAML)")
	cmd.Flags().String("id", "", "Statute identifier (derived from filename if omitted)")
	cmd.Flags().String("title", "", "Statute title")
}

func buildJob(cmd *cobra.Command) (pipeline.Job, error) {
	sourcePath, _ := cmd.Flags().GetString("source")
	annotationsPath, _ := cmd.Flags().GetString("annotations")
	layoutPath, _ := cmd.Flags().GetString("layout")
	statuteID, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")

	if sourcePath == "" {
		return pipeline.Job{}, fmt.Errorf("--source flag is required")
	}

	return pipeline.Job{
		SourcePath:      sourcePath,
		AnnotationsPath: annotationsPath,
		LayoutPath:      layoutPath,
		StatuteID:       statuteID,
		Title:           title,
	}, nil
}

// writeOutput writes st to outputPath, or to stdout when outputPath is empty.
func writeOutput(st *statute.Statute, outputPath, format string) error {
	if outputPath == "" {
		if format == string(export.FormatXLSX) {
			return fmt.Errorf("xlsx output needs --output")
		}
		return pipeline.Write(os.Stdout, st, format)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := pipeline.Write(file, st, format); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", outputPath)
	return nil
}

func reportUnmatched(unmatched []string) {
	if len(unmatched) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: annotations for missing sections: %s\n", strings.Join(unmatched, ", "))
	}
}

func segmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Segment a statute into chapters and sections",
		Long: `Segment a statute's text and print the chapter tree as JSON.

Example:
  treatise segment --source dpdp.txt
  treatise segment --source dpdp.pdf --layout layouts/it-act.yaml --output dpdp.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			job, err := buildJob(cmd)
			if err != nil {
				return err
			}

			result, err := job.Build()
			if err != nil {
				return err
			}
			return writeOutput(result.Statute, output, string(export.FormatJSON))
		},
	}

	addBuildFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	return cmd
}

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the annotated reading view as HTML",
		Long: `Segment a statute, attach annotations and write the reading view.

Example:
  treatise render --source dpdp.txt --annotations dpdp.yaml --output dpdp.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			job, err := buildJob(cmd)
			if err != nil {
				return err
			}
			result, err := job.Build()
			if err != nil {
				return err
			}
			reportUnmatched(result.UnmatchedSections)
			return writeOutput(result.Statute, output, pipeline.FormatHTML)
		},
	}

	addBuildFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output HTML file (default: stdout)")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a statute as JSON or XLSX",
		Long: `Export a segmented statute, from a source file or from the library.

Example:
  treatise export --source dpdp.txt --annotations dpdp.yaml --format json
  treatise export --source dpdp.txt --format xlsx --output dpdp.xlsx
  treatise export --library .treatise --id dpdp --format xlsx --output dpdp.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			formatStr, _ := cmd.Flags().GetString("format")
			libraryPath, _ := cmd.Flags().GetString("library")
			statuteID, _ := cmd.Flags().GetString("id")
			sourcePath, _ := cmd.Flags().GetString("source")

			if formatStr == "" {
				formatStr = pipeline.FormatForPath(output)
			}
			format, err := export.ParseFormat(formatStr)
			if err != nil {
				return err
			}

			var st *statute.Statute
			if sourcePath == "" && statuteID != "" {
				lib, err := library.Open(libraryPath)
				if err != nil {
					return fmt.Errorf("library not found at %s: %w", libraryPath, err)
				}
				if st, err = lib.LoadStatute(statuteID); err != nil {
					return err
				}
			} else {
				job, err := buildJob(cmd)
				if err != nil {
					return err
				}
				result, err := job.Build()
				if err != nil {
					return err
				}
				reportUnmatched(result.UnmatchedSections)
				st = result.Statute
			}

			return writeOutput(st, output, string(format))
		},
	}

	addBuildFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringP("format", "f", "", "Output format (json, xlsx); guessed from --output if omitted")
	cmd.Flags().String("library", cfg.LibraryPath, "Library directory path, used with --id and no --source")

	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show segmentation statistics for a statute",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")

			job, err := buildJob(cmd)
			if err != nil {
				return err
			}
			result, err := job.Build()
			if err != nil {
				return err
			}
			st := result.Statute
			stats := st.Statistics()

			if formatStr == "json" {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(stats)
			}

			fmt.Printf("Statute: %s (%s)\n\n", st.Title, st.ID)
			fmt.Printf("Chapters:           %d\n", stats.Chapters)
			fmt.Printf("Sections:           %d\n", stats.Sections)
			fmt.Printf("Annotated sections: %d\n", stats.AnnotatedSections)
			fmt.Printf("Commentary:         %d\n", stats.Commentary)
			fmt.Printf("Case laws:          %d\n", stats.CaseLaws)
			fmt.Printf("Technical notes:    %d\n", stats.TechnicalDetails)
			fmt.Printf("Words:              %d\n", stats.Words)

			fmt.Println()
			for _, chapter := range st.Chapters {
				fmt.Printf("%-50s %3d sections\n", truncateString(chapter.Title, 50), len(chapter.Sections))
			}

			reportUnmatched(result.UnmatchedSections)
			return nil
		},
	}

	addBuildFlags(cmd)
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library's reading views and JSON API",
		Long: `Serve the statute library over HTTP.

Routes:
  GET /                                        library index
  GET /statutes/{id}                           annotated reading view
  GET /api/statutes                            library entries
  GET /api/statutes/{id}                       statute tree with annotations
  GET /api/statutes/{id}/sections/{sectionID}  single section
  GET /health                                  liveness

Example:
  treatise serve --library .treatise --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			libraryPath, _ := cmd.Flags().GetString("library")
			port, _ := cmd.Flags().GetString("port")

			serveCfg := cfg
			serveCfg.LibraryPath = libraryPath
			serveCfg.Port = port
			if err := serveCfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log := serveCfg.NewLogger(os.Stdout, true)

			lib, err := library.Open(libraryPath)
			if err != nil {
				return fmt.Errorf("library not found at %s (run 'treatise library init' first): %w", libraryPath, err)
			}

			httpServer := &http.Server{
				Addr:         serveCfg.Addr(),
				Handler:      serve.NewServer(lib, log),
				ReadTimeout:  serveCfg.ReadTimeout,
				WriteTimeout: serveCfg.WriteTimeout,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serveCfg.ShutdownTimeout)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting treatise", "port", serveCfg.Port, "library", lib.Path(), "statutes", len(lib.ListEntries()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("library", cfg.LibraryPath, "Library directory path")
	cmd.Flags().String("port", cfg.Port, "Port to listen on")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild output whenever the source or annotations change",
		Long: `Watch a statute source and its annotation file, rebuilding the output
after each burst of edits.

Example:
  treatise watch --source dpdp.txt --annotations dpdp.yaml --output dpdp.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			formatStr, _ := cmd.Flags().GetString("format")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			job, err := buildJob(cmd)
			if err != nil {
				return err
			}
			if output == "" {
				return fmt.Errorf("--output flag is required")
			}
			if formatStr == "" {
				formatStr = pipeline.FormatForPath(output)
			}

			log := cfg.NewLogger(os.Stderr, true)

			rebuild := func() error {
				result, err := job.BuildTo(output, formatStr)
				if err != nil {
					return err
				}
				if len(result.UnmatchedSections) > 0 {
					log.Warn("annotations for missing sections", "sections", result.UnmatchedSections)
				}
				stats := result.Statute.Statistics()
				log.Info("wrote output", "path", output, "chapters", stats.Chapters, "sections", stats.Sections)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			paths := []string{job.SourcePath, job.AnnotationsPath, job.LayoutPath}
			log.Info("watching", "source", job.SourcePath, "annotations", job.AnnotationsPath, "output", output)
			return watch.New(paths, debounce, rebuild, log).Run(ctx)
		},
	}

	addBuildFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file")
	cmd.Flags().StringP("format", "f", "", "Output format (html, json, xlsx); guessed from --output if omitted")
	cmd.Flags().Duration("debounce", cfg.WatchDebounce, "Quiet period before rebuilding")

	return cmd
}

func truncateString(inputStr string, maxLength int) string {
	runes := []rune(inputStr)
	if len(runes) <= maxLength {
		return inputStr
	}
	return string(runes[:maxLength-3]) + "..."
}
