package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

var (
	ingestID        string
	ingestTitle     string
	ingestPattern   string
	ingestRecursive bool
	ingestWorkers   int
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Add a file or directory to the corpus",
	Long: `Extracts text from a file, splits it into chunks and stores them.

When path is a directory every file matching --pattern is ingested,
using --workers files at a time. Documents that are already in the
corpus are skipped; use reingest to replace one.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var reingestCmd = &cobra.Command{
	Use:   "reingest [doc-id] [path]",
	Short: "Replace a document with a fresh ingestion",
	Args:  cobra.ExactArgs(2),
	RunE:  runReingest,
}

var validateCmd = &cobra.Command{
	Use:   "validate [doc-id]",
	Short: "Check a document's chunk coverage and searchability",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID (files only; derived from the path by default)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (files only)")
	ingestCmd.Flags().StringVar(&ingestPattern, "pattern", "", "file name glob for directories (default from settings)")
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "files ingested in parallel (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reingestCmd)
	rootCmd.AddCommand(validateCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireService("ingestion service", ingestionService != nil); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, domain.ErrNotFound)
	}

	if !info.IsDir() {
		result, err := ingestionService.IngestFile(ctx, path, driving.IngestOptions{
			DocumentID: ingestID,
			Title:      ingestTitle,
		})
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		return outputIngestResults(cmd, []domain.IngestResult{*result})
	}

	if ingestID != "" || ingestTitle != "" {
		return fmt.Errorf("%w: --id and --title only apply to single files", domain.ErrInvalidInput)
	}

	opts, err := directoryOptions(cmd)
	if err != nil {
		return err
	}

	results, err := ingestionService.IngestDirectory(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return outputIngestResults(cmd, results)
}

// directoryOptions fills unset directory flags from settings.
func directoryOptions(cmd *cobra.Command) (driving.DirectoryOptions, error) {
	opts := driving.DirectoryOptions{
		Pattern:   ingestPattern,
		Recursive: ingestRecursive,
		Workers:   ingestWorkers,
	}
	if settingsService == nil {
		return opts, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return opts, fmt.Errorf("loading settings: %w", err)
	}
	if opts.Pattern == "" {
		opts.Pattern = settings.Ingest.Pattern
	}
	if opts.Workers <= 0 {
		opts.Workers = settings.Ingest.Workers
	}
	if !cmd.Flags().Changed("recursive") {
		opts.Recursive = settings.Ingest.Recursive
	}
	return opts, nil
}

func runReingest(cmd *cobra.Command, args []string) error {
	if err := requireService("ingestion service", ingestionService != nil); err != nil {
		return err
	}

	result, err := ingestionService.Reingest(commandContext(cmd), args[0], args[1])
	if err != nil {
		return fmt.Errorf("reingest failed: %w", err)
	}
	return outputIngestResults(cmd, []domain.IngestResult{*result})
}

func outputIngestResults(cmd *cobra.Command, results []domain.IngestResult) error {
	if ingestJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No matching files found.")
		return nil
	}

	var succeeded, skipped, failed int
	for i := range results {
		r := &results[i]
		switch r.Status {
		case domain.IngestSuccess:
			succeeded++
			cmd.Printf("  ✓ %s (%s): %d chunks, %d characters\n", r.Title, r.DocumentID, r.Chunks, r.Characters)
		case domain.IngestSkipped:
			skipped++
			cmd.Printf("  - %s (%s): skipped, %s\n", r.Path, r.DocumentID, r.Reason)
		default:
			failed++
			cmd.Printf("  ✗ %s: %s\n", r.Path, r.Reason)
		}
	}

	cmd.Println()
	cmd.Printf("Ingested: %d, skipped: %d, failed: %d\n", succeeded, skipped, failed)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := requireService("ingestion service", ingestionService != nil); err != nil {
		return err
	}

	report, err := ingestionService.Validate(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("validate failed: %w", err)
	}

	status := "valid"
	if !report.Valid {
		status = "INVALID"
	}
	cmd.Printf("Document: %s\n\n", report.DocumentID)
	cmd.Printf("  Status:      %s\n", status)
	cmd.Printf("  Chunks:      %d\n", report.ChunkCount)
	cmd.Printf("  Searchable:  %t\n", report.SearchFunctional)
	if len(report.Issues) > 0 {
		cmd.Println("\n  Issues:")
		for _, issue := range report.Issues {
			cmd.Printf("    - %s\n", issue)
		}
	}
	return nil
}
