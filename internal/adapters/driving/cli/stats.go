package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errIndexInconsistent is returned by integrity when drift is found.
var errIndexInconsistent = errors.New("index is inconsistent")

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus totals",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that every chunk is in the search index",
	Long: `Compares stored chunks with the full-text index and reports chunks
missing from the index, index entries without a chunk, and entries whose
indexed text differs from the stored chunk.`,
	Args: cobra.NoArgs,
	RunE: runIntegrity,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(integrityCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireService("document service", documentService != nil); err != nil {
		return err
	}

	stats, err := documentService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Documents:           %d\n", stats.Documents)
	cmd.Printf("Chunks:              %d\n", stats.Chunks)
	cmd.Printf("Chunks per document: %.1f\n", stats.AverageChunks())
	return nil
}

func runIntegrity(cmd *cobra.Command, _ []string) error {
	if err := requireService("document service", documentService != nil); err != nil {
		return err
	}

	report, err := documentService.Integrity(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	cmd.Printf("Chunks:        %d\n", report.Chunks)
	cmd.Printf("Index entries: %d\n", report.IndexEntries)

	if report.Consistent() {
		cmd.Println("\n✓ Index is consistent")
		return nil
	}

	cmd.Println()
	if len(report.Missing) > 0 {
		cmd.Printf("✗ %d chunks missing from index: %v\n", len(report.Missing), report.Missing)
	}
	if len(report.Orphaned) > 0 {
		cmd.Printf("✗ %d orphaned index entries: %v\n", len(report.Orphaned), report.Orphaned)
	}
	if len(report.Mismatched) > 0 {
		cmd.Printf("✗ %d chunks with mismatched text: %v\n", len(report.Mismatched), report.Mismatched)
	}
	return errIndexInconsistent
}
