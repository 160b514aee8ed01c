package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, inspect, read or delete documents in the corpus.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print a document's chunks",
	Long: `Prints the chunks of a document in offset order.

--start and --end restrict output to chunks overlapping that byte range.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var (
	chunksStart int
	chunksEnd   int
	chunksJSON  bool

	deleteConfirm bool
)

// confirmInput is where delete reads its confirmation from.
var confirmInput = os.Stdin

func init() {
	documentChunksCmd.Flags().IntVar(&chunksStart, "start", -1, "only chunks ending after this byte offset")
	documentChunksCmd.Flags().IntVar(&chunksEnd, "end", -1, "only chunks starting before this byte offset")
	documentChunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output chunks as JSON")
	documentDeleteCmd.Flags().BoolVarP(&deleteConfirm, "confirm", "y", false, "delete without prompting")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireService("document service", documentService != nil); err != nil {
		return err
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents in the corpus.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		if docs[i].Path != "" {
			cmd.Printf("    Path:  %s\n", docs[i].Path)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requireService("document service", documentService != nil); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	chunks, err := documentService.Chunks(ctx, doc.ID, domain.OffsetRange{})
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	var chars, pages int
	for i := range chunks {
		chars += len(chunks[i].Text)
		if chunks[i].PageNumber > pages {
			pages = chunks[i].PageNumber
		}
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:       %s\n", doc.Title)
	cmd.Printf("  Path:        %s\n", doc.Path)
	cmd.Printf("  Created:     %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Chunks:      %d\n", len(chunks))
	cmd.Printf("  Characters:  %d\n", chars)
	if pages > 0 {
		cmd.Printf("  Last page:   %d\n", pages)
	}
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if err := requireService("document service", documentService != nil); err != nil {
		return err
	}

	chunks, err := documentService.Chunks(commandContext(cmd), args[0], chunkRange(chunksStart, chunksEnd))
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if chunksJSON {
		return outputJSON(cmd, chunks)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks in range.")
		return nil
	}
	for i := range chunks {
		c := &chunks[i]
		cmd.Printf("--- chunk %d [%d-%d]", c.ID, c.StartOffset, c.EndOffset)
		if c.PageNumber > 0 {
			cmd.Printf(" page %d", c.PageNumber)
		}
		cmd.Println(" ---")
		cmd.Println(c.Text)
	}
	return nil
}

// chunkRange builds an offset range from flags, where negative means unset.
func chunkRange(start, end int) domain.OffsetRange {
	switch {
	case start >= 0 && end >= 0:
		return domain.Range(start, end)
	case start >= 0:
		return domain.From(start)
	case end >= 0:
		return domain.Until(end)
	default:
		return domain.OffsetRange{}
	}
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireService("document service", documentService != nil); err != nil {
		return err
	}

	docID := args[0]
	if !deleteConfirm {
		if !term.IsTerminal(int(confirmInput.Fd())) {
			return fmt.Errorf("%w: refusing to delete %s without --confirm", domain.ErrInvalidInput, docID)
		}
		cmd.Printf("Delete document %s and all its chunks? [y/N]: ", docID)
		answer, _ := bufio.NewReader(confirmInput).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := documentService.Delete(commandContext(cmd), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", docID)
	return nil
}
