package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// snippetLength is the number of characters of chunk text shown per result.
const snippetLength = 200

var (
	searchLimit int
	searchJSON  bool

	contextSize int
	contextJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Runs a BM25 full-text search over all stored chunks.

Results are ordered by relevance. Use the chunk ID with the context
command to read the surrounding text.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var contextCmd = &cobra.Command{
	Use:   "context [chunk-id]",
	Short: "Show a chunk with its neighbouring chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runContext,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")

	contextCmd.Flags().IntVarP(&contextSize, "context", "c", 1, "neighbouring chunks on each side")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output context as JSON")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(contextCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireService("search service", searchService != nil); err != nil {
		return err
	}

	results, err := searchService.Search(commandContext(cmd), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.DocumentTitle
		if title == "" {
			title = r.DocumentID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Score)
		cmd.Printf("      Chunk %d, bytes %d-%d", r.ChunkID, r.StartOffset, r.EndOffset)
		if r.PageNumber > 0 {
			cmd.Printf(", page %d", r.PageNumber)
		}
		cmd.Println()
		cmd.Printf("      %s\n", snippet(r.Text, snippetLength))
		cmd.Println()
	}
	return nil
}

func runContext(cmd *cobra.Command, args []string) error {
	if err := requireService("search service", searchService != nil); err != nil {
		return err
	}

	chunkID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: chunk ID must be an integer, got %q", domain.ErrInvalidInput, args[0])
	}

	cc, err := searchService.Context(commandContext(cmd), chunkID, contextSize)
	if err != nil {
		return fmt.Errorf("context failed: %w", err)
	}

	if contextJSON {
		return outputJSON(cmd, cc)
	}

	cmd.Printf("Chunk %d: %d chunks, bytes %d-%d", chunkID, len(cc.Chunks), cc.StartOffset, cc.EndOffset)
	if len(cc.Pages) > 0 {
		cmd.Printf(", pages %s", joinInts(cc.Pages))
	}
	cmd.Println()
	cmd.Println()
	cmd.Println(cc.Text)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// snippet collapses whitespace and truncates text to at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
