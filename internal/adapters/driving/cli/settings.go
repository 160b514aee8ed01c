package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change chunking, search and ingestion settings.

Settings are stored in config.toml under $CORPUS_HOME (default ~/.corpus).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Parses, validates and stores a single setting.

Run "corpus settings show" to list the available keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings service", settingsService != nil); err != nil {
		return err
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	dir := s.Corpus.DataDir
	if dir == "" {
		dir = "(default)"
	}

	cmd.Println("Corpus")
	cmd.Printf("  corpus.data_dir            %s\n", dir)
	cmd.Println()
	cmd.Println("Chunker")
	cmd.Printf("  chunker.chunk_size         %d\n", s.Chunker.ChunkSize)
	cmd.Printf("  chunker.overlap_size       %d\n", s.Chunker.OverlapSize)
	cmd.Printf("  chunker.respect_sentences  %t\n", s.Chunker.RespectSentences)
	cmd.Printf("  chunker.min_chunk_size     %d\n", s.Chunker.MinChunkSize)
	cmd.Printf("  chunker.merge_small        %t\n", s.Chunker.MergeSmall)
	cmd.Println()
	cmd.Println("Search")
	cmd.Printf("  search.default_limit       %d\n", s.Search.DefaultLimit)
	cmd.Println()
	cmd.Println("Ingest")
	cmd.Printf("  ingest.workers             %d\n", s.Ingest.Workers)
	cmd.Printf("  ingest.pattern             %s\n", s.Ingest.Pattern)
	cmd.Printf("  ingest.recursive           %t\n", s.Ingest.Recursive)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("\n⚠ %v\n", err)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireService("settings service", settingsService != nil); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("✓ %s = %s\n", key, value)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if err := requireService("settings service", settingsService != nil); err != nil {
		return err
	}

	key := args[0]
	if err := settingsService.Reset(key); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}
	cmd.Printf("✓ %s reset to default\n", key)
	return nil
}
