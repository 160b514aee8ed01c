package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// changeWatcher emits file changes until its context ends.
type changeWatcher interface {
	Watch(ctx context.Context) (<-chan domain.FileChange, error)
	Close() error
}

// newWatcher creates the watcher used by the watch command.
var newWatcher = func(dir string, recursive bool) changeWatcher {
	return filesystem.NewWatcher(dir, filesystem.WithRecursive(recursive))
}

var watchRecursive bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep the corpus in step with a directory",
	Long: `Watches a directory and re-ingests supported files when they are
created or modified. Deleted files are removed from the corpus.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "also watch subdirectories")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireService("ingestion service", ingestionService != nil); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := newWatcher(args[0], watchRecursive)
	defer w.Close()

	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for change := range changes {
		applyChange(ctx, cmd, change)
	}
	return nil
}

func applyChange(ctx context.Context, cmd *cobra.Command, change domain.FileChange) {
	result, err := ingestionService.ApplyChange(ctx, change)
	if err != nil {
		logger.Error("%s %s: %v", change.Type, change.Path, err)
		return
	}

	if result == nil {
		cmd.Printf("  - removed %s\n", change.Path)
		return
	}
	switch result.Status {
	case domain.IngestSuccess:
		cmd.Printf("  ✓ %s %s: %d chunks\n", change.Type, change.Path, result.Chunks)
	default:
		cmd.Printf("  ✗ %s %s: %s\n", change.Type, change.Path, result.Reason)
	}
}
