// Package cli provides the corpus command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose bool
	dataDir string
)

// Services bundles the driving ports used by commands.
type Services struct {
	Ingestion driving.IngestionService
	Search    driving.SearchService
	Document  driving.DocumentService
	Settings  driving.SettingsService

	// Close releases resources held by the services. May be nil.
	Close func() error
}

// ServiceFactory builds services once flags are parsed.
// dataDir is the --data-dir flag value, empty when unset.
type ServiceFactory func(dataDir string) (*Services, error)

var (
	ingestionService driving.IngestionService
	searchService    driving.SearchService
	documentService  driving.DocumentService
	settingsService  driving.SettingsService

	serviceFactory ServiceFactory
	closeServices  func() error
)

// skipServicesAnnotation marks commands that run without a corpus.
const skipServicesAnnotation = "corpus/skip-services"

var errNotConfigured = errors.New("service not configured")

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Local document corpus with full-text search",
	Long: `corpus ingests PDF, Word, HTML, Markdown and plain text files into a
local SQLite database, splits them into overlapping chunks and makes them
searchable.

Chunks can be read back by offset range or with their neighbours for
context, and the corpus can be served to assistants over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding corpus.db, or :memory: (overrides corpus.data_dir)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects ready-made services, bypassing any factory.
func SetServices(s *Services) {
	if s == nil {
		ingestionService, searchService, documentService, settingsService = nil, nil, nil, nil
		closeServices = nil
		return
	}
	ingestionService = s.Ingestion
	searchService = s.Search
	documentService = s.Document
	settingsService = s.Settings
	closeServices = s.Close
}

// Execute runs the root command. The factory is invoked lazily before the
// first command that needs services, and the services are closed on return.
func Execute(ctx context.Context, factory ServiceFactory) error {
	serviceFactory = factory
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardownRun(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing corpus: %w", closeErr)
	}
	return err
}

func setupRun(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	configureLogging()

	if cmd.Annotations[skipServicesAnnotation] == "true" {
		return nil
	}
	if serviceFactory == nil || searchService != nil {
		return nil
	}

	services, err := serviceFactory(dataDir)
	if err != nil {
		return fmt.Errorf("initialising corpus: %w", err)
	}
	SetServices(services)
	return nil
}

// logLevelEnv sets the log threshold when --verbose is not given.
const logLevelEnv = "CORPUS_LOG_LEVEL"

func configureLogging() {
	if verbose {
		logger.SetVerbose(true)
		return
	}
	logger.SetVerbose(false)
	if name := os.Getenv(logLevelEnv); name != "" {
		level, err := logger.ParseLevel(name)
		if err != nil {
			logger.Warn("%s: %v", logLevelEnv, err)
		}
		logger.SetLevel(level)
	}
}

func teardownRun() error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireService(name string, configured bool) error {
	if !configured {
		return fmt.Errorf("%s %w", name, errNotConfigured)
	}
	return nil
}
