// Command corpus ingests documents into a local full-text corpus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/corpus-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/services"
	"github.com/custodia-labs/corpus-cli/internal/logger"
	"github.com/custodia-labs/corpus-cli/internal/normalisers"
	"github.com/custodia-labs/corpus-cli/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, newServices)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newServices wires the SQLite store, normalisers and chunking pipeline
// into the driving services. dataDir overrides the corpus.data_dir setting.
func newServices(dataDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	store, err := openStore(dataDir, settings.Corpus.DataDir)
	if err != nil {
		return nil, err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunker)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("building chunk pipeline: %w", err)
	}

	return &cli.Services{
		Ingestion: services.NewIngestionService(store, filesystem.New(), normalisers.NewDefaultRegistry(), pipeline),
		Search:    services.NewSearchService(store, settings.Search.DefaultLimit),
		Document:  services.NewDocumentService(store),
		Settings:  settingsService,
		Close:     store.Close,
	}, nil
}

// memoryDataDir selects a throwaway in-memory corpus instead of SQLite.
const memoryDataDir = ":memory:"

// openStore resolves the data directory (flag, then corpus.data_dir, then
// $CORPUS_HOME/data) and opens the corpus store in it.
func openStore(flagDir, settingDir string) (driven.CorpusStore, error) {
	dir := flagDir
	if dir == "" {
		dir = settingDir
	}
	if dir == memoryDataDir {
		logger.Debug("corpus: using in-memory store")
		return memory.NewCorpusStore(), nil
	}
	if dir == "" {
		home, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "data")
	}

	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("corpus: using %s", store.Path())
	return store, nil
}
