// Package cli provides the command-line interface for pdfrag.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/embedding"
	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/pdfrag-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfrag-cli/internal/connectors/httpfetch"
	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag-cli/internal/core/services"
	"github.com/custodia-labs/pdfrag-cli/internal/logger"
	pdfnorm "github.com/custodia-labs/pdfrag-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/pdfrag-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services wired during PersistentPreRunE. Tests may substitute these.
var (
	configStore      driven.ConfigStore
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	settings         configfile.Settings

	// closers releases adapter resources after a command finishes.
	closers []func() error

	// wired records that the adapter stack has been initialised. Tests
	// assign mock services and set this to bypass wiring.
	wired bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfrag",
	Short: "Ingest PDFs and query them with semantic search",
	Long: `pdfrag ingests PDF documents from URLs and answers questions
against them. Documents are parsed page by page, split into overlapping
chunks, embedded, and stored for cosine-similarity retrieval.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		// Commands that need no backend skip service wiring.
		for c := cmd; c != nil; c = c.Parent() {
			switch c.Name() {
			case "version", "help", "completion", "config":
				return nil
			}
		}
		return initServices()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pdfrag)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices builds the adapter stack from configuration and wires the
// core services. Environment variables may come from a .env file in the
// working directory.
func initServices() error {
	if wired {
		return nil
	}

	_ = godotenv.Load()

	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = store
	settings = configfile.ResolveSettings(store)

	docStore, err := newDocumentStore(settings)
	if err != nil {
		return err
	}
	closers = append(closers, docStore.Close)

	embedder, err := newEmbedder(settings)
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)

	fetcher := httpfetch.New(httpfetch.Config{Timeout: 60 * time.Second})
	normaliser := pdfnorm.New()

	splitters := func(chunkSize, overlap int) (driven.Splitter, error) {
		return chunker.FromWindow(chunkSize, overlap)
	}

	ingestService = services.NewIngestor(fetcher, normaliser, embedder, docStore, splitters,
		domain.IngestOptions{
			ChunkSize: settings.Chunking.Size,
			Overlap:   settings.Chunking.Overlap,
		})
	retrievalService = services.NewRetriever(embedder, docStore,
		domain.RetrieveOptions{
			TopK:          settings.Retrieval.TopK,
			MinSimilarity: settings.Retrieval.MinSimilarity,
		})

	wired = true
	return nil
}

// newDocumentStore selects the storage backend from settings.
func newDocumentStore(s configfile.Settings) (driven.DocumentStore, error) {
	switch s.Storage.Driver {
	case configfile.DriverSQLite:
		store, err := sqlite.NewStore(s.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil

	case configfile.DriverPostgres:
		if s.Storage.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres driver selected but no database URL configured (set storage.database_url or DATABASE_URL)")
		}
		store, err := postgres.NewStore(s.Storage.DatabaseURL,
			postgres.WithOverfetch(s.Retrieval.Overfetch))
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, nil

	case configfile.DriverMemory:
		return memory.NewDocumentStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q (want %s)", s.Storage.Driver,
			strings.Join([]string{configfile.DriverSQLite, configfile.DriverPostgres, configfile.DriverMemory}, ", "))
	}
}

// newEmbedder selects the embedding provider from settings and wraps it
// in the order-preserving batcher.
func newEmbedder(s configfile.Settings) (driven.EmbeddingService, error) {
	var provider driven.EmbeddingService

	switch s.Embedding.Provider {
	case configfile.ProviderGemini:
		svc, err := gemini.NewEmbeddingService(gemini.Config{
			APIKey:     s.Embedding.APIKey,
			BaseURL:    s.Embedding.BaseURL,
			Model:      s.Embedding.Model,
			Dimensions: s.Embedding.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		provider = svc

	case configfile.ProviderOllama:
		provider = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    s.Embedding.BaseURL,
			Model:      s.Embedding.Model,
			Dimensions: s.Embedding.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want %s)", s.Embedding.Provider,
			strings.Join([]string{configfile.ProviderGemini, configfile.ProviderOllama}, ", "))
	}

	var opts []embedding.BatcherOption
	if s.Embedding.BatchSize > 0 {
		opts = append(opts, embedding.WithBatchSize(s.Embedding.BatchSize))
	}
	return embedding.NewBatcher(provider, opts...), nil
}

// closeServices releases wired adapter resources.
func closeServices() error {
	var firstErr error
	for _, fn := range closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	closers = nil
	return firstErr
}
