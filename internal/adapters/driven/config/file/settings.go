package file

import (
	"os"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
)

// Storage driver names accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Embedding provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Settings is the typed runtime configuration resolved from a config
// store, with defaults filled in and environment overrides applied.
type Settings struct {
	Storage   StorageSettings
	Embedding EmbeddingSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
}

// StorageSettings selects and configures the document store backend.
type StorageSettings struct {
	// Driver is one of "sqlite", "postgres" or "memory".
	Driver string
	// DataDir is the sqlite data directory. Empty means the default
	// location under the user's home directory.
	DataDir string
	// DatabaseURL is the postgres connection string. The DATABASE_URL
	// environment variable takes precedence over the config file.
	DatabaseURL string
}

// EmbeddingSettings selects and configures the embedding provider.
type EmbeddingSettings struct {
	// Provider is one of "gemini" or "ollama".
	Provider string
	// Model and Dimensions default per provider when left empty.
	Model      string
	Dimensions int
	// BaseURL overrides the provider endpoint.
	BaseURL string
	// APIKey authenticates against hosted providers. The GEMINI_API_KEY
	// environment variable takes precedence over the config file.
	APIKey string
	// BatchSize caps texts per provider request.
	BatchSize int
}

// ChunkingSettings configures the sliding-window splitter.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// RetrievalSettings configures similarity search defaults.
type RetrievalSettings struct {
	TopK          int
	MinSimilarity float64
	Overfetch     int
}

// ResolveSettings reads the known configuration keys from store, applies
// defaults for anything unset and layers environment overrides on top.
func ResolveSettings(store driven.ConfigStore) Settings {
	s := Settings{
		Storage: StorageSettings{
			Driver:      store.GetString("storage.driver"),
			DataDir:     store.GetString("storage.data_dir"),
			DatabaseURL: store.GetString("storage.database_url"),
		},
		Embedding: EmbeddingSettings{
			Provider:   store.GetString("embedding.provider"),
			Model:      store.GetString("embedding.model"),
			Dimensions: store.GetInt("embedding.dimensions"),
			BaseURL:    store.GetString("embedding.base_url"),
			APIKey:     store.GetString("embedding.api_key"),
			BatchSize:  store.GetInt("embedding.batch_size"),
		},
		Chunking: ChunkingSettings{
			Size:    store.GetInt("chunking.size"),
			Overlap: store.GetInt("chunking.overlap"),
		},
		Retrieval: RetrievalSettings{
			TopK:          store.GetInt("retrieval.top_k"),
			MinSimilarity: store.GetFloat("retrieval.min_similarity"),
			Overfetch:     store.GetInt("retrieval.overfetch"),
		},
	}

	if s.Storage.Driver == "" {
		s.Storage.Driver = DriverSQLite
	}
	if s.Embedding.Provider == "" {
		s.Embedding.Provider = ProviderGemini
	}
	if s.Chunking.Size == 0 {
		s.Chunking.Size = domain.DefaultChunkSize
	}
	if s.Chunking.Overlap == 0 {
		s.Chunking.Overlap = domain.DefaultOverlap
	}
	if s.Retrieval.TopK == 0 {
		s.Retrieval.TopK = domain.DefaultTopK
	}
	if s.Retrieval.Overfetch == 0 {
		s.Retrieval.Overfetch = domain.DefaultOverfetch
	}

	// Environment overrides win over the config file.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		s.Storage.DatabaseURL = url
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		s.Embedding.APIKey = key
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" && s.Embedding.Provider == ProviderOllama {
		s.Embedding.BaseURL = base
	}

	return s
}
