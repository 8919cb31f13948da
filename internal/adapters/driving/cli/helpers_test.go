package cli

import (
	"context"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// mockIngestService returns a canned result.
type mockIngestService struct {
	result *domain.IngestResult
	err    error
	gotURL string
	gotOpt domain.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, url string, opts domain.IngestOptions) (*domain.IngestResult, error) {
	m.gotURL = url
	m.gotOpt = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockRetrievalService returns canned contexts.
type mockRetrievalService struct {
	results []domain.RetrievedContext
	err     error
	gotQ    string
	gotOpt  domain.RetrieveOptions
}

func (m *mockRetrievalService) Retrieve(_ context.Context, question string, opts domain.RetrieveOptions) ([]domain.RetrievedContext, error) {
	m.gotQ = question
	m.gotOpt = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// setupTestServices installs mock services and returns a cleanup func.
func setupTestServices() (ingest *mockIngestService, retrieval *mockRetrievalService, cleanup func()) {
	oldIngest, oldRetrieval, oldWired := ingestService, retrievalService, wired

	ingest = &mockIngestService{
		result: &domain.IngestResult{DocumentID: "doc-1", ChunkCount: 3},
	}
	retrieval = &mockRetrievalService{
		results: []domain.RetrievedContext{
			{Content: "chunk content", Page: 2, Similarity: 0.91, SourceURL: "https://example.com/doc.pdf"},
		},
	}

	ingestService = ingest
	retrievalService = retrieval
	wired = true

	cleanup = func() {
		ingestService, retrievalService, wired = oldIngest, oldRetrieval, oldWired
	}
	return ingest, retrieval, cleanup
}
