package services

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag-cli/internal/postprocessors/chunker"
)

// stubFetcher returns canned bytes per URL and records calls.
type stubFetcher struct {
	responses map[string][]byte
	err       error
	calls     int
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.responses[url]
	if !ok {
		return nil, fmt.Errorf("%w: no stub response for %s", domain.ErrFetch, url)
	}
	return data, nil
}

// stubNormaliser treats input bytes as newline-free page text separated
// by form feeds, sidestepping real PDF parsing.
type stubNormaliser struct {
	pages []domain.Page
	err   error
	calls int
}

func (n *stubNormaliser) Normalise(_ context.Context, _ []byte) ([]domain.Page, error) {
	n.calls++
	if n.err != nil {
		return nil, n.err
	}
	return n.pages, nil
}

// stubEmbedder produces deterministic vectors derived from the text so
// that identical text embeds identically and different text differs.
type stubEmbedder struct {
	dims  int
	err   error
	calls int
}

func newStubEmbedder(dims int) *stubEmbedder {
	return &stubEmbedder{dims: dims}
}

func (e *stubEmbedder) vector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	v := make([]float32, e.dims)
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed%1000)/1000 + 0.001
	}
	return v
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = e.vector(text)
	}
	return vecs, nil
}

func (e *stubEmbedder) Dimensions() int              { return e.dims }
func (e *stubEmbedder) ModelName() string            { return "stub-embedder" }
func (e *stubEmbedder) Ping(_ context.Context) error { return nil }
func (e *stubEmbedder) Close() error                 { return nil }

// badVectorEmbedder returns vectors of the wrong shape for a declared
// dimensionality.
type badVectorEmbedder struct {
	stubEmbedder
	actualDims int
}

func (e *badVectorEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, e.actualDims), nil
}

func testSplitters(chunkSize, overlap int) (driven.Splitter, error) {
	return chunker.FromWindow(chunkSize, overlap)
}
