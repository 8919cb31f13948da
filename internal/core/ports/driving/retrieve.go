package driving

import (
	"context"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// RetrievalService answers questions with grounding context.
type RetrievalService interface {
	// Retrieve embeds the question and returns the most similar stored
	// chunks, ordered by similarity descending. The answer-generation
	// layer consumes this list to build its grounding prompt.
	Retrieve(ctx context.Context, question string, opts domain.RetrieveOptions) ([]domain.RetrievedContext, error)
}
