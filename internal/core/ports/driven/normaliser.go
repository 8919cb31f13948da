package driven

import (
	"context"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
)

// Normaliser decodes raw document bytes into ordered pages of text.
// Page numbers start at 1 and traversal order is physical page order.
type Normaliser interface {
	// Normalise extracts the text of every page. A document that
	// cannot be decoded is reported as domain.ErrParse. Pages with no
	// extractable text are returned with empty Text rather than
	// omitted, so page numbering stays physical.
	Normalise(ctx context.Context, data []byte) ([]domain.Page, error)
}
