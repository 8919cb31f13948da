// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfrag-cli/internal/core/domain"
	"github.com/custodia-labs/pdfrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/pdfrag-cli/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser decodes PDF bytes into ordered pages of extracted text.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise extracts the text of every page in physical order.
// Page numbers start at 1. Pages whose text cannot be extracted are
// returned with empty text so chunking skips them without disturbing
// the numbering of later pages.
func (n *Normaliser) Normalise(ctx context.Context, data []byte) (pages []domain.Page, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrParse)
	}

	// The pdf library panics on some malformed inputs; report those as
	// parse failures instead of crashing the pipeline.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", domain.ErrParse, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	numPages := reader.NumPage()
	logger.Debug("PDF opened: %d pages", numPages)

	pages = make([]domain.Page, 0, numPages)
	for p := 1; p <= numPages; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(p)
		text := ""
		if !page.V.IsNull() {
			extracted, err := page.GetPlainText(nil)
			if err != nil {
				logger.Warn("Page %d text extraction failed: %v", p, err)
			} else {
				text = strings.TrimSpace(extracted)
			}
		}

		pages = append(pages, domain.Page{
			Number: p,
			Text:   text,
		})
	}

	return pages, nil
}
