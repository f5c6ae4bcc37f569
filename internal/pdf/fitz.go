// Package pdf reads PDF documents with MuPDF (via go-fitz) and validates uploads.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/observability"
)

// FitzSource implements domain.TextSource using go-fitz
type FitzSource struct {
	logger *observability.Logger
}

// NewFitzSource creates a text source. A nil logger discards output.
func NewFitzSource(logger *observability.Logger) *FitzSource {
	if logger == nil {
		logger = observability.Nop()
	}
	return &FitzSource{logger: logger.WithComponent("pdf")}
}

// Validate reports whether data is a PDF that MuPDF can open with at least one page.
func (s *FitzSource) Validate(data []byte) bool {
	if !HasSignature(data) {
		return false
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		s.logger.Debug().Err(err).Msg("PDF failed to open")
		return false
	}
	defer doc.Close()

	return doc.NumPage() > 0
}

// ExtractText concatenates the text of every page, each followed by a newline.
func (s *FitzSource) ExtractText(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", domain.DocumentError("failed to open PDF", fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err))
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	s.logger.Info().Int("pages", pageCount).Msg("Extracting PDF text")

	var b strings.Builder
	for page := 0; page < pageCount; page++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		text, err := doc.Text(page)
		if err != nil {
			return "", domain.DocumentError(fmt.Sprintf("failed to extract text from page %d", page+1), err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", domain.DocumentError("no text found in PDF", domain.ErrEmptyDocument)
	}

	s.logger.Debug().Int("pages", pageCount).Int("chars", len(text)).Msg("PDF text extracted")
	return text, nil
}
