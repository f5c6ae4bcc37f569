package domain

import (
	"context"

	"github.com/google/uuid"
)

// TextSource turns raw document bytes into normalized plain text
type TextSource interface {
	// Validate is a cheap check that the bytes are a readable document
	Validate(data []byte) bool

	// ExtractText returns the full text of the document, or ErrInvalidDocument
	// / ErrEmptyDocument wrapped in a DomainError
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ExtractionStore persists extraction results
type ExtractionStore interface {
	Save(ctx context.Context, e *Extraction) error
	Get(ctx context.Context, id uuid.UUID) (*Extraction, error)
	List(ctx context.Context, limit int) ([]ExtractionSummary, error)
}

// ExtractionCache caches extraction results keyed by document checksum.
// Get returns (nil, nil) on a miss.
type ExtractionCache interface {
	Get(ctx context.Context, sha256 string) (*Extraction, error)
	Set(ctx context.Context, e *Extraction) error
}
