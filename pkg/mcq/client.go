// Package mcq is the public entry point for extracting multiple-choice
// questions from PDF documents and plain text.
package mcq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/extract"
	"github.com/spherical/mcq-extractor/internal/observability"
	"github.com/spherical/mcq-extractor/internal/pdf"
)

// Re-export domain types for the public API
type (
	Question    = domain.QuestionRecord
	Extraction  = domain.Extraction
	StreamEvent = domain.StreamEvent
	EventType   = domain.EventType
)

// Event type constants
const (
	EventStart         = domain.EventStart
	EventTextExtracted = domain.EventTextExtracted
	EventBlockRejected = domain.EventBlockRejected
	EventCacheHit      = domain.EventCacheHit
	EventError         = domain.EventError
	EventComplete      = domain.EventComplete
)

// Sentinel errors callers can match with errors.Is
var (
	ErrInvalidDocument     = domain.ErrInvalidDocument
	ErrEmptyDocument       = domain.ErrEmptyDocument
	ErrNoQuestions         = domain.ErrNoQuestions
	ErrUnsupportedFileType = domain.ErrUnsupportedFileType
	ErrFileTooLarge        = domain.ErrFileTooLarge
)

// Config holds configuration options for the client
type Config struct {
	Workers           int   // block parsing workers, default 1
	ParallelThreshold int   // minimum blocks before parsing in parallel
	MaxBytes          int64 // upload limit, default 50MB
}

// Client extracts questions from documents without storage or caching.
type Client struct {
	service   *extract.Service
	validator *pdf.Validator
}

// NewClient creates a client with default settings.
func NewClient() *Client {
	return NewClientWithConfig(Config{})
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(cfg Config) *Client {
	logger := observability.Nop()
	validator := pdf.NewValidator(cfg.MaxBytes, nil)
	extractor := extract.NewExtractor(extract.Config{
		Workers:           cfg.Workers,
		ParallelThreshold: cfg.ParallelThreshold,
	}, logger)

	return &Client{
		service:   extract.NewService(pdf.NewFitzSource(logger), extractor, extract.WithValidator(validator)),
		validator: validator,
	}
}

// ExtractFile extracts questions from the PDF at path.
func (c *Client) ExtractFile(ctx context.Context, path string) (*Extraction, error) {
	return c.ExtractFileWithEvents(ctx, path, nil)
}

// ExtractFileWithEvents is ExtractFile with progress events sent to eventCh.
// Sends never block; the caller owns and closes eventCh.
func (c *Client) ExtractFileWithEvents(ctx context.Context, path string, eventCh chan<- StreamEvent) (*Extraction, error) {
	if err := c.validator.ValidatePath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("read %s", path), err)
	}

	return c.service.Process(ctx, domain.Document{Name: filepath.Base(path), Data: data}, eventCh)
}

// ExtractBytes extracts questions from an in-memory PDF named name.
func (c *Client) ExtractBytes(ctx context.Context, name string, data []byte) (*Extraction, error) {
	return c.service.Process(ctx, domain.Document{Name: name, Data: data}, nil)
}

// ParseText parses already-extracted text. It never fails; malformed blocks
// are skipped.
func ParseText(text string) []Question {
	return extract.ExtractQuestions(text)
}
