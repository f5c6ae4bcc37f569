package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/observability"
)

// UploadValidator checks document metadata before any parsing happens.
type UploadValidator interface {
	ValidateFilename(name string) error
	ValidateSize(size int64) error
}

// Service orchestrates the document extraction process
type Service struct {
	source    domain.TextSource
	extractor *Extractor
	validator UploadValidator
	store     domain.ExtractionStore
	cache     domain.ExtractionCache
	logger    *observability.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithValidator checks name and size before extraction.
func WithValidator(v UploadValidator) Option {
	return func(s *Service) { s.validator = v }
}

// WithStore persists every successful extraction.
func WithStore(store domain.ExtractionStore) Option {
	return func(s *Service) { s.store = store }
}

// WithCache reuses results for documents already seen.
func WithCache(cache domain.ExtractionCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithLogger sets the service logger.
func WithLogger(logger *observability.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new extraction service
func NewService(source domain.TextSource, extractor *Extractor, opts ...Option) *Service {
	s := &Service{
		source:    source,
		extractor: extractor,
		logger:    observability.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("extract")
	return s
}

// Process handles the complete extraction workflow for one document.
func (s *Service) Process(ctx context.Context, doc domain.Document, eventCh chan<- domain.StreamEvent) (*domain.Extraction, error) {
	log := s.logger.WithContext(ctx)

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Starting extraction of %s", doc.Name),
		Timestamp: time.Now(),
	})

	if s.validator != nil {
		if err := s.validator.ValidateFilename(doc.Name); err != nil {
			s.emitError(eventCh, err)
			return nil, err
		}
		if err := s.validator.ValidateSize(int64(len(doc.Data))); err != nil {
			s.emitError(eventCh, err)
			return nil, err
		}
	}

	sum := checksum(doc.Data)

	if cached := s.serveCached(ctx, doc.Name, sum, eventCh); cached != nil {
		return cached, nil
	}

	if !s.source.Validate(doc.Data) {
		err := domain.DocumentError("document failed validation", domain.ErrInvalidDocument)
		s.emitError(eventCh, err)
		return nil, err
	}

	log.Info().Str("filename", doc.Name).Int("bytes", len(doc.Data)).Msg("Extracting document text")
	text, err := s.source.ExtractText(ctx, doc.Data)
	if err != nil {
		var de *domain.DomainError
		if !errors.As(err, &de) {
			err = domain.DocumentError("text extraction failed", err)
		}
		s.emitError(eventCh, err)
		return nil, err
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventTextExtracted,
		Payload:   len(text),
		Timestamp: time.Now(),
	})

	return s.finish(ctx, doc.Name, sum, text, eventCh)
}

// ProcessText runs extraction on text that was already pulled out of a document.
func (s *Service) ProcessText(ctx context.Context, name, text string, eventCh chan<- domain.StreamEvent) (*domain.Extraction, error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Starting extraction of %s", name),
		Timestamp: time.Now(),
	})
	sum := checksum([]byte(text))
	if cached := s.serveCached(ctx, name, sum, eventCh); cached != nil {
		return cached, nil
	}
	return s.finish(ctx, name, sum, text, eventCh)
}

// serveCached returns the cached extraction for sum and emits its events,
// or returns nil on a miss.
func (s *Service) serveCached(ctx context.Context, name, sum string, eventCh chan<- domain.StreamEvent) *domain.Extraction {
	cached := s.lookup(ctx, sum)
	if cached == nil {
		return nil
	}

	s.logger.WithContext(ctx).Info().
		Str("filename", name).
		Str("sha256", sum).
		Int("questions", cached.Total()).
		Msg("Serving cached extraction")
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventCacheHit,
		Payload:   sum,
		Timestamp: time.Now(),
	})
	s.emitComplete(eventCh, cached)
	return cached
}

func (s *Service) finish(ctx context.Context, name, sum, text string, eventCh chan<- domain.StreamEvent) (*domain.Extraction, error) {
	log := s.logger.WithContext(ctx)
	startTime := time.Now()

	result := s.extractor.Extract(ctx, text)
	for _, rej := range result.Rejections {
		s.emitEvent(eventCh, domain.StreamEvent{
			Type:       domain.EventBlockRejected,
			BlockIndex: rej.BlockIndex,
			Payload:    string(rej.Reason),
			Timestamp:  time.Now(),
		})
	}

	if err := ctx.Err(); err != nil {
		s.emitError(eventCh, err)
		return nil, err
	}

	if result.Total() == 0 {
		err := domain.ExtractionError(
			fmt.Sprintf("%d blocks examined, none accepted", result.Blocks),
			domain.ErrNoQuestions,
		)
		s.emitError(eventCh, err)
		return nil, err
	}

	extraction := &domain.Extraction{
		Filename:  name,
		SHA256:    sum,
		Questions: result.Questions,
		Rejected:  len(result.Rejections),
		CreatedAt: time.Now().UTC(),
	}

	if s.store != nil {
		extraction.ID = uuid.New()
		if err := s.store.Save(ctx, extraction); err != nil {
			var de *domain.DomainError
			if !errors.As(err, &de) {
				err = domain.StorageError("failed to save extraction", err)
			}
			s.emitError(eventCh, err)
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, extraction); err != nil {
			log.Warn().Err(err).Str("sha256", sum).Msg("Failed to cache extraction")
		}
	}

	log.Info().
		Str("filename", name).
		Int("questions", extraction.Total()).
		Int("rejected", extraction.Rejected).
		Dur("duration", time.Since(startTime)).
		Msg("Extraction complete")

	s.emitComplete(eventCh, extraction)
	return extraction, nil
}

// lookup returns a cached extraction or nil. Cache failures never fail the request.
func (s *Service) lookup(ctx context.Context, sum string) *domain.Extraction {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, sum)
	if err != nil {
		s.logger.WithContext(ctx).Warn().Err(err).Str("sha256", sum).Msg("Cache lookup failed")
		return nil
	}
	return cached
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func (s *Service) emitComplete(eventCh chan<- domain.StreamEvent, e *domain.Extraction) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventComplete,
		Payload:   fmt.Sprintf("Extraction complete: %d questions, %d blocks rejected", e.Total(), e.Rejected),
		Timestamp: time.Now(),
	})
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("event", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}
}

// emitError emits an error event
func (s *Service) emitError(eventCh chan<- domain.StreamEvent, err error) {
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventError,
		Payload:   err.Error(),
		Timestamp: time.Now(),
	})
}
