package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/observability"
)

// multipartOverhead is the slack allowed on top of the file limit for
// multipart boundaries and headers.
const multipartOverhead = 1 << 20

// Processor runs the extraction pipeline on an uploaded document.
type Processor interface {
	Process(ctx context.Context, doc domain.Document, eventCh chan<- domain.StreamEvent) (*domain.Extraction, error)
}

// ExtractionHandler handles question extraction and history requests.
type ExtractionHandler struct {
	logger    *observability.Logger
	processor Processor
	store     domain.ExtractionStore
	maxBytes  int64
}

// NewExtractionHandler creates a new extraction handler. store may be nil,
// in which case history endpoints answer 404.
func NewExtractionHandler(logger *observability.Logger, processor Processor, store domain.ExtractionStore, maxBytes int64) *ExtractionHandler {
	return &ExtractionHandler{
		logger:    logger,
		processor: processor,
		store:     store,
		maxBytes:  maxBytes,
	}
}

// Extract handles POST /api/extract-questions.
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	filename, data, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.writeTooLarge(w)
		case errors.Is(err, errNoFilePart):
			log.Warn().Err(err).Msg("Upload without a file field")
			writeError(w, http.StatusBadRequest, "invalid_file_type", "Invalid file type. Only PDF files are accepted.")
		default:
			writeError(w, http.StatusBadRequest, "read_failed", fmt.Sprintf("Failed to read upload: %v", err))
		}
		return
	}

	log.Info().
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("Processing upload")

	// Oversized uploads still reach the processor, which rejects the
	// filename before it looks at the size.
	extraction, err := h.processor.Process(ctx, domain.Document{Name: filename, Data: data}, nil)
	if err != nil {
		h.writeProcessError(w, r, err)
		return
	}
	if int64(len(data)) > h.maxBytes {
		h.writeTooLarge(w)
		return
	}

	writeJSON(w, http.StatusOK, extraction.Response())
}

var errNoFilePart = errors.New("no file part in upload")

// readUpload streams the multipart body to the "file" part and reads at
// most one byte past the limit, so an oversized part is detectable
// without buffering all of it.
func (h *ExtractionHandler) readUpload(r *http.Request) (string, []byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errNoFilePart, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, errNoFilePart
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxBytes+1))
		part.Close()
		if err != nil {
			return "", nil, err
		}
		return part.FileName(), data, nil
	}
}

// List handles GET /api/extractions.
func (h *ExtractionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeStorageDisabled(w)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	summaries, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.writeProcessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"extractions": summaries,
		"count":       len(summaries),
	})
}

// Get handles GET /api/extractions/{id}.
func (h *ExtractionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeStorageDisabled(w)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid extraction id")
		return
	}

	extraction, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeProcessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, extraction.Response())
}

// writeProcessError maps pipeline errors onto the API's error responses.
func (h *ExtractionHandler) writeProcessError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		writeError(w, http.StatusBadRequest, "invalid_file_type", "Invalid file type. Only PDF files are accepted.")
	case errors.Is(err, domain.ErrFileTooLarge):
		h.writeTooLarge(w)
	case errors.Is(err, domain.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, "invalid_document", "Invalid or corrupted PDF file.")
	case errors.Is(err, domain.ErrEmptyDocument), domain.IsType(err, domain.ErrorTypeDocument):
		writeError(w, http.StatusBadRequest, "text_extraction_failed", "Failed to extract text from PDF. File may be corrupted or empty.")
	case errors.Is(err, domain.ErrNoQuestions):
		writeError(w, http.StatusBadRequest, "no_questions", "No valid questions found in PDF. Please check the format.")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Extraction not found.")
	default:
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Internal server error: %v", err))
	}
}

func (h *ExtractionHandler) writeTooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "file_too_large",
		fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxBytes/(1024*1024)))
}

func (h *ExtractionHandler) writeStorageDisabled(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "storage_disabled", "Extraction history is not enabled on this server.")
}
