package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/extract"
	"github.com/spherical/mcq-extractor/internal/observability"
	"github.com/spherical/mcq-extractor/internal/pdf"
)

type stubSource struct {
	valid bool
	text  string
	err   error
}

func (s stubSource) Validate([]byte) bool { return s.valid }

func (s stubSource) ExtractText(context.Context, []byte) (string, error) {
	return s.text, s.err
}

type memStore struct {
	items map[uuid.UUID]*domain.Extraction
	err   error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[uuid.UUID]*domain.Extraction)}
}

func (m *memStore) Save(ctx context.Context, e *domain.Extraction) error {
	if m.err != nil {
		return m.err
	}
	m.items[e.ID] = e
	return nil
}

func (m *memStore) Get(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	if e, ok := m.items[id]; ok {
		return e, nil
	}
	return nil, domain.StorageError("extraction "+id.String(), domain.ErrNotFound)
}

func (m *memStore) List(ctx context.Context, limit int) ([]domain.ExtractionSummary, error) {
	out := []domain.ExtractionSummary{}
	for _, e := range m.items {
		out = append(out, domain.ExtractionSummary{ID: e.ID, Filename: e.Filename, TotalQuestions: e.Total()})
	}
	return out, nil
}

const quizText = "1. Capital of France?\na) Berlin\n# b) Paris\n2. broken block\n"

func newTestRouter(src domain.TextSource, store domain.ExtractionStore, maxBytes int64) http.Handler {
	opts := []extract.Option{extract.WithValidator(pdf.NewValidator(maxBytes, nil))}
	if store != nil {
		opts = append(opts, extract.WithStore(store))
	}
	svc := extract.NewService(src, extract.NewExtractor(extract.Config{Workers: 1}, nil), opts...)

	h := NewExtractionHandler(observability.Nop(), svc, store, maxBytes)
	r := chi.NewRouter()
	r.Post("/api/extract-questions", h.Extract)
	r.Get("/api/extractions", h.List)
	r.Get("/api/extractions/{id}", h.Get)
	return r
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract-questions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestExtract_Success(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(stubSource{valid: true, text: quizText}, store, pdf.DefaultMaxBytes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "file", "quiz.pdf", []byte("%PDF-1.4 body")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp domain.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalQuestions)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, domain.QuestionRecord{
		Content:       "Capital of France?",
		OptionA:       "Berlin",
		OptionB:       "Paris",
		CorrectAnswer: "B",
	}, resp.Questions[0])
	assert.NotEmpty(t, resp.ExtractionID)
	assert.Len(t, store.items, 1)
}

func TestExtract_ResponseFieldNames(t *testing.T) {
	router := newTestRouter(stubSource{valid: true, text: quizText}, nil, pdf.DefaultMaxBytes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "file", "quiz.pdf", []byte("x")))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "questions")
	assert.Contains(t, raw, "total_questions")
	assert.NotContains(t, raw, "extraction_id")

	q := raw["questions"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"content", "optionA", "optionB", "optionC", "optionD", "correctAnswer"} {
		assert.Contains(t, q, key)
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      stubSource
		field    string
		filename string
		data     []byte
		maxBytes int64
		code     string
		detail   string
	}{
		{
			name: "missing file field", src: stubSource{valid: true, text: quizText},
			code: "invalid_file_type", detail: "Invalid file type. Only PDF files are accepted.",
		},
		{
			name: "wrong extension", src: stubSource{valid: true, text: quizText},
			field: "file", filename: "notes.txt", data: []byte("x"),
			code: "invalid_file_type", detail: "Invalid file type. Only PDF files are accepted.",
		},
		{
			name: "too large", src: stubSource{valid: true, text: quizText},
			field: "file", filename: "big.pdf", data: bytes.Repeat([]byte("x"), 3*1024*1024), maxBytes: 2 * 1024 * 1024,
			code: "file_too_large", detail: "File too large. Maximum size is 2MB.",
		},
		{
			name: "oversized wrong extension", src: stubSource{valid: true, text: quizText},
			field: "file", filename: "notes.txt", data: bytes.Repeat([]byte("x"), 3*1024*1024), maxBytes: 2 * 1024 * 1024,
			code: "invalid_file_type", detail: "Invalid file type. Only PDF files are accepted.",
		},
		{
			name: "file under another field", src: stubSource{valid: true, text: quizText},
			field: "document", filename: "quiz.pdf", data: []byte("x"),
			code: "invalid_file_type", detail: "Invalid file type. Only PDF files are accepted.",
		},
		{
			name: "invalid pdf", src: stubSource{valid: false},
			field: "file", filename: "bad.pdf", data: []byte("junk"),
			code: "invalid_document", detail: "Invalid or corrupted PDF file.",
		},
		{
			name: "empty text", src: stubSource{valid: true, err: domain.DocumentError("no text", domain.ErrEmptyDocument)},
			field: "file", filename: "scan.pdf", data: []byte("x"),
			code: "text_extraction_failed", detail: "Failed to extract text from PDF. File may be corrupted or empty.",
		},
		{
			name: "no questions", src: stubSource{valid: true, text: "Just a paragraph of prose."},
			field: "file", filename: "prose.pdf", data: []byte("x"),
			code: "no_questions", detail: "No valid questions found in PDF. Please check the format.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = pdf.DefaultMaxBytes
			}
			router := newTestRouter(tt.src, nil, maxBytes)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, tt.field, tt.filename, tt.data))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.detail, resp.Detail)
		})
	}
}

func TestExtract_InternalError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	router := newTestRouter(stubSource{valid: true, text: quizText}, store, pdf.DefaultMaxBytes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "file", "quiz.pdf", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "internal_error", resp.Error)
	assert.Contains(t, resp.Detail, "Internal server error: ")
	assert.Contains(t, resp.Detail, "disk full")
}

func TestHistory(t *testing.T) {
	store := newMemStore()
	saved := &domain.Extraction{
		ID:        uuid.New(),
		Filename:  "quiz.pdf",
		Questions: []domain.QuestionRecord{domain.NewQuestionRecord("Q", []string{"a", "b"}, "A")},
		CreatedAt: time.Now(),
	}
	store.items[saved.ID] = saved
	router := newTestRouter(stubSource{}, store, pdf.DefaultMaxBytes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/extractions/"+saved.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, saved.ID.String(), resp.ExtractionID)
	assert.Equal(t, 1, resp.TotalQuestions)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/extractions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Extractions []domain.ExtractionSummary `json:"extractions"`
		Count       int                        `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "quiz.pdf", list.Extractions[0].Filename)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/extractions/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/extractions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/extractions?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory_StorageDisabled(t *testing.T) {
	router := newTestRouter(stubSource{}, nil, pdf.DefaultMaxBytes)

	for _, path := range []string{"/api/extractions", "/api/extractions/" + uuid.NewString()} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "storage_disabled", decodeError(t, rec).Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	tests := []struct {
		handler http.HandlerFunc
		want    map[string]string
	}{
		{Root, map[string]string{"message": "PDF Extract API Running"}},
		{APIRoot, map[string]string{"message": "MCQ PDF Extractor API is running", "version": "1.0.0"}},
		{Health, map[string]string{"status": "healthy", "service": "pdf-extractor"}},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		tt.handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, tt.want, got)
	}
}
