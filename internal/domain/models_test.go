package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestLetterForIndex(t *testing.T) {
	tests := []struct {
		index  int
		want   string
		wantOK bool
	}{
		{0, "A", true},
		{1, "B", true},
		{2, "C", true},
		{3, "D", true},
		{4, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		got, ok := LetterForIndex(tt.index)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LetterForIndex(%d) = (%q, %v), want (%q, %v)", tt.index, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIndexForLetter(t *testing.T) {
	tests := []struct {
		letter string
		want   int
		wantOK bool
	}{
		{"A", 0, true},
		{"d", 3, true},
		{" b ", 1, true},
		{"E", -1, false},
		{"", -1, false},
	}

	for _, tt := range tests {
		got, ok := IndexForLetter(tt.letter)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("IndexForLetter(%q) = (%d, %v), want (%d, %v)", tt.letter, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewQuestionRecord_PadsAndTruncates(t *testing.T) {
	q := NewQuestionRecord("Q", []string{"x", "y"}, "B")
	if q.OptionC != "" || q.OptionD != "" {
		t.Errorf("Expected empty padding slots, got %q and %q", q.OptionC, q.OptionD)
	}

	q = NewQuestionRecord("Q", []string{"1", "2", "3", "4", "5"}, "A")
	if q.OptionD != "4" {
		t.Errorf("Expected fourth option to be kept, got %q", q.OptionD)
	}
	for _, opt := range q.Options() {
		if opt == "5" {
			t.Error("Fifth option should be dropped")
		}
	}
}

func TestQuestionRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  QuestionRecord
		wantErr bool
	}{
		{
			name:   "valid two options",
			record: NewQuestionRecord("Q", []string{"a", "b"}, "A"),
		},
		{
			name:    "one option",
			record:  NewQuestionRecord("Q", []string{"a"}, "A"),
			wantErr: true,
		},
		{
			name:    "answer points at empty slot",
			record:  NewQuestionRecord("Q", []string{"a", "b"}, "C"),
			wantErr: true,
		},
		{
			name:    "lowercase answer",
			record:  NewQuestionRecord("Q", []string{"a", "b"}, "a"),
			wantErr: true,
		},
		{
			name:    "missing answer",
			record:  NewQuestionRecord("Q", []string{"a", "b"}, ""),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsType(err, ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestQuestionRecord_CorrectOption(t *testing.T) {
	q := NewQuestionRecord("Q", []string{"London", "Paris"}, "B")
	if got := q.CorrectOption(); got != "Paris" {
		t.Errorf("CorrectOption() = %q, want %q", got, "Paris")
	}
}

func TestExtraction_Response(t *testing.T) {
	e := &Extraction{}
	resp := e.Response()
	if resp.Questions == nil {
		t.Error("Response questions should be an empty slice, not nil")
	}
	if resp.ExtractionID != "" {
		t.Errorf("Expected no extraction id, got %q", resp.ExtractionID)
	}

	e.ID = uuid.New()
	e.Questions = []QuestionRecord{NewQuestionRecord("Q", []string{"a", "b"}, "A")}
	resp = e.Response()
	if resp.TotalQuestions != 1 {
		t.Errorf("TotalQuestions = %d, want 1", resp.TotalQuestions)
	}
	if resp.ExtractionID != e.ID.String() {
		t.Errorf("ExtractionID = %q, want %q", resp.ExtractionID, e.ID.String())
	}
}

func TestDomainError(t *testing.T) {
	err := DocumentError("open failed", ErrInvalidDocument)

	if !errors.Is(err, ErrInvalidDocument) {
		t.Error("Expected error chain to contain ErrInvalidDocument")
	}
	if !IsType(err, ErrorTypeDocument) {
		t.Error("Expected document error type")
	}
	if IsType(err, ErrorTypeStorage) {
		t.Error("Did not expect storage error type")
	}

	nested := StorageError("save failed", ValidationError("bad record", nil))
	if !IsType(nested, ErrorTypeValidation) {
		t.Error("Expected nested validation error type to be found")
	}

	want := "[document] open failed: invalid or corrupted document"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
