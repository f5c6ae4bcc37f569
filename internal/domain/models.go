package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OptionSlots is the fixed number of option fields on a QuestionRecord.
const OptionSlots = 4

// MinOptions is the number of populated options a question needs to be accepted.
const MinOptions = 2

var answerLetters = [OptionSlots]string{"A", "B", "C", "D"}

// LetterForIndex maps a zero-based option index to its answer letter.
// Indices outside the four slots have no letter.
func LetterForIndex(i int) (string, bool) {
	if i < 0 || i >= OptionSlots {
		return "", false
	}
	return answerLetters[i], true
}

// IndexForLetter maps an answer letter (case-insensitive) back to its slot index.
func IndexForLetter(letter string) (int, bool) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	for i, l := range answerLetters {
		if l == letter {
			return i, true
		}
	}
	return -1, false
}

// Document is an uploaded or on-disk file handed to the extraction service
type Document struct {
	Name string
	Data []byte
}

// QuestionBlock is a contiguous run of lines that starts at a numbered header.
// Index is the block's position in document order.
type QuestionBlock struct {
	Index int
	Lines []string
}

// Text joins the block's lines back into raw text.
func (b QuestionBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}

// QuestionRecord is a single accepted multiple-choice question
type QuestionRecord struct {
	Content       string `json:"content"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
}

// NewQuestionRecord builds a record from the header text, the parsed options
// and the correct letter. Options beyond the fourth are dropped and missing
// ones are left empty.
func NewQuestionRecord(content string, options []string, correct string) QuestionRecord {
	var slots [OptionSlots]string
	copy(slots[:], options)
	return QuestionRecord{
		Content:       content,
		OptionA:       slots[0],
		OptionB:       slots[1],
		OptionC:       slots[2],
		OptionD:       slots[3],
		CorrectAnswer: correct,
	}
}

// Options returns the four option slots in order.
func (q QuestionRecord) Options() [OptionSlots]string {
	return [OptionSlots]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// CorrectOption returns the text of the option the answer letter points at.
func (q QuestionRecord) CorrectOption() string {
	i, ok := IndexForLetter(q.CorrectAnswer)
	if !ok {
		return ""
	}
	return q.Options()[i]
}

// Validate checks that the record is complete: at least two populated
// options and a correct letter pointing at a populated slot.
func (q QuestionRecord) Validate() error {
	populated := 0
	for _, opt := range q.Options() {
		if opt != "" {
			populated++
		}
	}
	if populated < MinOptions {
		return ValidationError(fmt.Sprintf("question has %d options, need at least %d", populated, MinOptions), nil)
	}

	i, ok := IndexForLetter(q.CorrectAnswer)
	if !ok || q.CorrectAnswer != answerLetters[i] {
		return ValidationError(fmt.Sprintf("invalid correct answer %q", q.CorrectAnswer), nil)
	}
	if q.Options()[i] == "" {
		return ValidationError(fmt.Sprintf("correct answer %s points at an empty option", q.CorrectAnswer), nil)
	}
	return nil
}

// Extraction is the result of processing one document
type Extraction struct {
	ID        uuid.UUID        `json:"id"`
	Filename  string           `json:"filename"`
	SHA256    string           `json:"sha256"`
	Questions []QuestionRecord `json:"questions"`
	Rejected  int              `json:"rejected_blocks"`
	CreatedAt time.Time        `json:"created_at"`
}

// Total returns the number of accepted questions.
func (e *Extraction) Total() int {
	return len(e.Questions)
}

// Response converts the extraction into its API shape.
func (e *Extraction) Response() ExtractResponse {
	resp := ExtractResponse{
		Questions:      e.Questions,
		TotalQuestions: e.Total(),
	}
	if resp.Questions == nil {
		resp.Questions = []QuestionRecord{}
	}
	if e.ID != uuid.Nil {
		resp.ExtractionID = e.ID.String()
	}
	return resp
}

// ExtractionSummary is the list view of a stored extraction
type ExtractionSummary struct {
	ID             uuid.UUID `json:"id"`
	Filename       string    `json:"filename"`
	SHA256         string    `json:"sha256"`
	TotalQuestions int       `json:"total_questions"`
	Rejected       int       `json:"rejected_blocks"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExtractResponse is the response body for a successful extraction
type ExtractResponse struct {
	Questions      []QuestionRecord `json:"questions"`
	TotalQuestions int              `json:"total_questions"`
	ExtractionID   string           `json:"extraction_id,omitempty"`
}

// ErrorResponse is the response body for a failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart         EventType = "start"
	EventTextExtracted EventType = "text_extracted"
	EventBlockRejected EventType = "block_rejected"
	EventCacheHit      EventType = "cache_hit"
	EventError         EventType = "error"
	EventComplete      EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type       EventType   `json:"type"`
	BlockIndex int         `json:"block_index,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}
