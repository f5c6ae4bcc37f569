package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDocument   ErrorType = "document"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeCache      ErrorType = "cache"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
)

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrInvalidDocument means the bytes are not a readable document.
	ErrInvalidDocument = errors.New("invalid or corrupted document")
	// ErrEmptyDocument means the document opened but produced no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrNoQuestions means extraction ran but accepted zero questions.
	ErrNoQuestions = errors.New("no valid questions found")
	// ErrNotFound means a stored extraction does not exist.
	ErrNotFound = errors.New("extraction not found")
	// ErrUnsupportedFileType means the upload does not carry an accepted extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge means the upload exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether any error in err's chain is a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	if de.Type == errType {
		return true
	}
	return IsType(de.Err, errType)
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func DocumentError(message string, err error) *DomainError {
	return NewError(ErrorTypeDocument, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func StorageError(message string, err error) *DomainError {
	return NewError(ErrorTypeStorage, message, err)
}

func CacheError(message string, err error) *DomainError {
	return NewError(ErrorTypeCache, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}
