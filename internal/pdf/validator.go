package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spherical/mcq-extractor/internal/domain"
)

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes int64 = 50 * 1024 * 1024

var pdfMagic = []byte("%PDF-")

// Validator provides input validation for PDF uploads and files
type Validator struct {
	maxBytes   int64
	extensions []string
}

// NewValidator creates a validator. Zero or empty arguments fall back to
// 50 MB and ".pdf".
func NewValidator(maxBytes int64, extensions []string) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(extensions) == 0 {
		extensions = []string{".pdf"}
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &Validator{maxBytes: maxBytes, extensions: normalized}
}

// MaxBytes returns the configured size limit.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// ValidateFilename checks that the name carries an accepted extension
func (v *Validator) ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ValidationError("filename cannot be empty", domain.ErrUnsupportedFileType)
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range v.extensions {
		if ext == allowed {
			return nil
		}
	}
	return domain.ValidationError(fmt.Sprintf("file is not a PDF (has extension %q)", ext), domain.ErrUnsupportedFileType)
}

// ValidateSize checks the document size against the limit
func (v *Validator) ValidateSize(size int64) error {
	if size > v.maxBytes {
		return domain.ValidationError(
			fmt.Sprintf("file is %d bytes, limit is %d", size, v.maxBytes),
			domain.ErrFileTooLarge,
		)
	}
	if size <= 0 {
		return domain.DocumentError("file is empty", domain.ErrEmptyDocument)
	}
	return nil
}

// ValidatePath validates that a file path is valid and points to a PDF
func (v *Validator) ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return domain.ValidationError("file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ValidationError(fmt.Sprintf("file does not exist: %s", path), err)
		}
		return domain.ValidationError(fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return domain.ValidationError(fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	if err := v.ValidateFilename(path); err != nil {
		return err
	}
	if err := v.ValidateSize(info.Size()); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.ValidationError(fmt.Sprintf("cannot open file: %s", path), err)
	}
	file.Close()

	return nil
}

// HasSignature reports whether data starts with the PDF header.
func HasSignature(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}
