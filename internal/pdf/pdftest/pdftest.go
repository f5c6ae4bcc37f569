// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
)

// lineHeight is the vertical advance per line, in points.
const lineHeight = 16

// Build renders a single-page Letter PDF that draws each line with
// Helvetica. A nil slice yields a blank page.
func Build(lines []string) []byte {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(72, 72, 72)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, line := range lines {
		doc.Cell(0, lineHeight, tr(line))
		doc.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		panic("pdftest: render fixture: " + err.Error())
	}
	return buf.Bytes()
}

// WriteFile builds a PDF from lines into dir/name and returns its path.
func WriteFile(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(lines), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
