// Package extract converts uploaded documents (PDF, DOCX, HTML, plain text)
// into the plain UTF-8 strings the grading engine consumes.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedFormat indicates the file is structurally not the format
	// its extension claims (e.g. a docx with no document part).
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptDocument indicates the file could not be decoded.
	ErrCorruptDocument = errors.New("corrupt document")
)

// Extract converts document content to text based on file type. Anything
// without a recognized extension is treated as UTF-8 plain text.
func Extract(content []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".html", ".htm":
		return extractHTML(content)
	default:
		if !utf8.Valid(content) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8 text", ErrCorruptDocument, filename)
		}
		return string(content), nil
	}
}
