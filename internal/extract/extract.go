package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	// Extract returns the text content of the given document bytes.
	Extract(ctx context.Context, content []byte) (string, error)
}

// PDF extracts text from PDF documents page by page.
type PDF struct{}

// NewPDF returns a PDF text extractor.
func NewPDF() *PDF {
	return &PDF{}
}

var _ TextExtractor = (*PDF)(nil)

// Extract parses content as a PDF and concatenates the plain text of every page.
// Malformed documents produce an error rather than a panic.
func (p *PDF) Extract(ctx context.Context, content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}
