// Package pdfpage adapts the ledongthuc/pdf library to the PageSource
// port. The pipeline never touches pdf.Reader or pdf.Page directly, so
// the library can be swapped without changing classification logic.
package pdfpage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

// Ensure the adapter implements the ports.
var (
	_ driven.PageSource       = (*Source)(nil)
	_ driven.PageSourceOpener = (*Opener)(nil)
)

// Opener opens PageSources from raw PDF bytes.
type Opener struct{}

// NewOpener creates a new PDF opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open parses the document. Malformed documents fail with a
// domain.ErrParse wrap; the library's internal panics on corrupt input
// are converted to the same error.
func (o *Opener) Open(content []byte) (src driven.PageSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = fmt.Errorf("%w: reading pdf: %v", domain.ErrParse, r)
		}
	}()

	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty pdf content", domain.ErrParse)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf: %v", domain.ErrParse, err)
	}

	return &Source{reader: reader}, nil
}

// Source is one open PDF document.
type Source struct {
	reader *pdf.Reader
}

// PageCount returns the number of pages in the document.
func (s *Source) PageCount() int {
	return s.reader.NumPage()
}

// PageText extracts the plain text of the 1-based page number.
func (s *Source) PageText(ctx context.Context, number int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: page %d: %v", domain.ErrParse, number, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if number < 1 || number > s.reader.NumPage() {
		return "", fmt.Errorf("%w: page %d out of range", domain.ErrInvalidInput, number)
	}

	page := s.reader.Page(number)
	if page.V.IsNull() {
		return "", fmt.Errorf("%w: page %d has no content object", domain.ErrParse, number)
	}

	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", domain.ErrParse, number, err)
	}
	return text, nil
}

// Close releases the underlying reader. The reader holds no file handle
// (it reads from the in-memory byte slice), so this never fails.
func (s *Source) Close() error {
	return nil
}
