package decode

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFDecoder reads the text layer of a PDF page by page. Scanned PDFs
// without a text layer decode to empty text; OCR is not attempted.
type PDFDecoder struct{}

// NewPDFDecoder creates a PDF decoder
func NewPDFDecoder() *PDFDecoder {
	return &PDFDecoder{}
}

func (d *PDFDecoder) Format() string { return "pdf" }

// Decode joins the plain text of every page, one page per paragraph
func (d *PDFDecoder) Decode(ctx context.Context, data []byte) (text string, err error) {
	if err := sniff(data, mimePDF); err != nil {
		return "", err
	}

	// The reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
