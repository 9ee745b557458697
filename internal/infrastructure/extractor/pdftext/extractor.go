package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text from the leading pages of a PDF. Business
// dates and type cues sit on the first page, so reading the whole
// document is wasted work.
type Extractor struct {
	maxPages int
}

func New(maxPages int) *Extractor {
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Extractor{maxPages: maxPages}
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages > e.maxPages {
		pages = e.maxPages
	}

	var text strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A malformed page should not discard text already read.
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")
	}
	return strings.TrimSpace(text.String()), nil
}
