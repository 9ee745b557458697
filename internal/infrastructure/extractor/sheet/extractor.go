package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Extractor flattens the first worksheet of a spreadsheet into plain
// text, one row per line. Bank exports and statements commonly arrive
// as .xlsx attachments.
type Extractor struct {
	maxRows int
}

func New(maxRows int) *Extractor {
	if maxRows <= 0 {
		maxRows = 100
	}
	return &Extractor{maxRows: maxRows}
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	var text strings.Builder
	for i, row := range rows {
		if i >= e.maxRows {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text.WriteString(strings.Join(row, " "))
		text.WriteString("\n")
	}
	return strings.TrimSpace(text.String()), nil
}
