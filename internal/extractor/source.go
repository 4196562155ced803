package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// ReadText returns the datasheet as plain text, one visual row per line.
// The reader is chosen from the file extension.
func ReadText(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDF(ctx, path)
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return ReadWorkbook(f)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read datasheet: %w", err)
		}
		return string(data), nil
	}
}

func readPDF(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		for _, row := range rows {
			var prev *pdf.Text
			for j := range row.Content {
				t := &row.Content[j]
				if prev != nil && t.X-(prev.X+prev.W) > t.FontSize*0.2 {
					b.WriteByte(' ')
				}
				b.WriteString(t.S)
				prev = t
			}
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// ReadWorkbook flattens every sheet of an xlsx datasheet into lines of
// space-separated cell values.
func ReadWorkbook(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				if c = strings.TrimSpace(c); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, " "))
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}
