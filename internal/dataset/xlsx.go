package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/worksetmap/internal/heatmap"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct {
	sheet string
}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet (the first one by default); its first row is the header.
func (l xlsxLoader) Load(r io.Reader, cols Columns) ([]heatmap.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &heatmap.MalformedError{Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &heatmap.MalformedError{Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &heatmap.MalformedError{Err: fmt.Errorf("sheet %q not found (available: %s)",
			sheet, strings.Join(f.GetSheetList(), ", "))}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &heatmap.MalformedError{Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, &heatmap.MissingColumnError{Column: cols.Model}
	}
	mi, wi, err := headerIndex(rows[0], cols)
	if err != nil {
		return nil, err
	}
	var out []heatmap.Record
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out = append(out, heatmap.Record{Model: cell(row, mi), Workset: cell(row, wi)})
	}
	return out, nil
}
