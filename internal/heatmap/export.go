package heatmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Markdown renders the matrix as a compact table with a short summary header.
func (m *Matrix) Markdown() string {
	var b strings.Builder
	b.WriteString("[WORKSET MATRIX]\n")
	b.WriteString(fmt.Sprintf("Worksets: %d (starred %d)\n", len(m.Rows), len(m.Rows)-m.Plain))
	b.WriteString(fmt.Sprintf("Models: %d\n", len(m.Cols)))
	if m.Empty() {
		return b.String()
	}
	b.WriteString("\n| Workset")
	for _, c := range m.Cols {
		b.WriteString(" | ")
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n|---")
	for range m.Cols {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for i, w := range m.Rows {
		b.WriteString("| ")
		b.WriteString(safeVal(w))
		for _, v := range m.Counts[i] {
			b.WriteString(" | ")
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

// WriteCSV writes the matrix with a "Workset Name" header column followed by one column per model.
func (m *Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Workset Name"}, m.Cols...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(m.Cols)+1)
	for i, ws := range m.Rows {
		rec[0] = ws
		for j, v := range m.Counts[i] {
			rec[j+1] = strconv.Itoa(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
