package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/worksetmap/internal/heatmap"
)

type csvLoader struct {
	comma rune
}

func (l csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	if l.comma == '\t' {
		return strings.HasSuffix(name, ".tsv")
	}
	return strings.HasSuffix(name, ".csv")
}

// Load reads a header row followed by data rows. Extra columns are ignored.
func (l csvLoader) Load(r io.Reader, cols Columns) ([]heatmap.Record, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.Comma = l.comma
	if cr.Comma == 0 {
		cr.Comma = ','
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &heatmap.MissingColumnError{Column: cols.Model}
		}
		return nil, malformed(err, 1)
	}
	if err := checkUTF8(header, 1); err != nil {
		return nil, err
	}
	mi, wi, err := headerIndex(header, cols)
	if err != nil {
		return nil, err
	}

	var out []heatmap.Record
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, malformed(err, 0)
		}
		line, _ := cr.FieldPos(0)
		if err := checkUTF8(rec, line); err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		out = append(out, heatmap.Record{Model: cell(rec, mi), Workset: cell(rec, wi)})
	}
	return out, nil
}

func malformed(err error, line int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		line = pe.Line
	}
	return &heatmap.MalformedError{Line: line, Err: err}
}

func checkUTF8(rec []string, line int) error {
	for _, v := range rec {
		if !utf8.ValidString(v) {
			return &heatmap.MalformedError{Line: line, Err: errors.New("invalid UTF-8 text")}
		}
	}
	return nil
}
