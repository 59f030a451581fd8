// Package dataset loads model/workset exports into heatmap records.
package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/worksetmap/internal/heatmap"
)

// Default header names written by the workset export.
const (
	DefaultModelColumn   = "Revit Model Name"
	DefaultWorksetColumn = "Workset Name"
)

// Columns names the two headers a loader must find.
type Columns struct {
	Model   string
	Workset string
}

// DefaultColumns returns the export's header names.
func DefaultColumns() Columns {
	return Columns{Model: DefaultModelColumn, Workset: DefaultWorksetColumn}
}

// Loader reads records from one tabular format.
type Loader interface {
	CanLoad(filename string) bool
	Load(r io.Reader, cols Columns) ([]heatmap.Record, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoaderFor selects a loader by filename. Unknown extensions are read as CSV.
func LoaderFor(filename string) Loader {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return l
		}
	}
	return csvLoader{comma: ','}
}

func init() {
	Register(csvLoader{comma: ','})
	Register(csvLoader{comma: '\t'})
	Register(xlsxLoader{})
}

// DefaultMaxCells caps distinct worksets x models per upload.
const DefaultMaxCells = 1_000_000

// Options controls one pass of the upload pipeline.
type Options struct {
	Columns    Columns
	StarPrefix string
	Sizer      heatmap.Sizer
	// MaxCells rejects inputs whose matrix would be larger; 0 means no cap.
	MaxCells int
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the stock column names, star prefix and canvas sizing.
func DefaultOptions() Options {
	return Options{
		Columns:    DefaultColumns(),
		StarPrefix: heatmap.DefaultStarPrefix,
		Sizer:      heatmap.DefaultSizer(),
		MaxCells:   DefaultMaxCells,
	}
}

// Result is everything the renderer needs for one upload.
type Result struct {
	Name    string          `json:"name" yaml:"name"`
	Records int             `json:"records" yaml:"records"`
	Matrix  *heatmap.Matrix `json:"matrix" yaml:"matrix"`
	Canvas  heatmap.Canvas  `json:"canvas" yaml:"canvas"`
}

// Process loads filename's content from r and builds the heatmap matrix and canvas.
// It holds no state between calls.
func Process(filename string, r io.Reader, opt Options) (*Result, error) {
	l := LoaderFor(filename)
	if xl, ok := l.(xlsxLoader); ok && opt.Sheet != "" {
		xl.sheet = opt.Sheet
		l = xl
	}
	cols := opt.Columns
	if cols.Model == "" {
		cols.Model = DefaultModelColumn
	}
	if cols.Workset == "" {
		cols.Workset = DefaultWorksetColumn
	}
	records, err := l.Load(r, cols)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", displayName(filename), err)
	}
	if len(records) == 0 {
		return nil, &heatmap.EmptyFileError{Name: displayName(filename)}
	}
	m, err := heatmap.Builder{StarPrefix: opt.StarPrefix, MaxCells: opt.MaxCells}.Build(records)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", displayName(filename), err)
	}
	sizer := opt.Sizer
	if sizer.CellSize <= 0 {
		sizer = heatmap.DefaultSizer()
	}
	rows, ncols := m.Shape()
	return &Result{
		Name:    displayName(filename),
		Records: len(records),
		Matrix:  m,
		Canvas:  sizer.Size(rows, ncols),
	}, nil
}

func displayName(filename string) string {
	if strings.TrimSpace(filename) == "" {
		return "upload"
	}
	return filename
}

// headerIndex finds both required columns, matching trimmed header names exactly.
func headerIndex(header []string, cols Columns) (model, workset int, err error) {
	model, workset = -1, -1
	clean := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		clean[i] = h
		switch h {
		case cols.Model:
			if model < 0 {
				model = i
			}
		case cols.Workset:
			if workset < 0 {
				workset = i
			}
		}
	}
	if model < 0 {
		return 0, 0, &heatmap.MissingColumnError{Column: cols.Model, Header: clean}
	}
	if workset < 0 {
		return 0, 0, &heatmap.MissingColumnError{Column: cols.Workset, Header: clean}
	}
	return model, workset, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
