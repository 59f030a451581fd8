package heatmap

import (
	"sort"
	"strings"
)

// DefaultStarPrefix marks system worksets that are listed after all others.
const DefaultStarPrefix = "*"

// Record is one (model, workset) association from the input table.
type Record struct {
	Model   string `json:"model" yaml:"model"`
	Workset string `json:"workset" yaml:"workset"`
}

// Matrix counts records per (workset, model) pair.
// Rows holds the plain worksets first, then the starred ones.
type Matrix struct {
	Rows   []string `json:"rows" yaml:"rows"`
	Cols   []string `json:"cols" yaml:"cols"`
	Counts [][]int  `json:"counts" yaml:"counts"` // row-major, Counts[i][j]
	// Plain is the number of leading rows that belong to the plain block.
	Plain int `json:"plain" yaml:"plain"`
}

// Builder splits records into plain and starred groups before cross-tabulating.
type Builder struct {
	// StarPrefix selects the starred group. Empty means DefaultStarPrefix.
	StarPrefix string
	// MaxCells caps rows*cols of the dense matrix; 0 means no cap.
	MaxCells int
}

// BuildMatrix cross-tabulates records using the default star prefix and no cell cap.
func BuildMatrix(records []Record) *Matrix {
	m, _ := Builder{}.Build(records)
	return m
}

// Build trims, partitions, sorts and cross-tabulates records, stacking the
// plain block above the starred block. It returns a *TooLargeError before
// allocating the counts when the matrix would exceed MaxCells.
func (b Builder) Build(records []Record) (*Matrix, error) {
	prefix := b.StarPrefix
	if prefix == "" {
		prefix = DefaultStarPrefix
	}
	var plain, starred []Record
	for _, r := range records {
		r.Model = strings.TrimSpace(r.Model)
		r.Workset = strings.TrimSpace(r.Workset)
		if strings.HasPrefix(r.Workset, prefix) {
			starred = append(starred, r)
		} else {
			plain = append(plain, r)
		}
	}
	sortRecords(plain)
	sortRecords(starred)

	top := crossTab(plain)
	bottom := crossTab(starred)
	cols := unionModels(top, bottom)
	rows := len(top.rows) + len(bottom.rows)
	if b.MaxCells > 0 && rows*len(cols) > b.MaxCells {
		return nil, &TooLargeError{Rows: rows, Cols: len(cols), Limit: b.MaxCells}
	}
	return stack(top, bottom, cols), nil
}

func sortRecords(rs []Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Workset != rs[j].Workset {
			return rs[i].Workset < rs[j].Workset
		}
		return rs[i].Model < rs[j].Model
	})
}

// table is one group's cross-tab: workset -> model -> count, with labels in first-seen order.
type table struct {
	rows   []string
	models map[string]bool
	counts map[string]map[string]int
}

// crossTab expects rs sorted, so rows come out in sorted order.
func crossTab(rs []Record) *table {
	t := &table{models: map[string]bool{}, counts: map[string]map[string]int{}}
	for _, r := range rs {
		byModel, ok := t.counts[r.Workset]
		if !ok {
			byModel = map[string]int{}
			t.counts[r.Workset] = byModel
			t.rows = append(t.rows, r.Workset)
		}
		byModel[r.Model]++
		t.models[r.Model] = true
	}
	return t
}

// unionModels returns the sorted model names seen in either group.
func unionModels(top, bottom *table) []string {
	seen := map[string]bool{}
	for m := range top.models {
		seen[m] = true
	}
	for m := range bottom.models {
		seen[m] = true
	}
	cols := make([]string, 0, len(seen))
	for m := range seen {
		cols = append(cols, m)
	}
	sort.Strings(cols)
	return cols
}

func stack(top, bottom *table, cols []string) *Matrix {
	m := &Matrix{
		Rows:   make([]string, 0, len(top.rows)+len(bottom.rows)),
		Cols:   cols,
		Counts: make([][]int, 0, len(top.rows)+len(bottom.rows)),
		Plain:  len(top.rows),
	}
	for _, t := range []*table{top, bottom} {
		for _, w := range t.rows {
			row := make([]int, len(cols))
			for j, c := range cols {
				row[j] = t.counts[w][c]
			}
			m.Rows = append(m.Rows, w)
			m.Counts = append(m.Counts, row)
		}
	}
	return m
}

// Shape returns the row and column counts.
func (m *Matrix) Shape() (rows, cols int) {
	return len(m.Rows), len(m.Cols)
}

// Empty reports whether the matrix has no cells.
func (m *Matrix) Empty() bool {
	return len(m.Rows) == 0 || len(m.Cols) == 0
}

// At looks up the count for a workset/model pair by label, or 0 if either label
// is unknown. It is for callers holding names; the exporters index Counts directly.
func (m *Matrix) At(workset, model string) int {
	i := indexOf(m.Rows, workset)
	j := indexOf(m.Cols, model)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}

// Max returns the largest count in the matrix.
func (m *Matrix) Max() int {
	best := 0
	for _, row := range m.Counts {
		for _, v := range row {
			if v > best {
				best = v
			}
		}
	}
	return best
}

// Starred returns the row labels of the starred block.
func (m *Matrix) Starred() []string {
	return m.Rows[m.Plain:]
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
