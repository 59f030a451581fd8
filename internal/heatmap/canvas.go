package heatmap

import "math"

// Canvas is the figure size in inches.
type Canvas struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Sizer keeps cells at a constant size until the figure hits its caps,
// after which cells shrink instead of the figure growing.
type Sizer struct {
	CellSize  float64
	MaxWidth  float64
	MaxHeight float64
}

// DefaultSizer returns the 1.4in cell size capped at 20x10in.
func DefaultSizer() Sizer {
	return Sizer{CellSize: 1.4, MaxWidth: 20.0, MaxHeight: 10.0}
}

// ComputeCanvasSize sizes a figure for rows x cols cells with the default sizer.
func ComputeCanvasSize(rows, cols int) Canvas {
	return DefaultSizer().Size(rows, cols)
}

// Size returns min(cell*cols, MaxWidth) by min(cell*rows, MaxHeight).
func (s Sizer) Size(rows, cols int) Canvas {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return Canvas{
		Width:  math.Min(s.CellSize*float64(cols), s.MaxWidth),
		Height: math.Min(s.CellSize*float64(rows), s.MaxHeight),
	}
}
