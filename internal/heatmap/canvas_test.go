package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCanvasSize(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		want       Canvas
	}{
		{"empty", 0, 0, Canvas{0, 0}},
		{"single cell", 1, 1, Canvas{1.4, 1.4}},
		{"small", 3, 5, Canvas{7.0, 1.4 * 3}},
		{"height capped", 40, 2, Canvas{2.8, 10}},
		{"width capped", 2, 100, Canvas{20, 2.8}},
		{"both capped", 500, 500, Canvas{20, 10}},
		{"negative clamps", -3, -1, Canvas{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCanvasSize(tt.rows, tt.cols)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}
}

func TestComputeCanvasSize_MonotonicAndBounded(t *testing.T) {
	prev := ComputeCanvasSize(0, 0)
	for n := 1; n <= 40; n++ {
		cur := ComputeCanvasSize(n, n)
		assert.GreaterOrEqual(t, cur.Width, prev.Width)
		assert.GreaterOrEqual(t, cur.Height, prev.Height)
		assert.LessOrEqual(t, cur.Width, 20.0)
		assert.LessOrEqual(t, cur.Height, 10.0)
		prev = cur
	}
}

func TestSizer_Custom(t *testing.T) {
	s := Sizer{CellSize: 0.5, MaxWidth: 3, MaxHeight: 2}
	assert.Equal(t, Canvas{Width: 3, Height: 1.5}, s.Size(3, 10))
}
