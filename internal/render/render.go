// Package render draws a workset matrix as a PNG heatmap.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"unicode/utf8"

	"github.com/KaramelBytes/worksetmap/internal/heatmap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyMatrix is returned when there is nothing to draw.
var ErrEmptyMatrix = errors.New("matrix has no cells to render")

// Style holds the fixed appearance of the heatmap.
type Style struct {
	// DPI converts canvas inches to pixels.
	DPI        float64
	Title      string
	XLabel     string
	YLabel     string
	Ramp       Ramp
	Grid       color.RGBA
	Background color.RGBA
	Text       color.RGBA
	// MaxLabel truncates longer tick labels.
	MaxLabel int
}

// DefaultStyle returns the single-hue blue heatmap with black cell borders.
func DefaultStyle() Style {
	return Style{
		DPI:        100,
		Title:      "Worksets and Revit Models",
		XLabel:     "Revit Models",
		YLabel:     "Worksets",
		Ramp:       Blues,
		Grid:       color.RGBA{A: 255},
		Background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Text:       color.RGBA{A: 255},
		MaxLabel:   48,
	}
}

// Renderer draws matrices with one Style.
type Renderer struct {
	Style Style
}

// New returns a Renderer using DefaultStyle.
func New() *Renderer {
	return &Renderer{Style: DefaultStyle()}
}

const (
	pad      = 10
	tickGap  = 4
	lineH    = 13 // basicfont.Face7x13 height
	ascent   = 11
	boldStep = 1
	// minLined is the smallest cell span that still gets interior grid lines.
	minLined = 3
)

var face font.Face = basicfont.Face7x13

// layout positions the grid and labels inside the image. The grid never
// exceeds the canvas in pixels: cells are square while they are at least one
// pixel wide, and below that the grid fills the plot and several rows or
// columns share a pixel.
type layout struct {
	cell       int // square cell side, 0 once cells are binned
	gridX      int
	gridY      int
	gridW      int
	gridH      int
	rows, cols int
	width      int
	height     int
	rowLabels  []string
	colLabels  []string
	rowStep    int // draw every rowStep-th row label
	colStep    int
}

func (l layout) colX(j int) int { return l.gridX + j*l.gridW/l.cols }
func (l layout) rowY(i int) int { return l.gridY + i*l.gridH/l.rows }

func (l layout) cellRect(i, j int) image.Rectangle {
	return image.Rect(l.colX(j), l.rowY(i), l.colX(j+1), l.rowY(i+1))
}

// labelStep returns how many rows or columns of span px share one label slot.
func labelStep(n, span int) int {
	if n <= 0 || span <= 0 {
		return 1
	}
	// ceil(lineH / (span/n))
	return max(1, (lineH*n+span-1)/span)
}

func (r *Renderer) layout(m *heatmap.Matrix, c heatmap.Canvas) layout {
	st := r.Style
	rows, cols := m.Shape()
	dpi := st.DPI
	if dpi <= 0 {
		dpi = 100
	}
	plotW := max(1, int(math.Round(c.Width*dpi)))
	plotH := max(1, int(math.Round(c.Height*dpi)))

	l := layout{rows: rows, cols: cols}
	l.cell = min(plotW/cols, plotH/rows)
	if l.cell >= 1 {
		l.gridW, l.gridH = cols*l.cell, rows*l.cell
	} else {
		l.gridW, l.gridH = plotW, plotH
	}
	l.rowStep = labelStep(rows, l.gridH)
	l.colStep = labelStep(cols, l.gridW)

	l.rowLabels = make([]string, rows)
	rowW := 0
	for i, s := range m.Rows {
		l.rowLabels[i] = truncate(s, st.MaxLabel)
		if i%l.rowStep == 0 {
			rowW = max(rowW, textWidth(l.rowLabels[i]))
		}
	}
	l.colLabels = make([]string, cols)
	colH := 0
	for j, s := range m.Cols {
		l.colLabels[j] = truncate(s, st.MaxLabel)
		if j%l.colStep == 0 {
			colH = max(colH, textWidth(l.colLabels[j]))
		}
	}

	// top: title, x-axis title, rotated column labels
	l.gridY = pad + lineH + pad + lineH + tickGap + colH + tickGap
	// left: rotated y-axis title, row labels
	l.gridX = pad + lineH + pad + rowW + tickGap
	l.width = max(l.gridX+l.gridW+1+pad, textWidth(st.Title)+boldStep+2*pad)
	l.height = l.gridY + l.gridH + 1 + pad
	return l
}

// Image draws the heatmap for m on a canvas of c inches.
func (r *Renderer) Image(m *heatmap.Matrix, c heatmap.Canvas) (*image.RGBA, error) {
	if m == nil || m.Empty() {
		return nil, ErrEmptyMatrix
	}
	st := r.Style
	l := r.layout(m, c)
	img := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(st.Background), image.Point{}, draw.Src)

	hi := float64(m.Max())
	for i := range m.Rows {
		for j := range m.Cols {
			rect := l.cellRect(i, j)
			if rect.Empty() {
				continue
			}
			t := 0.0
			if hi > 0 {
				t = float64(m.Counts[i][j]) / hi
			}
			draw.Draw(img, rect, image.NewUniform(st.Ramp.At(t)), image.Point{}, draw.Src)
		}
	}
	r.drawGrid(img, l)

	ink := image.NewUniform(st.Text)
	gridW, gridH := l.gridW, l.gridH

	// Title centered over the grid, bold by overstriking.
	tx := l.gridX + (gridW-textWidth(st.Title))/2
	tx = max(pad, min(tx, l.width-textWidth(st.Title)-boldStep-pad))
	drawText(img, ink, st.Title, tx, pad+ascent)
	drawText(img, ink, st.Title, tx+boldStep, pad+ascent)

	// X-axis title on top, above the column labels.
	xy := pad + lineH + pad + ascent
	xx := l.gridX + (gridW-textWidth(st.XLabel))/2
	drawText(img, ink, st.XLabel, max(pad, xx), xy)

	// Y-axis title rotated, centered on the grid rows.
	yw := textWidth(st.YLabel)
	drawRotated(img, ink, st.YLabel, pad, l.gridY+(gridH-yw)/2)

	for i := 0; i < l.rows; i += l.rowStep {
		s := l.rowLabels[i]
		cy := (l.rowY(i) + l.rowY(i+1)) / 2
		drawText(img, ink, s, l.gridX-tickGap-textWidth(s), cy-lineH/2+ascent)
	}
	for j := 0; j < l.cols; j += l.colStep {
		s := l.colLabels[j]
		cx := (l.colX(j) + l.colX(j+1)) / 2
		drawRotated(img, ink, s, cx-lineH/2, l.gridY-tickGap-textWidth(s))
	}
	return img, nil
}

// Render writes the heatmap for m as a PNG.
func (r *Renderer) Render(w io.Writer, m *heatmap.Matrix, c heatmap.Canvas) error {
	img, err := r.Image(m, c)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// drawGrid outlines the grid, and every cell while cells are wide enough to
// keep their colour visible.
func (r *Renderer) drawGrid(img *image.RGBA, l layout) {
	ink := image.NewUniform(r.Style.Grid)
	right := l.gridX + l.gridW + 1
	bottom := l.gridY + l.gridH + 1
	hline := func(y int) {
		draw.Draw(img, image.Rect(l.gridX, y, right, y+1), ink, image.Point{}, draw.Src)
	}
	vline := func(x int) {
		draw.Draw(img, image.Rect(x, l.gridY, x+1, bottom), ink, image.Point{}, draw.Src)
	}
	hline(l.gridY)
	hline(l.gridY + l.gridH)
	vline(l.gridX)
	vline(l.gridX + l.gridW)
	if l.gridH/l.rows >= minLined {
		for i := 1; i < l.rows; i++ {
			hline(l.rowY(i))
		}
	}
	if l.gridW/l.cols >= minLined {
		for j := 1; j < l.cols; j++ {
			vline(l.colX(j))
		}
	}
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawText draws s with its baseline at y.
func drawText(dst draw.Image, src image.Image, s string, x, y int) {
	d := &font.Drawer{Dst: dst, Src: src, Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// drawRotated draws s turned 90° counter-clockwise so it reads bottom to top.
// (x, y) is the top-left corner of the rotated text box, which is lineH wide.
func drawRotated(dst *image.RGBA, src image.Image, s string, x, y int) {
	w := textWidth(s)
	if w == 0 {
		return
	}
	tmp := image.NewAlpha(image.Rect(0, 0, w, lineH))
	d := &font.Drawer{Dst: tmp, Src: image.Opaque, Face: face, Dot: fixed.P(0, ascent)}
	d.DrawString(s)
	for ty := 0; ty < lineH; ty++ {
		for tx := 0; tx < w; tx++ {
			a := tmp.AlphaAt(tx, ty).A
			if a == 0 {
				continue
			}
			p := image.Pt(x+ty, y+w-1-tx)
			if !p.In(dst.Bounds()) {
				continue
			}
			mask := image.NewUniform(color.Alpha{A: a})
			draw.DrawMask(dst, image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}, src, image.Point{}, mask, image.Point{}, draw.Over)
		}
	}
}

func truncate(s string, n int) string {
	if n <= 3 || utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	return string(rs[:n-3]) + "..."
}
