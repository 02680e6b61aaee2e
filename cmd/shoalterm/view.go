package main

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

// cellAspect is how many columns cover the same world distance as one row.
const cellAspect = 2.0

// view maps world positions to terminal cells. The top view looks down the Y
// axis with +Z up the screen; the side view looks along Z with +Y up.
type view struct {
	Center   r3.Vec
	RowUnits float64 // World units per row
	Side     bool
}

// axes returns the world coordinates drawn horizontally and vertically.
func (v view) axes(p r3.Vec) (h, vert float64) {
	if v.Side {
		return p.X, p.Y
	}
	return p.X, p.Z
}

// project returns the cell for p on a w by h screen.
func (v view) project(p r3.Vec, w, h int) (col, row int, ok bool) {
	if v.RowUnits <= 0 {
		return 0, 0, false
	}
	ph, pv := v.axes(p)
	ch, cv := v.axes(v.Center)
	col = int(math.Floor(float64(w)/2 + (ph-ch)/v.RowUnits*cellAspect))
	row = int(math.Floor(float64(h)/2 - (pv-cv)/v.RowUnits))
	ok = col >= 0 && col < w && row >= 0 && row < h
	return col, row, ok
}

// zoom divides the units per row by factor.
func (v *view) zoom(factor float64) {
	if factor > 0 {
		v.RowUnits /= factor
	}
}

// pan moves the center by the given number of rows and columns.
func (v *view) pan(cols, rows float64) {
	dh := cols * v.RowUnits / cellAspect
	dv := rows * v.RowUnits
	v.Center.X += dh
	if v.Side {
		v.Center.Y += dv
	} else {
		v.Center.Z += dv
	}
}

var headingGlyphs = [8]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// headingGlyph returns an arrow for the forward direction as projected into
// the view. Directions along the view axis draw as a dot.
func (v view) headingGlyph(forward r3.Vec) rune {
	h, vert := v.axes(forward)
	if math.Hypot(h, vert) < 0.3 {
		return '•'
	}
	a := math.Atan2(vert, h)
	i := int(math.Round(a/(math.Pi/4))+8) % 8
	return headingGlyphs[i]
}

// depthStyle colors by the coordinate hidden by the view, from deep blue at
// lo to pale cyan at hi.
func (v view) depthStyle(p r3.Vec, lo, hi float64) tcell.Style {
	d := p.Y
	if v.Side {
		d = p.Z
	}
	t := 0.5
	if hi > lo {
		t = min(max((d-lo)/(hi-lo), 0), 1)
	}
	c := tcell.NewRGBColor(int32(40+t*160), int32(90+t*150), int32(160+t*95))
	return tcell.StyleDefault.Foreground(c)
}
