package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Painter draws themed primitives. Each Draw method returns the y
// coordinate of the next line.
type Painter struct {
	Theme Theme
}

// NewPainter returns a painter using the default theme.
func NewPainter() *Painter {
	return &Painter{Theme: DefaultTheme()}
}

// Panel fills and outlines a panel background.
func (p *Painter) Panel(x, y, w, h int32) {
	rl.DrawRectangle(x, y, w, h, p.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, w, h, p.Theme.PanelBorder)
}

// Title draws a panel title.
func (p *Painter) Title(x, y int32, text string) int32 {
	rl.DrawText(text, x, y, p.Theme.TitleFontSize, rl.White)
	return y + p.Theme.LineHeight + 4
}

// Header draws a section header.
func (p *Painter) Header(x, y int32, text string) int32 {
	rl.DrawText(text, x, y, p.Theme.HeaderFontSize, p.Theme.SectionHeader)
	return y + p.Theme.LineHeight
}

// Note draws a single muted line.
func (p *Painter) Note(x, y int32, text string) int32 {
	rl.DrawText(text, x, y, p.Theme.FontSize, p.Theme.Muted)
	return y + p.Theme.LineHeight
}

// Pair draws a label with its value.
func (p *Painter) Pair(x, y int32, label, value string) int32 {
	rl.DrawText(label, x, y, p.Theme.FontSize, p.Theme.Label)
	rl.DrawText(value, x+p.Theme.LabelWidth, y, p.Theme.FontSize, p.Theme.Value)
	return y + p.Theme.LineHeight
}

// Meter draws a label and a bar filled to value/full. Values over 80% of
// full use the hot colour.
func (p *Painter) Meter(x, y int32, label string, value, full float64, width int32) int32 {
	if full <= 0 {
		full = 1
	}
	frac := min(max(value/full, 0), 1)

	rl.DrawText(label, x, y, p.Theme.FontSize, p.Theme.Label)
	bx := x + p.Theme.LabelWidth
	bw := width - p.Theme.LabelWidth - 44
	rl.DrawRectangle(bx, y+3, bw, p.Theme.MeterHeight, p.Theme.MeterBg)

	fill := p.Theme.MeterFill
	if frac > 0.8 {
		fill = p.Theme.MeterHot
	}
	rl.DrawRectangle(bx, y+3, int32(float64(bw)*frac), p.Theme.MeterHeight, fill)
	rl.DrawText(fmt.Sprintf("%.2f", value), bx+bw+6, y, p.Theme.FontSize, p.Theme.Value)
	return y + p.Theme.LineHeight + 2
}

// Toggle draws an on/off marker, a name and an optional right aligned key.
func (p *Painter) Toggle(x, y int32, name, key string, on bool, width int32) int32 {
	marker, text := p.Theme.ToggleOff, p.Theme.Label
	if on {
		marker, text = p.Theme.ToggleOn, rl.White
	}
	rl.DrawRectangle(x, y+3, 8, 8, marker)
	rl.DrawText(name, x+14, y, p.Theme.FontSize, text)
	if key != "" {
		k := "[" + key + "]"
		rl.DrawText(k, x+width-rl.MeasureText(k, p.Theme.FontSize), y, p.Theme.FontSize, p.Theme.Muted)
	}
	return y + p.Theme.LineHeight
}

// DrawLayout draws every visible section of layout for data starting at
// (x, y) and returns the y below the last row.
func DrawLayout[T any](p *Painter, x, y int32, layout Layout[T], data T) int32 {
	width := layout.Width - p.Theme.Padding*2
	for _, s := range layout.Sections {
		if s.Visible != nil && !s.Visible(data) {
			continue
		}
		if s.Title != "" {
			y = p.Header(x, y, s.Title)
		}
		for _, r := range s.Rows {
			y = drawRow(p, x, y, r, data, width)
		}
		y += 4
	}
	return y
}

func drawRow[T any](p *Painter, x, y int32, r Row[T], data T, width int32) int32 {
	var v float64
	if r.Value != nil {
		v = r.Value(data)
	}
	if r.Kind == RowMeter {
		return p.Meter(x, y, r.Label, v, r.Max, width)
	}
	text := "-"
	switch {
	case r.Text != nil:
		text = r.Text(data)
	case r.Value != nil:
		format := r.Format
		if format == "" {
			format = "%.2f"
		}
		text = fmt.Sprintf(format, v)
	}
	return p.Pair(x, y, r.Label, text)
}
